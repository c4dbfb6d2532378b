// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package hf talks to the Hugging Face Hub: it lists models from the registry and downloads
// model configurations.
package hf
