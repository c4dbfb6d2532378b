// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package nn holds the parameter layout of common neural network layers, named as in Hugging Face models.
//
// Layers only declare their parameters (see package module): they are used to build the structure of a
// model, not to run it.
package nn
