// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package dex extracts the parameter metadata of model architectures: one ParameterRecord per
// parameter tensor (name, shape, owning module class and source file, category, tied weights),
// plus a ConfigSnapshot per model.
//
// Models are built from their Hugging Face configuration (see ModelLoader) on the module.Meta device,
// so no weights are ever allocated or downloaded.
//
// Persistence lives in the sub-package store, resumable runs in harvest and aggregations in report.
package dex
