// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package module defines the structural view of a model used to inspect its parameters.
//
// A "model" can be any user-defined struct (`any` type in Go), which can contain:
//
//   - Fields of type *Parameter, holding the model weights (shape, and optionally the bytes).
//   - Slices, arrays, sub-structs (by value or pointer) and maps (with string or number keys) of "model"
//     (a recursive definition). Each of those is a submodule.
//   - Any other field (hyperparameters, etc.), which is ignored.
//
// Parameters and submodules are addressed by dotted paths, e.g. "encoder.layer.0.attention.self.query.weight".
// Struct fields contribute their `module:"name"` tag, or their Go name if untagged.
//
// Parameters are allocated on the process-wide default device (see UseDevice). On the Meta device no bytes
// are allocated, which allows building the structure of arbitrarily large models for inspection.
//
// Module types can register the file where they are declared with Register, so tools can report where
// each submodule is implemented (see SourceFile).
package module
