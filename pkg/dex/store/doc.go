// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package store persists dex.ParameterRecord tables as Apache Arrow IPC files, and dex.ConfigSnapshot
// lists as JSON lines.
//
// Tables are append-only: Append reads the whole existing table, concatenates the new records and
// rewrites the file. LoadProcessedNames lists the models already in a table, which is what resumable
// runs use to skip them, and Finalize renames a temporary table to its final path.
//
// The column names are the ones expected by the dex web visualizer: id, model_name, param_name,
// parent_module, level, numel, shape, class_name, file_path, param_type and is_shared.
package store
