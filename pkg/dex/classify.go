// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import "strings"

// ParamType is the coarse category of a parameter, derived from its leaf name.
type ParamType string

const (
	ParamWeight    ParamType = "weight"
	ParamBias      ParamType = "bias"
	ParamNorm      ParamType = "norm"
	ParamEmbedding ParamType = "embedding"
	ParamOther     ParamType = "other"
)

// ParamTypes lists all categories, in matching priority order.
var ParamTypes = []ParamType{ParamWeight, ParamBias, ParamNorm, ParamEmbedding, ParamOther}

// categoryMatchers are tested in order: names often contain more than one, e.g. "embed_tokens.weight".
var categoryMatchers = []struct {
	substring string
	paramType ParamType
}{
	{"weight", ParamWeight},
	{"bias", ParamBias},
	{"norm", ParamNorm},
	{"embed", ParamEmbedding},
}

// CategorizeParam returns the category of a parameter given its leaf name (or full name).
// Matching is a case-insensitive substring test.
func CategorizeParam(name string) ParamType {
	lower := strings.ToLower(name)
	for _, m := range categoryMatchers {
		if strings.Contains(lower, m.substring) {
			return m.paramType
		}
	}
	return ParamOther
}
