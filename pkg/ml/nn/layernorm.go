// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
)

func init() {
	module.Register[LayerNorm]()
	module.Register[RMSNorm]()
}

// LayerNorm holds the scale (weight, also known as gamma) and shift (bias, or beta) of a layer normalization
// over the last axis.
type LayerNorm struct {
	Weight *module.Parameter `module:"weight"`
	Bias   *module.Parameter `module:"bias"`
}

// NewLayerNorm creates a LayerNorm over a feature axis of the given dimension.
// withBias set to false is used by models that only scale.
func NewLayerNorm(dtype dtypes.DType, dim int, withBias bool) *LayerNorm {
	ln := &LayerNorm{Weight: module.NewParameter(dtype, dim)}
	if withBias {
		ln.Bias = module.NewParameter(dtype, dim)
	}
	return ln
}

// RMSNorm normalizes by the root-mean-square of the features, and only has a scale.
// T5 calls it "T5LayerNorm", Llama "LlamaRMSNorm".
type RMSNorm struct {
	Weight *module.Parameter `module:"weight"`
}

// NewRMSNorm creates an RMSNorm over a feature axis of the given dimension.
func NewRMSNorm(dtype dtypes.DType, dim int) *RMSNorm {
	return &RMSNorm{Weight: module.NewParameter(dtype, dim)}
}
