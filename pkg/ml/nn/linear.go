// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
)

func init() {
	module.Register[Linear]()
	module.Register[Conv1D]()
}

// Linear performs a linear transformation: y = x @ weight^T + bias.
//
// weight has shape [out_features, in_features]. bias is optional (nil means no bias).
type Linear struct {
	Weight *module.Parameter `module:"weight"`
	Bias   *module.Parameter `module:"bias"`
}

// NewLinear creates a Linear layer with parameters on the default device.
func NewLinear(dtype dtypes.DType, inFeatures, outFeatures int, withBias bool) *Linear {
	l := &Linear{Weight: module.NewParameter(dtype, outFeatures, inFeatures)}
	if withBias {
		l.Bias = module.NewParameter(dtype, outFeatures)
	}
	return l
}

// Conv1D is the GPT-2 flavor of a linear layer: y = x @ weight + bias.
//
// Notice the weight is transposed with respect to Linear: [in_features, out_features].
type Conv1D struct {
	Weight *module.Parameter `module:"weight"`
	Bias   *module.Parameter `module:"bias"`
}

// NewConv1D creates a Conv1D layer, always with bias.
func NewConv1D(dtype dtypes.DType, inFeatures, outFeatures int) *Conv1D {
	return &Conv1D{
		Weight: module.NewParameter(dtype, inFeatures, outFeatures),
		Bias:   module.NewParameter(dtype, outFeatures),
	}
}
