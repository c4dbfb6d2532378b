// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
)

func init() {
	module.Register[Embedding]()
}

// Embedding is a lookup table of shape [numEmbeddings, dim].
type Embedding struct {
	Weight *module.Parameter `module:"weight"`
}

// NewEmbedding creates an embedding table on the default device.
func NewEmbedding(dtype dtypes.DType, numEmbeddings, dim int) *Embedding {
	return &Embedding{Weight: module.NewParameter(dtype, numEmbeddings, dim)}
}

// Tied returns an Embedding that shares the storage of e's weight.
func (e *Embedding) Tied() *Embedding {
	return &Embedding{Weight: e.Weight.Alias()}
}
