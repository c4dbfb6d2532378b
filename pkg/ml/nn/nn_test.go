// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package nn

import (
	"testing"

	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(t *testing.T, m any) (names []string) {
	for np, err := range module.IterParameters(m) {
		require.NoError(t, err)
		names = append(names, np.Name)
	}
	return
}

func TestLayouts(t *testing.T) {
	defer module.UseDevice(module.Meta)()

	linear := NewLinear(dtypes.Float32, 3, 5, true)
	assert.Equal(t, []int{5, 3}, linear.Weight.Dimensions())
	assert.Equal(t, []string{"weight", "bias"}, names(t, linear))
	assert.Equal(t, []string{"weight"}, names(t, NewLinear(dtypes.Float32, 3, 5, false)))

	conv := NewConv1D(dtypes.Float32, 3, 5)
	assert.Equal(t, []int{3, 5}, conv.Weight.Dimensions())
	assert.Equal(t, []int{5}, conv.Bias.Dimensions())

	assert.Equal(t, []string{"weight"}, names(t, NewLayerNorm(dtypes.Float32, 4, false)))
	assert.Equal(t, []string{"weight", "bias"}, names(t, NewLayerNorm(dtypes.Float32, 4, true)))
	assert.Equal(t, 4, NewRMSNorm(dtypes.Float16, 4).Weight.Numel())
}

func TestTiedEmbedding(t *testing.T) {
	emb := NewEmbedding(dtypes.Float32, 10, 4)
	tied := emb.Tied()
	assert.NotSame(t, emb.Weight, tied.Weight)
	assert.Equal(t, emb.Weight.StorageKey(), tied.Weight.StorageKey())
	assert.Equal(t, 40, tied.Weight.Numel())
	assert.NotEqual(t, emb.Weight.StorageKey(), NewEmbedding(dtypes.Float32, 10, 4).Weight.StorageKey())
	assert.Equal(t, "github.com/attentionmech/dex/pkg/ml/nn.Embedding", module.ClassName(tied))
}
