// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package architectures

import (
	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/attentionmech/dex/pkg/ml/nn"
)

func init() {
	Register("gpt2", func(cfg hf.Config) any { return NewGPT2Model(cfg) })
	module.Register[GPT2Model]()
	module.Register[GPT2Block]()
	module.Register[GPT2Attention]()
	module.Register[GPT2MLP]()
}

// GPT2Model is the bare GPT-2 decoder (no language modeling head).
type GPT2Model struct {
	TokenEmbeddings    *nn.Embedding `module:"wte"`
	PositionEmbeddings *nn.Embedding `module:"wpe"`
	Blocks             []*GPT2Block  `module:"h"`
	FinalNorm          *nn.LayerNorm `module:"ln_f"`
}

// GPT2Block is one pre-norm transformer block.
type GPT2Block struct {
	Norm1 *nn.LayerNorm  `module:"ln_1"`
	Attn  *GPT2Attention `module:"attn"`
	Norm2 *nn.LayerNorm  `module:"ln_2"`
	MLP   *GPT2MLP       `module:"mlp"`
}

// GPT2Attention uses one fused projection for query, key and value.
type GPT2Attention struct {
	QKV        *nn.Conv1D `module:"c_attn"`
	Projection *nn.Conv1D `module:"c_proj"`
}

// GPT2MLP is the feed-forward block.
type GPT2MLP struct {
	FullyConnected *nn.Conv1D `module:"c_fc"`
	Projection     *nn.Conv1D `module:"c_proj"`
}

// NewGPT2Model builds a GPT-2 model from its configuration.
//
// Required entries: vocab_size, n_embd (or hidden_size), n_layer (or num_hidden_layers).
// Optional: n_positions (1024), n_inner (4*n_embd).
func NewGPT2Model(cfg hf.Config) *GPT2Model {
	dtype := configDType(cfg)
	vocabSize := requireInt(cfg, "vocab_size")
	embedDim := firstInt(cfg, "n_embd", "hidden_size")
	numLayers := firstInt(cfg, "n_layer", "num_hidden_layers")
	maxPositions := cfg.GetIntOr("n_positions", 1024)
	inner := cfg.GetIntOr("n_inner", 4*embedDim)

	m := &GPT2Model{
		TokenEmbeddings:    nn.NewEmbedding(dtype, vocabSize, embedDim),
		PositionEmbeddings: nn.NewEmbedding(dtype, maxPositions, embedDim),
		Blocks:             make([]*GPT2Block, numLayers),
	}
	for ii := range m.Blocks {
		m.Blocks[ii] = &GPT2Block{
			Norm1: nn.NewLayerNorm(dtype, embedDim, true),
			Attn: &GPT2Attention{
				QKV:        nn.NewConv1D(dtype, embedDim, 3*embedDim),
				Projection: nn.NewConv1D(dtype, embedDim, embedDim),
			},
			Norm2: nn.NewLayerNorm(dtype, embedDim, true),
			MLP: &GPT2MLP{
				FullyConnected: nn.NewConv1D(dtype, embedDim, inner),
				Projection:     nn.NewConv1D(dtype, inner, embedDim),
			},
		}
	}
	m.FinalNorm = nn.NewLayerNorm(dtype, embedDim, true)
	return m
}
