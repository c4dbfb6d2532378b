// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package architectures

import (
	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/attentionmech/dex/pkg/ml/nn"
	"github.com/gomlx/exceptions"
)

func init() {
	Register("llama", func(cfg hf.Config) any { return NewLlamaModel(cfg, llamaBiases(cfg)) })
	Register("mistral", func(cfg hf.Config) any { return NewLlamaModel(cfg, LlamaBiases{}) })
	Register("qwen2", func(cfg hf.Config) any { return NewLlamaModel(cfg, LlamaBiases{QKV: true}) })
	module.Register[LlamaModel]()
	module.Register[LlamaDecoderLayer]()
	module.Register[LlamaAttention]()
	module.Register[LlamaMLP]()
}

// LlamaModel is the bare decoder of the Llama family (no language modeling head).
// Mistral and Qwen2 share the same layout, only differing on which projections have biases.
type LlamaModel struct {
	EmbedTokens *nn.Embedding        `module:"embed_tokens"`
	Layers      []*LlamaDecoderLayer `module:"layers"`
	Norm        *nn.RMSNorm          `module:"norm"`
}

// LlamaDecoderLayer is one pre-norm decoder layer.
type LlamaDecoderLayer struct {
	SelfAttn               *LlamaAttention `module:"self_attn"`
	MLP                    *LlamaMLP       `module:"mlp"`
	InputLayerNorm         *nn.RMSNorm     `module:"input_layernorm"`
	PostAttentionLayerNorm *nn.RMSNorm     `module:"post_attention_layernorm"`
}

// LlamaAttention has separate query, key and value projections; key and value may use fewer heads
// (grouped-query attention).
type LlamaAttention struct {
	QProj *nn.Linear `module:"q_proj"`
	KProj *nn.Linear `module:"k_proj"`
	VProj *nn.Linear `module:"v_proj"`
	OProj *nn.Linear `module:"o_proj"`
}

// LlamaMLP is the gated feed-forward block.
type LlamaMLP struct {
	GateProj *nn.Linear `module:"gate_proj"`
	UpProj   *nn.Linear `module:"up_proj"`
	DownProj *nn.Linear `module:"down_proj"`
}

// LlamaBiases selects which projections have a bias term.
type LlamaBiases struct {
	QKV, Output, MLP bool
}

func llamaBiases(cfg hf.Config) LlamaBiases {
	attentionBias := cfg.GetBoolOr("attention_bias", false)
	return LlamaBiases{
		QKV:    attentionBias,
		Output: attentionBias,
		MLP:    cfg.GetBoolOr("mlp_bias", false),
	}
}

// NewLlamaModel builds a Llama family model from its configuration.
//
// Required entries: vocab_size, hidden_size, num_hidden_layers, intermediate_size, num_attention_heads.
// Optional: num_key_value_heads (num_attention_heads), head_dim (hidden_size/num_attention_heads).
func NewLlamaModel(cfg hf.Config, biases LlamaBiases) *LlamaModel {
	dtype := configDType(cfg)
	vocabSize := requireInt(cfg, "vocab_size")
	hidden := requireInt(cfg, "hidden_size")
	numLayers := requireInt(cfg, "num_hidden_layers")
	intermediate := requireInt(cfg, "intermediate_size")
	numHeads := requireInt(cfg, "num_attention_heads")
	if numHeads == 0 {
		exceptions.Panicf("num_attention_heads must be positive")
	}
	numKVHeads := cfg.GetIntOr("num_key_value_heads", numHeads)
	headDim := cfg.GetIntOr("head_dim", hidden/numHeads)

	m := &LlamaModel{
		EmbedTokens: nn.NewEmbedding(dtype, vocabSize, hidden),
		Layers:      make([]*LlamaDecoderLayer, numLayers),
	}
	for ii := range m.Layers {
		m.Layers[ii] = &LlamaDecoderLayer{
			SelfAttn: &LlamaAttention{
				QProj: nn.NewLinear(dtype, hidden, numHeads*headDim, biases.QKV),
				KProj: nn.NewLinear(dtype, hidden, numKVHeads*headDim, biases.QKV),
				VProj: nn.NewLinear(dtype, hidden, numKVHeads*headDim, biases.QKV),
				OProj: nn.NewLinear(dtype, numHeads*headDim, hidden, biases.Output),
			},
			MLP: &LlamaMLP{
				GateProj: nn.NewLinear(dtype, hidden, intermediate, biases.MLP),
				UpProj:   nn.NewLinear(dtype, hidden, intermediate, biases.MLP),
				DownProj: nn.NewLinear(dtype, intermediate, hidden, biases.MLP),
			},
			InputLayerNorm:         nn.NewRMSNorm(dtype, hidden),
			PostAttentionLayerNorm: nn.NewRMSNorm(dtype, hidden),
		}
	}
	m.Norm = nn.NewRMSNorm(dtype, hidden)
	return m
}
