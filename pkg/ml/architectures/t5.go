// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package architectures

import (
	"strings"

	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/attentionmech/dex/pkg/ml/nn"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
)

func init() {
	Register("t5", func(cfg hf.Config) any { return NewT5Model(cfg) })
	module.Register[T5Model]()
	module.Register[T5Stack]()
	module.Register[T5Block]()
	module.Register[T5Attention]()
	module.Register[T5LayerSelfAttention]()
	module.Register[T5LayerCrossAttention]()
	module.Register[T5LayerFF]()
	module.Register[T5DenseActDense]()
	module.Register[T5DenseGatedActDense]()
}

// T5Model is the encoder-decoder T5 without the language modeling head.
//
// The token embedding table is shared: Encoder.EmbedTokens and Decoder.EmbedTokens are aliases of Shared.
type T5Model struct {
	Shared  *nn.Embedding `module:"shared"`
	Encoder *T5Stack      `module:"encoder"`
	Decoder *T5Stack      `module:"decoder"`
}

// T5Stack is either the encoder or the decoder.
type T5Stack struct {
	EmbedTokens    *nn.Embedding `module:"embed_tokens"`
	Blocks         []*T5Block    `module:"block"`
	FinalLayerNorm *nn.RMSNorm   `module:"final_layer_norm"`
}

// T5Block holds the sub-layers of a block: self-attention, cross-attention (decoder only) and feed-forward.
// Elements are *T5LayerSelfAttention, *T5LayerCrossAttention or *T5LayerFF.
type T5Block struct {
	Layers []any `module:"layer"`
}

// T5Attention has no biases. Only the first block of each stack holds the relative position bias.
type T5Attention struct {
	Q                     *nn.Linear    `module:"q"`
	K                     *nn.Linear    `module:"k"`
	V                     *nn.Linear    `module:"v"`
	O                     *nn.Linear    `module:"o"`
	RelativeAttentionBias *nn.Embedding `module:"relative_attention_bias"`
}

// T5LayerSelfAttention is a pre-norm self-attention sub-layer.
type T5LayerSelfAttention struct {
	SelfAttention *T5Attention `module:"SelfAttention"`
	LayerNorm     *nn.RMSNorm  `module:"layer_norm"`
}

// T5LayerCrossAttention is the decoder attention over the encoder outputs.
type T5LayerCrossAttention struct {
	EncDecAttention *T5Attention `module:"EncDecAttention"`
	LayerNorm       *nn.RMSNorm  `module:"layer_norm"`
}

// T5LayerFF is the feed-forward sub-layer. DenseReluDense is either *T5DenseActDense or *T5DenseGatedActDense.
type T5LayerFF struct {
	DenseReluDense any         `module:"DenseReluDense"`
	LayerNorm      *nn.RMSNorm `module:"layer_norm"`
}

// T5DenseActDense is the original T5 feed-forward.
type T5DenseActDense struct {
	Wi *nn.Linear `module:"wi"`
	Wo *nn.Linear `module:"wo"`
}

// T5DenseGatedActDense is the gated feed-forward of T5 v1.1 and later.
type T5DenseGatedActDense struct {
	Wi0 *nn.Linear `module:"wi_0"`
	Wi1 *nn.Linear `module:"wi_1"`
	Wo  *nn.Linear `module:"wo"`
}

type t5Dims struct {
	dtype                           dtypes.DType
	dModel, innerDim, dFF, numHeads int
	numBuckets                      int
	gated                           bool
}

func (d *t5Dims) attention(withRelativeBias bool) *T5Attention {
	a := &T5Attention{
		Q: nn.NewLinear(d.dtype, d.dModel, d.innerDim, false),
		K: nn.NewLinear(d.dtype, d.dModel, d.innerDim, false),
		V: nn.NewLinear(d.dtype, d.dModel, d.innerDim, false),
		O: nn.NewLinear(d.dtype, d.innerDim, d.dModel, false),
	}
	if withRelativeBias {
		a.RelativeAttentionBias = nn.NewEmbedding(d.dtype, d.numBuckets, d.numHeads)
	}
	return a
}

func (d *t5Dims) feedForward() *T5LayerFF {
	ff := &T5LayerFF{LayerNorm: nn.NewRMSNorm(d.dtype, d.dModel)}
	if d.gated {
		ff.DenseReluDense = &T5DenseGatedActDense{
			Wi0: nn.NewLinear(d.dtype, d.dModel, d.dFF, false),
			Wi1: nn.NewLinear(d.dtype, d.dModel, d.dFF, false),
			Wo:  nn.NewLinear(d.dtype, d.dFF, d.dModel, false),
		}
	} else {
		ff.DenseReluDense = &T5DenseActDense{
			Wi: nn.NewLinear(d.dtype, d.dModel, d.dFF, false),
			Wo: nn.NewLinear(d.dtype, d.dFF, d.dModel, false),
		}
	}
	return ff
}

func (d *t5Dims) stack(shared *nn.Embedding, numLayers int, isDecoder bool) *T5Stack {
	s := &T5Stack{
		EmbedTokens: shared.Tied(),
		Blocks:      make([]*T5Block, numLayers),
	}
	for ii := range s.Blocks {
		block := &T5Block{}
		block.Layers = append(block.Layers, &T5LayerSelfAttention{
			SelfAttention: d.attention(ii == 0),
			LayerNorm:     nn.NewRMSNorm(d.dtype, d.dModel),
		})
		if isDecoder {
			block.Layers = append(block.Layers, &T5LayerCrossAttention{
				EncDecAttention: d.attention(false),
				LayerNorm:       nn.NewRMSNorm(d.dtype, d.dModel),
			})
		}
		block.Layers = append(block.Layers, d.feedForward())
		s.Blocks[ii] = block
	}
	s.FinalLayerNorm = nn.NewRMSNorm(d.dtype, d.dModel)
	return s
}

// NewT5Model builds a T5 model from its configuration.
//
// Required entries: vocab_size, d_model, d_kv, d_ff, num_layers, num_heads.
// Optional: num_decoder_layers (num_layers), relative_attention_num_buckets (32),
// feed_forward_proj ("relu"; "gated-*" selects the gated feed-forward).
func NewT5Model(cfg hf.Config) *T5Model {
	dims := &t5Dims{
		dtype:      configDType(cfg),
		dModel:     requireInt(cfg, "d_model"),
		dFF:        requireInt(cfg, "d_ff"),
		numHeads:   requireInt(cfg, "num_heads"),
		numBuckets: cfg.GetIntOr("relative_attention_num_buckets", 32),
	}
	dims.innerDim = dims.numHeads * requireInt(cfg, "d_kv")
	if proj, found := cfg.GetString("feed_forward_proj"); found {
		dims.gated = strings.HasPrefix(proj, "gated-")
	}
	vocabSize := requireInt(cfg, "vocab_size")
	numLayers := requireInt(cfg, "num_layers")
	numDecoderLayers := cfg.GetIntOr("num_decoder_layers", numLayers)

	shared := nn.NewEmbedding(dims.dtype, vocabSize, dims.dModel)
	return &T5Model{
		Shared:  shared,
		Encoder: dims.stack(shared, numLayers, false),
		Decoder: dims.stack(shared, numDecoderLayers, true),
	}
}
