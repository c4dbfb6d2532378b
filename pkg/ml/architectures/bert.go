// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package architectures

import (
	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/attentionmech/dex/pkg/ml/nn"
)

func init() {
	Register("bert", func(cfg hf.Config) any { return NewBertModel(cfg) })
	module.Register[BertModel]()
	module.Register[BertEmbeddings]()
	module.Register[BertEncoder]()
	module.Register[BertLayer]()
	module.Register[BertAttention]()
	module.Register[BertSelfAttention]()
	module.Register[BertOutput]()
	module.Register[BertIntermediate]()
	module.Register[BertPooler]()
}

// BertModel is the bare BERT encoder, with the optional pooler.
type BertModel struct {
	Embeddings *BertEmbeddings `module:"embeddings"`
	Encoder    *BertEncoder    `module:"encoder"`
	Pooler     *BertPooler     `module:"pooler"`
}

// BertEmbeddings sums word, position and token type embeddings, followed by a LayerNorm.
type BertEmbeddings struct {
	WordEmbeddings      *nn.Embedding `module:"word_embeddings"`
	PositionEmbeddings  *nn.Embedding `module:"position_embeddings"`
	TokenTypeEmbeddings *nn.Embedding `module:"token_type_embeddings"`
	LayerNorm           *nn.LayerNorm `module:"LayerNorm"`
}

// BertEncoder is the stack of transformer layers.
type BertEncoder struct {
	Layers []*BertLayer `module:"layer"`
}

// BertLayer is one post-norm transformer layer.
type BertLayer struct {
	Attention    *BertAttention    `module:"attention"`
	Intermediate *BertIntermediate `module:"intermediate"`
	Output       *BertOutput       `module:"output"`
}

// BertAttention groups the self-attention projections and its output.
type BertAttention struct {
	Self   *BertSelfAttention `module:"self"`
	Output *BertOutput        `module:"output"`
}

// BertSelfAttention holds the query, key and value projections.
type BertSelfAttention struct {
	Query *nn.Linear `module:"query"`
	Key   *nn.Linear `module:"key"`
	Value *nn.Linear `module:"value"`
}

// BertOutput projects back to the hidden size, followed by a residual LayerNorm.
type BertOutput struct {
	Dense     *nn.Linear    `module:"dense"`
	LayerNorm *nn.LayerNorm `module:"LayerNorm"`
}

// BertIntermediate is the expansion of the feed-forward block.
type BertIntermediate struct {
	Dense *nn.Linear `module:"dense"`
}

// BertPooler transforms the first token hidden state.
type BertPooler struct {
	Dense *nn.Linear `module:"dense"`
}

// NewBertModel builds a BERT model from its configuration.
//
// Required entries: vocab_size, hidden_size, num_hidden_layers, intermediate_size.
// Optional: max_position_embeddings (512), type_vocab_size (2), add_pooling_layer (true).
func NewBertModel(cfg hf.Config) *BertModel {
	dtype := configDType(cfg)
	vocabSize := requireInt(cfg, "vocab_size")
	hidden := requireInt(cfg, "hidden_size")
	numLayers := requireInt(cfg, "num_hidden_layers")
	intermediate := requireInt(cfg, "intermediate_size")
	maxPositions := cfg.GetIntOr("max_position_embeddings", 512)
	typeVocabSize := cfg.GetIntOr("type_vocab_size", 2)

	m := &BertModel{
		Embeddings: &BertEmbeddings{
			WordEmbeddings:      nn.NewEmbedding(dtype, vocabSize, hidden),
			PositionEmbeddings:  nn.NewEmbedding(dtype, maxPositions, hidden),
			TokenTypeEmbeddings: nn.NewEmbedding(dtype, typeVocabSize, hidden),
			LayerNorm:           nn.NewLayerNorm(dtype, hidden, true),
		},
		Encoder: &BertEncoder{Layers: make([]*BertLayer, numLayers)},
	}
	for ii := range m.Encoder.Layers {
		m.Encoder.Layers[ii] = &BertLayer{
			Attention: &BertAttention{
				Self: &BertSelfAttention{
					Query: nn.NewLinear(dtype, hidden, hidden, true),
					Key:   nn.NewLinear(dtype, hidden, hidden, true),
					Value: nn.NewLinear(dtype, hidden, hidden, true),
				},
				Output: &BertOutput{
					Dense:     nn.NewLinear(dtype, hidden, hidden, true),
					LayerNorm: nn.NewLayerNorm(dtype, hidden, true),
				},
			},
			Intermediate: &BertIntermediate{Dense: nn.NewLinear(dtype, hidden, intermediate, true)},
			Output: &BertOutput{
				Dense:     nn.NewLinear(dtype, intermediate, hidden, true),
				LayerNorm: nn.NewLayerNorm(dtype, hidden, true),
			},
		}
	}
	if cfg.GetBoolOr("add_pooling_layer", true) {
		m.Pooler = &BertPooler{Dense: nn.NewLinear(dtype, hidden, hidden, true)}
	}
	return m
}
