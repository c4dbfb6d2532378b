// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package architectures

import (
	"testing"

	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	bertBaseConfig = `{"model_type": "bert", "vocab_size": 30522, "hidden_size": 768, "num_hidden_layers": 12,
		"num_attention_heads": 12, "intermediate_size": 3072, "max_position_embeddings": 512, "type_vocab_size": 2}`
	gpt2SmallConfig = `{"model_type": "gpt2", "vocab_size": 50257, "n_embd": 768, "n_layer": 12, "n_head": 12,
		"n_positions": 1024, "n_inner": null}`
	tinyLlamaConfig = `{"model_type": "llama", "vocab_size": 100, "hidden_size": 8, "num_hidden_layers": 2,
		"intermediate_size": 16, "num_attention_heads": 2, "num_key_value_heads": 1, "torch_dtype": "bfloat16"}`
	tinyT5Config = `{"model_type": "t5", "vocab_size": 10, "d_model": 4, "d_kv": 2, "d_ff": 8, "num_layers": 1,
		"num_heads": 2, "relative_attention_num_buckets": 3, "feed_forward_proj": "gated-gelu"}`
)

// countParameters returns the number of parameters, counting tied storage once.
func countParameters(t *testing.T, model any) (total int, names []string) {
	seen := make(map[module.StorageKey]bool)
	for np, err := range module.IterParameters(model) {
		require.NoError(t, err)
		names = append(names, np.Name)
		if seen[np.Parameter.StorageKey()] {
			continue
		}
		seen[np.Parameter.StorageKey()] = true
		total += np.Parameter.Numel()
	}
	return
}

func buildMeta(t *testing.T, config string) any {
	defer module.UseDevice(module.Meta)()
	model, err := Build(must.M1(hf.ParseConfig([]byte(config))))
	require.NoError(t, err)
	return model
}

func TestBert(t *testing.T) {
	model := buildMeta(t, bertBaseConfig)
	require.IsType(t, &BertModel{}, model)
	total, names := countParameters(t, model)
	assert.Equal(t, 109_482_240, total)
	assert.Equal(t, "embeddings.word_embeddings.weight", names[0])
	assert.Contains(t, names, "encoder.layer.11.attention.self.query.bias")
	assert.Equal(t, "pooler.dense.bias", names[len(names)-1])

	sub, found := module.Submodule(model, "encoder.layer.3.attention.output.LayerNorm")
	require.True(t, found)
	assert.Equal(t, "github.com/attentionmech/dex/pkg/ml/nn.LayerNorm", module.ClassName(sub))
	_, found = module.Submodule(model, "encoder.layer.12")
	assert.False(t, found)
}

func TestGPT2(t *testing.T) {
	model := buildMeta(t, gpt2SmallConfig)
	total, names := countParameters(t, model)
	assert.Equal(t, 124_439_808, total)
	assert.Contains(t, names, "h.0.attn.c_attn.weight")
	assert.Equal(t, "ln_f.bias", names[len(names)-1])

	sub, found := module.Submodule(model, "h.5.mlp")
	require.True(t, found)
	assert.Equal(t, "github.com/attentionmech/dex/pkg/ml/architectures.GPT2MLP", module.ClassName(sub))
	file, err := module.SourceFile(sub)
	require.NoError(t, err)
	assert.Contains(t, file, "gpt2.go")
}

func TestLlama(t *testing.T) {
	model := buildMeta(t, tinyLlamaConfig)
	total, names := countParameters(t, model)
	assert.Equal(t, 1992, total)
	assert.NotContains(t, names, "layers.0.self_attn.q_proj.bias")

	llama := model.(*LlamaModel)
	kProj, found := module.Submodule(model, "layers.1.self_attn.k_proj")
	require.True(t, found)
	assert.Same(t, llama.Layers[1].SelfAttn.KProj, kProj)
	assert.Equal(t, []int{4, 8}, llama.Layers[1].SelfAttn.KProj.Weight.Dimensions())
	assert.Equal(t, dtypes.BFloat16, llama.EmbedTokens.Weight.DType())
}

func TestT5SharedEmbeddings(t *testing.T) {
	model := buildMeta(t, tinyT5Config).(*T5Model)
	_, names := countParameters(t, model)
	assert.Equal(t, "shared.weight", names[0])
	assert.Equal(t, "encoder.embed_tokens.weight", names[1])
	assert.Contains(t, names, "encoder.block.0.layer.0.SelfAttention.relative_attention_bias.weight")
	assert.Contains(t, names, "decoder.block.0.layer.1.EncDecAttention.q.weight")
	assert.Contains(t, names, "decoder.block.0.layer.2.DenseReluDense.wi_1.weight")
	assert.Contains(t, names, "decoder.embed_tokens.weight")

	shared := model.Shared.Weight.StorageKey()
	assert.Equal(t, shared, model.Encoder.EmbedTokens.Weight.StorageKey())
	assert.Equal(t, shared, model.Decoder.EmbedTokens.Weight.StorageKey())

	ff, found := module.Submodule(model, "encoder.block.0.layer.1.DenseReluDense")
	require.True(t, found)
	assert.IsType(t, &T5DenseGatedActDense{}, ff)
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(hf.Config{"model_type": "not_a_model"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupported))
	assert.Contains(t, err.Error(), "bert")

	_, err = Build(hf.Config{})
	assert.True(t, errors.Is(err, ErrUnsupported))

	// Missing required entry: the builder panic becomes an error.
	_, err = Build(hf.Config{"model_type": "bert", "vocab_size": 10.0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hidden_size")
}

func TestMetaDevice(t *testing.T) {
	model := buildMeta(t, bertBaseConfig)
	for np, err := range module.IterParameters(model) {
		require.NoError(t, err)
		require.False(t, np.Parameter.IsMaterialized(), "parameter %s allocated on meta device", np.Name)
		require.Equal(t, module.Meta, np.Parameter.Device())
	}
	assert.Equal(t, module.Host, module.DefaultDevice())

	// On the host the weights are allocated.
	model, err := Build(must.M1(hf.ParseConfig([]byte(tinyLlamaConfig))))
	require.NoError(t, err)
	llama := model.(*LlamaModel)
	assert.True(t, llama.Norm.Weight.IsMaterialized())
	assert.Len(t, llama.Norm.Weight.Bytes(), 8*2)
}
