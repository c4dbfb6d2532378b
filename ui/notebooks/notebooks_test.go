// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package notebooks

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/attentionmech/dex/pkg/dex"
	"github.com/janpfeifer/must"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodePayload(t *testing.T, encoded string, v any) {
	compressed, err := base64.URLEncoding.DecodeString(encoded)
	require.NoError(t, err)
	r := must.M1(zlib.NewReader(bytes.NewReader(compressed)))
	data := must.M1(io.ReadAll(r))
	require.NoError(t, json.Unmarshal(data, v))
}

func TestDexURL(t *testing.T) {
	records := []dex.ParameterRecord{
		{SequenceID: 0, ModelName: "org/a", ParamName: "wte.weight", Level: 1, Numel: 12, Shape: "3,4",
			ClassName: "nn.Embedding", FilePath: "pkg/ml/nn/embedding.go", ParamType: dex.ParamWeight},
		{SequenceID: 1, ModelName: "org/a", ParamName: "lm_head.weight", Level: 1, Numel: 12, Shape: "3,4",
			ClassName: dex.Unknown, FilePath: dex.Unknown, ParamType: dex.ParamWeight, IsShared: true},
	}
	configs := []dex.ConfigSnapshot{{"model_name": "org/a", "model_type": "gpt2", "n_embd": 4.0}}
	dexURL, err := DexURL(DefaultBaseURL, records, configs)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(dexURL, DefaultBaseURL+"?"))

	parsed := must.M1(url.Parse(dexURL))
	query := parsed.Query()
	var gotRecords []dex.ParameterRecord
	decodePayload(t, query.Get("arrow"), &gotRecords)
	assert.Equal(t, records, gotRecords)
	var gotConfigs []dex.ConfigSnapshot
	decodePayload(t, query.Get("config"), &gotConfigs)
	assert.Equal(t, configs, gotConfigs)

	// The visualizer reads the records by these keys.
	var rawRecords []map[string]any
	decodePayload(t, query.Get("arrow"), &rawRecords)
	for _, key := range []string{"id", "model_name", "param_name", "parent_module", "level", "numel", "shape",
		"class_name", "file_path", "param_type", "is_shared"} {
		assert.Contains(t, rawRecords[1], key)
	}
}

func TestDexURLEmpty(t *testing.T) {
	dexURL := must.M1(DexURL("http://localhost:5173/", nil, nil))
	query := must.M1(url.Parse(dexURL)).Query()
	var records []any
	decodePayload(t, query.Get("arrow"), &records)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestIFrame(t *testing.T) {
	frame := IFrame("https://getlosh.xyz/dex?arrow=a&config=b", 800, 600)
	assert.Contains(t, frame, `src="https://getlosh.xyz/dex?arrow=a&amp;config=b"`)
	assert.Contains(t, frame, `width="800"`)
	assert.Contains(t, frame, `height="600"`)
}
