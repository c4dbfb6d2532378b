// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hf

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingJSON = `[
  {"_id": "1", "id": "org/plain", "tags": ["transformers", "bert"], "gated": false},
  {"_id": "2", "id": "org/gated", "tags": ["transformers"], "gated": "manual"},
  {"_id": "3", "modelId": "org/custom", "tags": ["custom_code"]},
  {"_id": "4", "id": "org/auto", "gated": "auto"},
  {"_id": "5", "id": "org/no-tags"}
]`

func TestListModels(t *testing.T) {
	var gotQuery, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models", r.URL.Path)
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(listingJSON))
	}))
	defer server.Close()

	client := NewClient(server.URL).WithAuthToken("secret")
	models := must.M1(client.ListModels(context.Background(), 5, "trending_score"))
	assert.Equal(t, "direction=-1&limit=5&sort=trending_score", gotQuery)
	assert.Equal(t, "Bearer secret", gotAuth)

	require.Len(t, models, 5)
	assert.Equal(t, "org/plain", models[0].ID)
	assert.False(t, bool(models[0].Gated))
	assert.True(t, bool(models[1].Gated))
	assert.Equal(t, "org/custom", models[2].ID)
	assert.True(t, bool(models[3].Gated))

	valid := FilterValid(models)
	assert.Equal(t, []string{"org/plain", "org/no-tags"}, ModelIDs(valid))
}

func TestListModelsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()
	_, err := NewClient(server.URL).ListModels(context.Background(), 10, "likes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestConfig(t *testing.T) {
	cfg := must.M1(ParseConfig([]byte(`{
		"model_type": "bert", "hidden_size": 768, "layer_norm_eps": 1e-12,
		"tie_word_embeddings": true, "ratio": 0.5, "architectures": ["BertModel"]
	}`)))
	assert.Equal(t, "bert", cfg.ModelType())
	hidden, found := cfg.GetInt("hidden_size")
	require.True(t, found)
	assert.Equal(t, 768, hidden)
	_, isInt := cfg.GetInt("ratio")
	assert.False(t, isInt)
	assert.Equal(t, 12, cfg.GetIntOr("num_hidden_layers", 12))
	assert.True(t, cfg.GetBoolOr("tie_word_embeddings", false))
	assert.False(t, cfg.GetBoolOr("missing", false))
	var eps float64
	eps, found = cfg.GetFloat("layer_norm_eps")
	require.True(t, found)
	assert.InDelta(t, 1e-12, eps, 1e-20)
	hidden, found = Config{"n": json.Number("64"), "m": int64(3)}.GetInt("n")
	require.True(t, found)
	assert.Equal(t, 64, hidden)
	assert.Equal(t, 3, Config{"m": int64(3)}.GetIntOr("m", 0))
	_, found = Config{"n": json.Number("1.5")}.GetInt("n")
	assert.False(t, found)

	clone := cfg.Clone()
	clone["model_type"] = "gpt2"
	assert.Equal(t, "bert", cfg.ModelType())

	_, err := ParseConfig([]byte(`null`))
	require.Error(t, err)
	_, err = ParseConfig([]byte(`{not json`))
	require.Error(t, err)
}
