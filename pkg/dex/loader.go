// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import (
	"context"

	"github.com/attentionmech/dex/pkg/hf"
	"github.com/attentionmech/dex/pkg/ml/architectures"
)

// ModelLoader fetches model configurations and builds models from them.
//
// Instantiate is called with the default module device already set by the caller, see ExtractModelData.
type ModelLoader interface {
	LoadConfig(ctx context.Context, modelID string) (hf.Config, error)
	Instantiate(cfg hf.Config) (any, error)
}

// HubLoader downloads the configuration from the HuggingFace Hub and builds the base model with
// the architectures registry.
type HubLoader struct {
	// AuthToken is used for private or gated repositories. Optional.
	AuthToken string
}

var _ ModelLoader = (*HubLoader)(nil)

// LoadConfig implements ModelLoader.
func (l *HubLoader) LoadConfig(ctx context.Context, modelID string) (hf.Config, error) {
	return hf.DownloadConfig(ctx, modelID, l.AuthToken)
}

// Instantiate implements ModelLoader.
func (l *HubLoader) Instantiate(cfg hf.Config) (any, error) {
	return architectures.Build(cfg)
}
