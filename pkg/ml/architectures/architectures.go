// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package architectures builds the parameter structure of Hugging Face model architectures from their
// configuration, the equivalent of instantiating the base model (no task head) from its config.json.
//
// Builders are registered by the "model_type" of the configuration. Models are built on the current
// module.DefaultDevice: use module.Meta to get the structure without allocating the weights.
package architectures

import (
	"strings"
	"sync"

	"github.com/attentionmech/dex/pkg/hf"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/pkg/core/dtypes"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Builder constructs a model from its configuration.
//
// It may panic (with exceptions.Panicf) on missing or invalid configuration entries: Build converts
// panics into errors.
type Builder func(cfg hf.Config) any

var (
	muRegistry sync.RWMutex
	registry   = make(map[string]Builder)
)

// Register a builder for the given model type. It overwrites any previous registration.
func Register(modelType string, builder Builder) {
	muRegistry.Lock()
	defer muRegistry.Unlock()
	registry[modelType] = builder
}

// List returns the registered model types, sorted.
func List() []string {
	muRegistry.RLock()
	defer muRegistry.RUnlock()
	return xslices.SortedKeys(registry)
}

// ErrUnsupported is returned (wrapped) by Build for unknown model types.
var ErrUnsupported = errors.New("unsupported architecture")

// Build instantiates the model described by cfg.
func Build(cfg hf.Config) (model any, err error) {
	modelType := cfg.ModelType()
	if modelType == "" {
		return nil, errors.Wrap(ErrUnsupported, "config has no \"model_type\"")
	}
	muRegistry.RLock()
	builder, found := registry[modelType]
	muRegistry.RUnlock()
	if !found {
		return nil, errors.Wrapf(ErrUnsupported, "model_type %q (supported: %s)", modelType, strings.Join(List(), ", "))
	}
	err = exceptions.TryCatch[error](func() { model = builder(cfg) })
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to build %q model", modelType)
	}
	return model, nil
}

// requireInt returns the integer config entry or panics.
func requireInt(cfg hf.Config, key string) int {
	v, found := cfg.GetInt(key)
	if !found {
		exceptions.Panicf("config entry %q missing or not an integer", key)
	}
	if v < 0 {
		exceptions.Panicf("config entry %q must be non-negative, got %d", key, v)
	}
	return v
}

// firstInt returns the first of the keys present in the config, or panics.
// Different architectures use different names for the same hyperparameter (e.g. "n_embd" and "hidden_size").
func firstInt(cfg hf.Config, keys ...string) int {
	for _, key := range keys {
		if _, found := cfg.GetInt(key); found {
			return requireInt(cfg, key)
		}
	}
	exceptions.Panicf("config is missing all of %q", keys)
	return 0
}

// configDType returns the dtype of the weights declared in the config, defaulting to float32.
func configDType(cfg hf.Config) dtypes.DType {
	for _, key := range []string{"torch_dtype", "dtype"} {
		name, found := cfg.GetString(key)
		if !found {
			continue
		}
		if dtype, found := dtypes.MapOfNames[strings.ToLower(name)]; found {
			return dtype
		}
	}
	return dtypes.Float32
}
