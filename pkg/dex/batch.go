// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import (
	"context"

	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ExtractOptions configures the processing of each model.
type ExtractOptions struct {
	// MaxValueLen is the maximum length of string values in the ConfigSnapshot.
	MaxValueLen int

	// Meta builds the models on the module.Meta device, so no weights are allocated.
	Meta bool
}

// DefaultExtractOptions returns the options used by the command line.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{MaxValueLen: DefaultMaxValueLen, Meta: true}
}

// Device returns the device models should be built on.
func (o ExtractOptions) Device() module.Device {
	if o.Meta {
		return module.Meta
	}
	return module.DefaultDevice()
}

// Result holds the data extracted from a batch of models.
type Result struct {
	Records []ParameterRecord
	Configs []ConfigSnapshot
}

// ProcessModel loads, instantiates and extracts the parameters of a single model.
//
// It doesn't change the default device: see ExtractModelData. Panics in the loader are returned as errors.
func ProcessModel(ctx context.Context, loader ModelLoader, modelID string, maxValueLen int) (
	records []ParameterRecord, snapshot ConfigSnapshot, err error) {
	var processErr error
	err = exceptions.TryCatch[error](func() {
		records, snapshot, processErr = processModel(ctx, loader, modelID, maxValueLen)
	})
	if err == nil {
		err = processErr
	}
	if err != nil {
		return nil, nil, errors.WithMessagef(err, "failed to process model %q", modelID)
	}
	return records, snapshot, nil
}

func processModel(ctx context.Context, loader ModelLoader, modelID string, maxValueLen int) (
	[]ParameterRecord, ConfigSnapshot, error) {
	cfg, err := loader.LoadConfig(ctx, modelID)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "loading config")
	}
	// The snapshot is taken from the configuration as downloaded, even if Instantiate changes it.
	model, err := loader.Instantiate(cfg.Clone())
	if err != nil {
		return nil, nil, errors.WithMessage(err, "instantiating model")
	}
	records, err := ExtractParameters(model, modelID)
	if err != nil {
		return nil, nil, err
	}
	return records, NewConfigSnapshot(modelID, cfg, maxValueLen), nil
}

// ExtractModelData processes each of the models in order, and returns the aggregate of the
// parameter records and configuration snapshots of the models successfully processed.
//
// A model that fails to load or instantiate is logged and skipped. The default module device is set
// according to opts for the duration of the call, and always restored.
//
// It returns an error only if ctx is cancelled, at any point until the last model is done, along with
// the models processed so far.
func ExtractModelData(ctx context.Context, loader ModelLoader, modelIDs []string, opts ExtractOptions) (*Result, error) {
	defer module.UseDevice(opts.Device())()
	result := &Result{}
	for _, modelID := range modelIDs {
		if err := ctx.Err(); err != nil {
			return result, errors.Wrap(err, "extraction interrupted")
		}
		klog.Infof("Processing model: %s", modelID)
		records, snapshot, err := ProcessModel(ctx, loader, modelID, opts.MaxValueLen)
		if err != nil {
			if ctx.Err() != nil {
				return result, errors.Wrap(ctx.Err(), "extraction interrupted")
			}
			klog.Warningf("Skipping %s: %v", modelID, err)
			continue
		}
		result.Records = append(result.Records, records...)
		result.Configs = append(result.Configs, snapshot)
	}
	if err := ctx.Err(); err != nil {
		return result, errors.Wrap(err, "extraction interrupted")
	}
	return result, nil
}
