// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package harvest runs a resumable extraction over a list of models.
//
// Records are appended to a temporary table after each model (or every Options.AppendEvery models), and
// models already present in the temporary table, or in an optional resume table, are skipped. Only when
// the whole list is done is the temporary table renamed to its final path. An interrupted run is
// resumed by running it again with the same temporary path.
package harvest

import (
	"context"
	"fmt"

	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/dex/store"
	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Options of a Harvester. Use DefaultOptions and change what is needed.
type Options struct {
	// OutputPath is the final table, written only at the end of a complete run.
	OutputPath string

	// TempPath is the table records are appended to during the run.
	TempPath string

	// ResumePath is an optional table of models already processed in a previous run.
	ResumePath string

	// ConfigPath is the JSON lines file where the configuration of each processed model is appended.
	// If empty, configurations are not saved.
	ConfigPath string

	// AppendEvery is the number of models buffered before appending to the temporary table.
	// Each append rewrites the whole table, so larger values make long runs cheaper, at the cost of
	// redoing up to AppendEvery-1 models if the run is interrupted.
	AppendEvery int

	Extract dex.ExtractOptions

	// Progress, if set, is called after each model is handled.
	Progress func(modelID string, status Status)
}

// DefaultOptions returns the default paths used by the command line.
func DefaultOptions() Options {
	return Options{
		OutputPath:  "model_info.arrow",
		TempPath:    "temp.arrow",
		ConfigPath:  "config_list.jsonl",
		AppendEvery: 1,
		Extract:     dex.DefaultExtractOptions(),
	}
}

// State of a Harvester run.
type State int

const (
	StateInit State = iota
	StateProcessing
	StateFinalize
	StateDone
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateProcessing:
		return "processing"
	case StateFinalize:
		return "finalize"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status of one model in a run.
type Status int

const (
	StatusSkipped Status = iota
	StatusProcessed
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusProcessed:
		return "processed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Stats of a run.
type Stats struct {
	Processed, Skipped, Failed int

	// Finalized is set if the temporary table was renamed to the output path.
	Finalized bool
}

// Harvester runs the extraction of a list of models, see package documentation.
type Harvester struct {
	loader dex.ModelLoader
	opts   Options

	state     State
	processed sets.Set[string]

	pendingRecords []dex.ParameterRecord
	pendingConfigs []dex.ConfigSnapshot
	pendingModels  int
}

// New creates a Harvester that loads models with loader.
func New(loader dex.ModelLoader, opts Options) *Harvester {
	if opts.AppendEvery < 1 {
		opts.AppendEvery = 1
	}
	return &Harvester{loader: loader, opts: opts}
}

// State returns the current state of the run.
func (h *Harvester) State() State { return h.state }

// Run processes the models in order, skipping those already processed.
//
// Failing models are logged and skipped. Errors writing the temporary table are returned immediately,
// leaving the temporary table as it was after the last successful append. If ctx is cancelled, the
// pending records are appended and ctx's error is returned, without finalizing.
func (h *Harvester) Run(ctx context.Context, modelIDs []string) (*Stats, error) {
	stats := &Stats{}
	h.state = StateInit
	h.loadProcessed()

	h.state = StateProcessing
	defer module.UseDevice(h.opts.Extract.Device())()
	for _, modelID := range modelIDs {
		if ctx.Err() != nil {
			return stats, h.interrupt(ctx)
		}
		status, err := h.processModel(ctx, modelID)
		if err != nil {
			return stats, err
		}
		if status == StatusFailed && ctx.Err() != nil {
			// Failed because of the cancellation: left for the next run.
			return stats, h.interrupt(ctx)
		}
		switch status {
		case StatusSkipped:
			stats.Skipped++
		case StatusProcessed:
			stats.Processed++
		case StatusFailed:
			stats.Failed++
		}
		if h.opts.Progress != nil {
			h.opts.Progress(modelID, status)
		}
	}
	if ctx.Err() != nil {
		return stats, h.interrupt(ctx)
	}
	if err := h.flush(); err != nil {
		return stats, err
	}

	h.state = StateFinalize
	finalized, err := h.finalize()
	if err != nil {
		return stats, err
	}
	stats.Finalized = finalized
	h.state = StateDone
	return stats, nil
}

// interrupt appends the pending records and returns ctx's error. The temporary table is kept as is,
// so the run can be resumed.
func (h *Harvester) interrupt(ctx context.Context) error {
	if err := h.flush(); err != nil {
		return err
	}
	return errors.Wrap(ctx.Err(), "harvest interrupted")
}

// loadProcessed loads the names of the models already in the temporary and resume tables.
func (h *Harvester) loadProcessed() {
	h.processed = store.LoadProcessedNames(h.opts.TempPath)
	klog.Infof("%d models already in temp file.", len(h.processed))
	if h.opts.ResumePath != "" {
		resumed := store.LoadProcessedNames(h.opts.ResumePath)
		klog.Infof("%d models found in resume file.", len(resumed))
		for name := range resumed {
			h.processed.Insert(name)
		}
	}
}

// processModel handles one model. Only failures to write the temporary table are returned as errors.
func (h *Harvester) processModel(ctx context.Context, modelID string) (Status, error) {
	if h.processed.Has(modelID) {
		klog.Infof("Skipping already processed: %s", modelID)
		return StatusSkipped, nil
	}
	klog.Infof("Processing: %s", modelID)
	records, snapshot, err := dex.ProcessModel(ctx, h.loader, modelID, h.opts.Extract.MaxValueLen)
	if err != nil {
		if ctx.Err() == nil {
			klog.Warningf("Skipped: %s: %v", modelID, err)
		}
		return StatusFailed, nil
	}
	if len(records) == 0 {
		klog.Warningf("Model %s has no parameters: it is not recorded in the table and will be processed again on resume", modelID)
	}
	h.pendingRecords = append(h.pendingRecords, records...)
	h.pendingConfigs = append(h.pendingConfigs, snapshot)
	h.pendingModels++
	h.processed.Insert(modelID)
	if h.pendingModels >= h.opts.AppendEvery {
		if err := h.flush(); err != nil {
			return StatusFailed, err
		}
	}
	klog.Infof("Done: %s", modelID)
	return StatusProcessed, nil
}

// flush appends the pending configurations and records.
//
// Configurations go first: if interrupted in between, a model may have its configuration saved twice,
// but never none.
func (h *Harvester) flush() error {
	if h.pendingModels == 0 {
		return nil
	}
	if h.opts.ConfigPath != "" {
		for _, cfg := range h.pendingConfigs {
			if err := store.AppendConfig(h.opts.ConfigPath, cfg); err != nil {
				klog.Errorf("Failed to write config for %s: %v", cfg.ModelName(), err)
			}
		}
	}
	if err := store.Append(h.opts.TempPath, h.pendingRecords); err != nil {
		return errors.WithMessagef(err, "failed to append %d models to %q", h.pendingModels, h.opts.TempPath)
	}
	h.pendingRecords, h.pendingConfigs, h.pendingModels = nil, nil, 0
	return nil
}

func (h *Harvester) finalize() (bool, error) {
	exists, err := store.Exists(h.opts.TempPath)
	if err != nil {
		return false, err
	}
	if !exists {
		klog.Infof("Nothing was written. Final file not created.")
		return false, nil
	}
	if err := store.Finalize(h.opts.TempPath, h.opts.OutputPath); err != nil {
		return false, err
	}
	return true, nil
}
