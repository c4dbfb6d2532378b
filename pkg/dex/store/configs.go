// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package store

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/attentionmech/dex/pkg/dex"
	"github.com/pkg/errors"
)

// WriteConfigs writes the snapshots to path, one JSON object per line, replacing any previous file.
func WriteConfigs(path string, configs []dex.ConfigSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", path)
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, cfg := range configs {
		if err = enc.Encode(cfg); err != nil {
			_ = f.Close()
			return errors.Wrapf(err, "failed to encode config of %q", cfg.ModelName())
		}
	}
	if err = w.Flush(); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to write %q", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %q", path)
}

// AppendConfig appends one snapshot to the JSON lines file at path, creating it if needed.
func AppendConfig(path string, cfg dex.ConfigSnapshot) error {
	line, err := json.Marshal(cfg)
	if err != nil {
		return errors.Wrapf(err, "failed to encode config of %q", cfg.ModelName())
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open %q for appending", path)
	}
	if _, err = f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "failed to append to %q", path)
	}
	return errors.Wrapf(f.Close(), "failed to close %q", path)
}

// ReadConfigs reads a JSON lines file of snapshots. Empty lines are ignored.
func ReadConfigs(path string) ([]dex.ConfigSnapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %q", path)
	}
	defer func() { _ = f.Close() }()
	var configs []dex.ConfigSnapshot
	dec := json.NewDecoder(f)
	for dec.More() {
		var cfg dex.ConfigSnapshot
		if err := dec.Decode(&cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config #%d of %q", len(configs), path)
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}
