// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package hf

import (
	"context"
	"encoding/json"
	"maps"
	"math"
	"os"

	"github.com/gomlx/go-huggingface/hub"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ConfigFileName is the name of the model configuration file in a Hugging Face model repository.
const ConfigFileName = "config.json"

// Config is the model configuration (the contents of config.json): a JSON mapping whose keys vary
// with the architecture.
type Config map[string]any

// ParseConfig parses the contents of a config.json file.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse model config")
	}
	if cfg == nil {
		return nil, errors.New("model config is empty (null)")
	}
	return cfg, nil
}

// DownloadConfig fetches config.json for modelID from the Hugging Face Hub and parses it.
// Files are cached locally by the hub package, so repeated calls are cheap.
//
// authToken is optional, and only needed for private models.
func DownloadConfig(ctx context.Context, modelID, authToken string) (Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	repo := hub.New(modelID)
	if authToken != "" {
		repo = repo.WithAuth(authToken)
	}
	localPath, err := repo.DownloadFile(ConfigFileName)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to download %s for model %q", ConfigFileName, modelID)
	}
	klog.V(2).Infof("Config for %q cached in %s", modelID, localPath)
	data, err := os.ReadFile(localPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s for model %q", localPath, modelID)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "model %q", modelID)
	}
	return cfg, nil
}

// ModelType returns the "model_type" entry, used to select the architecture. It returns "" if not set.
func (c Config) ModelType() string {
	s, _ := c.GetString("model_type")
	return s
}

// GetInt returns the integer value for key. JSON numbers are accepted if they are integral.
func (c Config) GetInt(key string) (int, bool) {
	v, ok := c.GetFloat(key)
	if !ok || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// GetIntOr returns the integer value for key, or defaultValue if not set or not an integer.
func (c Config) GetIntOr(key string, defaultValue int) int {
	if v, ok := c.GetInt(key); ok {
		return v
	}
	return defaultValue
}

// GetFloat returns the numeric value for key.
func (c Config) GetFloat(key string) (float64, bool) {
	switch v := c[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// GetBool returns the boolean value for key.
func (c Config) GetBool(key string) (bool, bool) {
	v, ok := c[key].(bool)
	return v, ok
}

// GetBoolOr returns the boolean value for key, or defaultValue if not set or not a boolean.
func (c Config) GetBoolOr(key string, defaultValue bool) bool {
	if v, ok := c.GetBool(key); ok {
		return v
	}
	return defaultValue
}

// GetString returns the string value for key.
func (c Config) GetString(key string) (string, bool) {
	v, ok := c[key].(string)
	return v, ok
}

// Clone returns a shallow copy of the configuration: nested values are shared.
func (c Config) Clone() Config {
	return maps.Clone(c)
}
