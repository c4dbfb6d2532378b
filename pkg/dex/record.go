// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import (
	"fmt"
	"strings"

	"github.com/attentionmech/dex/pkg/ml/module"
)

// Unknown is the value of ParameterRecord.ClassName and ParameterRecord.FilePath when the owning module
// or its source could not be resolved.
const Unknown = "Unknown"

// ParameterRecord describes one parameter tensor of a model.
type ParameterRecord struct {
	// SequenceID is the position of the parameter in the model's enumeration, starting at 0.
	SequenceID int `json:"id"`

	ModelName string `json:"model_name"`

	// ParamName is the full dotted path, e.g. "encoder.layer.0.attention.self.query.weight".
	ParamName string `json:"param_name"`

	// ParentModule is ParamName without its last segment.
	ParentModule string `json:"parent_module"`

	// Level is the number of separators in ParamName.
	Level int `json:"level"`

	Numel int `json:"numel"`

	// Shape holds the dimensions joined by commas, "" for scalars.
	Shape string `json:"shape"`

	ClassName string    `json:"class_name"`
	FilePath  string    `json:"file_path"`
	ParamType ParamType `json:"param_type"`

	// IsShared is set if the parameter storage was already seen earlier in the same model (tied weights).
	IsShared bool `json:"is_shared"`
}

// String implements fmt.Stringer.
func (r *ParameterRecord) String() string {
	shared := ""
	if r.IsShared {
		shared = ", shared"
	}
	return fmt.Sprintf("%s/%s [%s] %s (%s%s)", r.ModelName, r.ParamName, r.Shape, r.ParamType, r.ClassName, shared)
}

// splitParamName returns the parent module path and the leaf name of a dotted parameter name.
func splitParamName(name string) (parent, leaf string) {
	idx := strings.LastIndex(name, module.Separator)
	if idx < 0 {
		return "", name
	}
	return name[:idx], name[idx+len(module.Separator):]
}

// ConfigSnapshot is the configuration of a processed model, with string values truncated and the
// extra key "model_name".
type ConfigSnapshot map[string]any

// ModelNameKey is the key added to every ConfigSnapshot.
const ModelNameKey = "model_name"

// ModelName returns the name of the model the snapshot belongs to.
func (c ConfigSnapshot) ModelName() string {
	name, _ := c[ModelNameKey].(string)
	return name
}

// ModelNames returns the distinct model names of records, in order of first appearance.
func ModelNames(records []ParameterRecord) []string {
	var names []string
	seen := make(map[string]bool)
	for _, r := range records {
		if !seen[r.ModelName] {
			seen[r.ModelName] = true
			names = append(names, r.ModelName)
		}
	}
	return names
}
