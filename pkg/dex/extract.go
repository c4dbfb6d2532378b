// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import (
	"strings"

	"github.com/attentionmech/dex/pkg/ml/module"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ExtractParameters returns one record per parameter of model, in enumeration order.
//
// Failing to resolve the module owning a parameter, or its source file, is not an error: the
// corresponding fields are set to Unknown. An error is returned only if the model parameters cannot
// be enumerated.
//
// Source file paths are made relative to the current directory, see CleanPath.
func ExtractParameters(model any, modelName string) ([]ParameterRecord, error) {
	return extractParameters(model, modelName, workingDir())
}

func extractParameters(model any, modelName, cwd string) ([]ParameterRecord, error) {
	var records []ParameterRecord
	seen := sets.Make[module.StorageKey]()
	for np, err := range module.IterParameters(model) {
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to enumerate parameters of model %q", modelName)
		}
		parent, leaf := splitParamName(np.Name)
		className, filePath := ownerInfo(model, parent, cwd)
		key := np.Parameter.StorageKey()
		isShared := seen.Has(key)
		seen.Insert(key)
		record := ParameterRecord{
			SequenceID:   len(records),
			ModelName:    modelName,
			ParamName:    np.Name,
			ParentModule: parent,
			Level:        strings.Count(np.Name, module.Separator),
			Numel:        np.Parameter.Numel(),
			Shape:        np.Parameter.ShapeString(),
			ClassName:    className,
			FilePath:     filePath,
			ParamType:    CategorizeParam(leaf),
			IsShared:     isShared,
		}
		if klog.V(2).Enabled() {
			klog.Infof("  %s", &record)
		}
		records = append(records, record)
	}
	klog.V(1).Infof("%s: %d parameter tensors", modelName, len(records))
	return records, nil
}

// ownerInfo returns the class name and the normalized source file of the module at path, or Unknown.
func ownerInfo(model any, path, cwd string) (className, filePath string) {
	owner, found := module.Submodule(model, path)
	if !found {
		klog.V(1).Infof("module %q not found", path)
		return Unknown, Unknown
	}
	className = module.ClassName(owner)
	file, err := module.SourceFile(owner)
	if err != nil {
		klog.V(1).Infof("module %q: %v", path, err)
		return className, Unknown
	}
	return className, CleanPath(file, cwd)
}
