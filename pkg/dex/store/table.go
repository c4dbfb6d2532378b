// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package store

import (
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/gomlx/gomlx/pkg/support/fsutil"
	"github.com/gomlx/gomlx/pkg/support/sets"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// partialSuffix is appended to the path of a table while it is being written.
const partialSuffix = ".partial"

// Exists returns whether there is a file at path. File system errors other than "not found" are
// returned as errors.
func Exists(path string) (bool, error) {
	return fsutil.FileExists(path)
}

// readTable calls fn with each record batch of the Arrow IPC file at path.
func readTable(path string, fn func(rec arrow.Record) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "failed to open table %q", path)
	}
	defer func() { _ = f.Close() }()
	reader, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return errors.Wrapf(err, "failed to read Arrow file %q", path)
	}
	defer func() { _ = reader.Close() }()
	for ii := range reader.NumRecords() {
		rec, err := reader.Record(ii)
		if err != nil {
			return errors.Wrapf(err, "failed to read record batch #%d of %q", ii, path)
		}
		if err = fn(rec); err != nil {
			return errors.WithMessagef(err, "record batch #%d of %q", ii, path)
		}
	}
	return nil
}

// ReadAll reads the parameter table at path.
func ReadAll(path string) ([]dex.ParameterRecord, error) {
	var records []dex.ParameterRecord
	err := readTable(path, func(rec arrow.Record) error {
		var err error
		records, err = appendRecords(records, rec)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// appendRecords converts the rows of rec and appends them to records.
func appendRecords(records []dex.ParameterRecord, rec arrow.Record) ([]dex.ParameterRecord, error) {
	var err error
	ints := make(map[string]func(int) int)
	for _, name := range []string{ColID, ColLevel, ColNumel} {
		if ints[name], err = intColumn(rec, name); err != nil {
			return nil, err
		}
	}
	strs := make(map[string]func(int) string)
	for _, name := range []string{ColModelName, ColParamName, ColParentModule, ColShape, ColClassName, ColFilePath, ColParamType} {
		if strs[name], err = stringColumn(rec, name); err != nil {
			return nil, err
		}
	}
	isShared, err := boolColumn(rec, ColIsShared)
	if err != nil {
		return nil, err
	}
	for row := range int(rec.NumRows()) {
		records = append(records, dex.ParameterRecord{
			SequenceID:   ints[ColID](row),
			ModelName:    strs[ColModelName](row),
			ParamName:    strs[ColParamName](row),
			ParentModule: strs[ColParentModule](row),
			Level:        ints[ColLevel](row),
			Numel:        ints[ColNumel](row),
			Shape:        strs[ColShape](row),
			ClassName:    strs[ColClassName](row),
			FilePath:     strs[ColFilePath](row),
			ParamType:    dex.ParamType(strs[ColParamType](row)),
			IsShared:     isShared(row),
		})
	}
	return records, nil
}

// buildRecord converts records to one Arrow record batch. The caller must Release it.
func buildRecord(records []dex.ParameterRecord) arrow.Record {
	builder := array.NewRecordBuilder(memory.DefaultAllocator, Schema)
	defer builder.Release()
	builder.Reserve(len(records))
	intField := func(ii int) *array.Int64Builder { return builder.Field(ii).(*array.Int64Builder) }
	strField := func(ii int) *array.StringBuilder { return builder.Field(ii).(*array.StringBuilder) }
	for _, r := range records {
		intField(0).Append(int64(r.SequenceID))
		strField(1).Append(r.ModelName)
		strField(2).Append(r.ParamName)
		strField(3).Append(r.ParentModule)
		intField(4).Append(int64(r.Level))
		intField(5).Append(int64(r.Numel))
		strField(6).Append(r.Shape)
		strField(7).Append(r.ClassName)
		strField(8).Append(r.FilePath)
		strField(9).Append(string(r.ParamType))
		builder.Field(10).(*array.BooleanBuilder).Append(r.IsShared)
	}
	return builder.NewRecord()
}

// WriteAll writes records as the full contents of the table at path, replacing any previous file.
//
// The table is first written to a sibling file and then renamed, so an interrupted write never leaves
// a truncated table at path.
func WriteAll(path string, records []dex.ParameterRecord) (err error) {
	rec := buildRecord(records)
	defer rec.Release()

	partialPath := path + partialSuffix
	f, err := os.Create(partialPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create %q", partialPath)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(partialPath)
		}
	}()
	writer, err := ipc.NewFileWriter(f, ipc.WithSchema(Schema), ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		return errors.Wrapf(err, "failed to create Arrow writer for %q", partialPath)
	}
	if err = writer.Write(rec); err != nil {
		return errors.Wrapf(err, "failed to write %d records to %q", len(records), partialPath)
	}
	if err = writer.Close(); err != nil {
		return errors.Wrapf(err, "failed to close Arrow writer for %q", partialPath)
	}
	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %q", partialPath)
	}
	if err = os.Rename(partialPath, path); err != nil {
		return errors.Wrapf(err, "failed to move %q to %q", partialPath, path)
	}
	return nil
}

// Append adds records to the table at path, creating it if it doesn't exist.
//
// The existing table is read in full and rewritten with the new records at the end. If the existing
// file can't be read, it is logged and replaced by a table with only the new records. Write failures
// are returned.
func Append(path string, records []dex.ParameterRecord) error {
	exists, err := Exists(path)
	if err != nil {
		return err
	}
	var combined []dex.ParameterRecord
	if exists {
		combined, err = ReadAll(path)
		if err != nil {
			klog.Warningf("Error reading existing table, overwriting it: %v", err)
			combined = nil
		}
	}
	combined = append(combined, records...)
	if err := WriteAll(path, combined); err != nil {
		return err
	}
	klog.Infof("Appended %d rows to %s", len(records), path)
	return nil
}

// LoadProcessedNames returns the distinct model names in the table at path.
//
// It never fails: a missing table yields an empty set, and an unreadable one is logged and also
// yields an empty set.
func LoadProcessedNames(path string) sets.Set[string] {
	names := sets.Make[string]()
	if path == "" {
		return names
	}
	if exists, err := Exists(path); err != nil || !exists {
		if err != nil {
			klog.Warningf("Failed to load file %s: %v", path, err)
		}
		return names
	}
	err := readTable(path, func(rec arrow.Record) error {
		modelName, err := stringColumn(rec, ColModelName)
		if err != nil {
			return err
		}
		for row := range int(rec.NumRows()) {
			names.Insert(modelName(row))
		}
		return nil
	})
	if err != nil {
		klog.Warningf("Failed to load file %s: %v", path, err)
		return sets.Make[string]()
	}
	return names
}

// Finalize renames the table at tempPath to finalPath, replacing any existing file.
func Finalize(tempPath, finalPath string) error {
	if err := os.Rename(tempPath, finalPath); err != nil {
		return errors.Wrapf(err, "failed to rename %q to %q", tempPath, finalPath)
	}
	klog.Infof("Renamed %s to %s", tempPath, finalPath)
	return nil
}
