// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package store

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/pkg/errors"
)

// Column names.
const (
	ColID           = "id"
	ColModelName    = "model_name"
	ColParamName    = "param_name"
	ColParentModule = "parent_module"
	ColLevel        = "level"
	ColNumel        = "numel"
	ColShape        = "shape"
	ColClassName    = "class_name"
	ColFilePath     = "file_path"
	ColParamType    = "param_type"
	ColIsShared     = "is_shared"
)

// Schema of the parameter table, in column order.
var Schema = arrow.NewSchema([]arrow.Field{
	{Name: ColID, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColModelName, Type: arrow.BinaryTypes.String},
	{Name: ColParamName, Type: arrow.BinaryTypes.String},
	{Name: ColParentModule, Type: arrow.BinaryTypes.String},
	{Name: ColLevel, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColNumel, Type: arrow.PrimitiveTypes.Int64},
	{Name: ColShape, Type: arrow.BinaryTypes.String},
	{Name: ColClassName, Type: arrow.BinaryTypes.String},
	{Name: ColFilePath, Type: arrow.BinaryTypes.String},
	{Name: ColParamType, Type: arrow.BinaryTypes.String},
	{Name: ColIsShared, Type: arrow.FixedWidthTypes.Boolean},
}, nil)

// Tables written by other tools (e.g. pyarrow) may use other integer widths or large strings,
// so columns are read by name with accessors that accept the compatible types.

func columnByName(rec arrow.Record, name string) (arrow.Array, error) {
	indices := rec.Schema().FieldIndices(name)
	if len(indices) == 0 {
		return nil, errors.Errorf("column %q not found", name)
	}
	return rec.Column(indices[0]), nil
}

func intColumn(rec arrow.Record, name string) (func(row int) int, error) {
	col, err := columnByName(rec, name)
	if err != nil {
		return nil, err
	}
	switch a := col.(type) {
	case *array.Int64:
		return func(row int) int { return int(a.Value(row)) }, nil
	case *array.Int32:
		return func(row int) int { return int(a.Value(row)) }, nil
	case *array.Uint64:
		return func(row int) int { return int(a.Value(row)) }, nil
	case *array.Uint32:
		return func(row int) int { return int(a.Value(row)) }, nil
	}
	return nil, errors.Errorf("column %q has type %s, expected an integer", name, col.DataType())
}

func stringColumn(rec arrow.Record, name string) (func(row int) string, error) {
	col, err := columnByName(rec, name)
	if err != nil {
		return nil, err
	}
	switch a := col.(type) {
	case *array.String:
		return func(row int) string {
			if a.IsNull(row) {
				return ""
			}
			return a.Value(row)
		}, nil
	case *array.LargeString:
		return func(row int) string {
			if a.IsNull(row) {
				return ""
			}
			return a.Value(row)
		}, nil
	}
	return nil, errors.Errorf("column %q has type %s, expected a string", name, col.DataType())
}

func boolColumn(rec arrow.Record, name string) (func(row int) bool, error) {
	col, err := columnByName(rec, name)
	if err != nil {
		return nil, err
	}
	a, ok := col.(*array.Boolean)
	if !ok {
		return nil, errors.Errorf("column %q has type %s, expected a boolean", name, col.DataType())
	}
	return func(row int) bool { return a.IsValid(row) && a.Value(row) }, nil
}
