// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package report aggregates parameter records per model and plots them.
package report

import (
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/dex/store"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ModelSummary aggregates the parameter records of one model.
type ModelSummary struct {
	ModelName string

	// Tensors is the number of parameter records, including shared ones.
	Tensors int

	// SharedTensors is the number of records whose storage was already listed (tied weights).
	SharedTensors int

	// TotalNumel sums the elements of all records, counting tied weights at each occurrence.
	TotalNumel int

	// UniqueNumel sums the elements of the non-shared records: the actual number of parameters.
	UniqueNumel int

	// NumelByType is UniqueNumel broken down by parameter type. Types without parameters are omitted.
	NumelByType map[dex.ParamType]int

	// MaxLevel is the deepest nesting level of a parameter.
	MaxLevel int
}

// NewDataFrame converts records to a data frame with the store column names.
// Only the columns used for aggregation are included.
func NewDataFrame(records []dex.ParameterRecord) dataframe.DataFrame {
	n := len(records)
	var (
		modelNames = make([]string, n)
		paramNames = make([]string, n)
		paramTypes = make([]string, n)
		levels     = make([]int, n)
		numels     = make([]int, n)
		shared     = make([]bool, n)
	)
	for ii, r := range records {
		modelNames[ii] = r.ModelName
		paramNames[ii] = r.ParamName
		paramTypes[ii] = string(r.ParamType)
		levels[ii] = r.Level
		numels[ii] = r.Numel
		shared[ii] = r.IsShared
	}
	return dataframe.New(
		series.New(modelNames, series.String, store.ColModelName),
		series.New(paramNames, series.String, store.ColParamName),
		series.New(paramTypes, series.String, store.ColParamType),
		series.New(levels, series.Int, store.ColLevel),
		series.New(numels, series.Int, store.ColNumel),
		series.New(shared, series.Bool, store.ColIsShared),
	)
}

func equalTo(column string, value any) dataframe.F {
	return dataframe.F{Colname: column, Comparator: series.Eq, Comparando: value}
}

// sumColumn sums an integer column, 0 for an empty data frame.
func sumColumn(df dataframe.DataFrame, column string) int {
	if df.Nrow() == 0 {
		return 0
	}
	return int(df.Col(column).Sum())
}

// Summarize aggregates the records per model, in the order models first appear.
func Summarize(records []dex.ParameterRecord) ([]ModelSummary, error) {
	if len(records) == 0 {
		return nil, nil
	}
	df := NewDataFrame(records)
	if df.Err != nil {
		return nil, df.Err
	}
	modelNames := dex.ModelNames(records)
	summaries := make([]ModelSummary, 0, len(modelNames))
	for _, modelName := range modelNames {
		modelDF := df.Filter(equalTo(store.ColModelName, modelName))
		if modelDF.Err != nil {
			return nil, modelDF.Err
		}
		uniqueDF := modelDF.Filter(equalTo(store.ColIsShared, false))
		s := ModelSummary{
			ModelName:     modelName,
			Tensors:       modelDF.Nrow(),
			SharedTensors: modelDF.Nrow() - uniqueDF.Nrow(),
			TotalNumel:    sumColumn(modelDF, store.ColNumel),
			UniqueNumel:   sumColumn(uniqueDF, store.ColNumel),
			NumelByType:   make(map[dex.ParamType]int),
			MaxLevel:      int(modelDF.Col(store.ColLevel).Max()),
		}
		if uniqueDF.Nrow() > 0 {
			for _, paramType := range dex.ParamTypes {
				if numel := sumColumn(uniqueDF.Filter(equalTo(store.ColParamType, string(paramType))), store.ColNumel); numel > 0 {
					s.NumelByType[paramType] = numel
				}
			}
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}
