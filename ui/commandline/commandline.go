// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package commandline contains convenience UI tools for the command line: tables and progress bars.
package commandline

import (
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/dex/report"
	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)
)

// NewPlainTable returns a table with alternating row colors. If withHeader is set, the first row is
// rendered as a header.
//
// The first column is right-aligned, the others left-aligned.
func NewPlainTable(withHeader bool) *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if withHeader && row == lgtable.HeaderRow {
				s = headerRowStyle
				return
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			if col == 0 {
				s = s.Align(lipgloss.Right)
			} else {
				s = s.Align(lipgloss.Left)
			}
			return
		})
}

// SummaryTable returns a table with one row per model summary, with the parameter counts by type.
func SummaryTable(summaries []report.ModelSummary) *lgtable.Table {
	table := NewPlainTable(true)
	header := []string{"Model", "Tensors", "Shared", "Parameters", "Max depth"}
	for _, paramType := range dex.ParamTypes {
		header = append(header, string(paramType))
	}
	table.Headers(header...)
	for _, s := range summaries {
		row := []string{
			s.ModelName,
			humanize.Comma(int64(s.Tensors)),
			humanize.Comma(int64(s.SharedTensors)),
			humanize.Comma(int64(s.UniqueNumel)),
			humanize.Comma(int64(s.MaxLevel)),
		}
		for _, paramType := range dex.ParamTypes {
			row = append(row, humanize.Comma(int64(s.NumelByType[paramType])))
		}
		table.Row(row...)
	}
	return table
}

// RecordsTable returns a table listing each parameter record.
func RecordsTable(records []dex.ParameterRecord) *lgtable.Table {
	table := NewPlainTable(true)
	table.Headers("#", "Parameter", "Shape", "Size", "Type", "Module class", "Shared")
	for _, r := range records {
		shared := ""
		if r.IsShared {
			shared = "yes"
		}
		table.Row(humanize.Comma(int64(r.SequenceID)), r.ParamName, r.Shape, humanize.Comma(int64(r.Numel)),
			string(r.ParamType), r.ClassName, shared)
	}
	return table
}
