// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// PlotParamTypes saves a grouped bar chart with the number of parameters of each type, per model.
// The image format is taken from the file extension (e.g. ".png", ".svg", ".pdf").
func PlotParamTypes(summaries []ModelSummary, path string) error {
	if len(summaries) == 0 {
		return errors.New("no models to plot")
	}
	p := plot.New()
	p.Title.Text = "Parameters per type"
	p.Y.Label.Text = "parameters"
	p.Legend.Top = true

	barWidth := vg.Points(8)
	types := paramTypesPresent(summaries)
	for typeIdx, paramType := range types {
		values := make(plotter.Values, len(summaries))
		for ii, s := range summaries {
			values[ii] = float64(s.NumelByType[paramType])
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return errors.Wrapf(err, "failed to create bars for %q", paramType)
		}
		bars.LineStyle.Width = vg.Length(0)
		bars.Color = plotutil.Color(typeIdx)
		bars.Offset = barWidth * vg.Length(2*typeIdx-len(types)+1) / 2
		p.Add(bars)
		p.Legend.Add(string(paramType), bars)
	}
	names := make([]string, len(summaries))
	for ii, s := range summaries {
		names[ii] = s.ModelName
	}
	p.NominalX(names...)

	width := max(6*vg.Inch, vg.Length(len(summaries)*len(types))*barWidth*2)
	if err := p.Save(width, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %q", path)
	}
	return nil
}

// paramTypesPresent returns the parameter types with parameters in at least one model, in dex.ParamTypes order.
func paramTypesPresent(summaries []ModelSummary) []dex.ParamType {
	var types []dex.ParamType
	for _, paramType := range dex.ParamTypes {
		for _, s := range summaries {
			if s.NumelByType[paramType] > 0 {
				types = append(types, paramType)
				break
			}
		}
	}
	return types
}
