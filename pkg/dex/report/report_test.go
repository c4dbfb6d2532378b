// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(model, name string, numel int, shared bool) dex.ParameterRecord {
	parent, leaf := "", name
	level := 0
	for ii := len(name) - 1; ii >= 0; ii-- {
		if name[ii] == '.' {
			if parent == "" {
				parent, leaf = name[:ii], name[ii+1:]
			}
			level++
		}
	}
	return dex.ParameterRecord{
		ModelName:    model,
		ParamName:    name,
		ParentModule: parent,
		Level:        level,
		Numel:        numel,
		ParamType:    dex.CategorizeParam(leaf),
		IsShared:     shared,
	}
}

func testRecords() []dex.ParameterRecord {
	return []dex.ParameterRecord{
		record("org/a", "embed.weight", 100, false),
		record("org/a", "layers.0.dense.weight", 16, false),
		record("org/a", "layers.0.dense.bias", 4, false),
		record("org/a", "layers.0.norm.scale", 4, false),
		record("org/a", "head.weight", 100, true),
		record("org/b", "inv_freq", 8, false),
		record("org/b", "proj.bias", 2, false),
	}
}

func TestSummarize(t *testing.T) {
	summaries, err := Summarize(testRecords())
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	a := summaries[0]
	assert.Equal(t, "org/a", a.ModelName)
	assert.Equal(t, 5, a.Tensors)
	assert.Equal(t, 1, a.SharedTensors)
	assert.Equal(t, 224, a.TotalNumel)
	assert.Equal(t, 124, a.UniqueNumel)
	assert.Equal(t, 3, a.MaxLevel)
	assert.Equal(t, map[dex.ParamType]int{dex.ParamWeight: 116, dex.ParamBias: 4, dex.ParamOther: 4}, a.NumelByType)

	b := summaries[1]
	assert.Equal(t, "org/b", b.ModelName)
	assert.Equal(t, 2, b.Tensors)
	assert.Equal(t, 0, b.SharedTensors)
	assert.Equal(t, 10, b.UniqueNumel)
	assert.Equal(t, 1, b.MaxLevel)
	assert.Equal(t, map[dex.ParamType]int{dex.ParamBias: 2, dex.ParamOther: 8}, b.NumelByType)

	empty, err := Summarize(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPlotParamTypes(t *testing.T) {
	summaries := must.M1(Summarize(testRecords()))
	dir := t.TempDir()
	for _, name := range []string{"params.png", "params.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, PlotParamTypes(summaries, path))
		info := must.M1(os.Stat(path))
		assert.Greater(t, info.Size(), int64(0))
	}
	require.Error(t, PlotParamTypes(nil, filepath.Join(dir, "empty.png")))
}

func TestParamTypesFigure(t *testing.T) {
	summaries := must.M1(Summarize(testRecords()))
	fig := ParamTypesFigure(summaries)
	require.Len(t, fig.Data, 3) // weight, bias and other: no model has norm or embedding parameters.
	assert.IsType(t, &grob.Bar{}, fig.Data[0])
	assert.Equal(t, grob.BarBarmodeGroup, fig.Layout.Barmode)

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, fig))
	assert.Contains(t, buf.String(), "Plotly.newPlot('plot0'")
	assert.NotContains(t, buf.String(), "plot1")
}
