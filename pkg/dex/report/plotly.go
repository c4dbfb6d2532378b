// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package report

import (
	"encoding/base64"
	"encoding/json"
	"html/template"
	"io"
	"os"

	grob "github.com/MetalBlueberry/go-plotly/generated/v2.34.0/graph_objects"
	ptypes "github.com/MetalBlueberry/go-plotly/pkg/types"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/janpfeifer/gonb/gonbui/plotly"
	"github.com/pkg/errors"
)

// ParamTypesFigure returns an interactive Plotly version of PlotParamTypes. The y-axis is logarithmic,
// since biases and norms are orders of magnitude smaller than weights.
func ParamTypesFigure(summaries []ModelSummary) *grob.Fig {
	fig := &grob.Fig{
		Layout: &grob.Layout{
			Title:   &grob.LayoutTitle{Text: ptypes.S("Parameters per type")},
			Barmode: grob.BarBarmodeGroup,
			Yaxis: &grob.LayoutYaxis{
				Showgrid: ptypes.B(true),
				Type:     grob.LayoutYaxisTypeLog,
			},
		},
	}
	names := xslices.Map(summaries, func(s ModelSummary) string { return s.ModelName })
	for _, paramType := range paramTypesPresent(summaries) {
		values := xslices.Map(summaries, func(s ModelSummary) float64 { return float64(s.NumelByType[paramType]) })
		fig.Data = append(fig.Data, &grob.Bar{
			Name: ptypes.S(string(paramType)),
			X:    ptypes.DataArray(names),
			Y:    ptypes.DataArray(values),
		})
	}
	return fig
}

var htmlTemplate = template.Must(template.New("plotly").Parse(`<!DOCTYPE html>
<head>
	<meta charset="utf-8">
	<script src="{{ .CDN }}"></script>
</head>
<body>
{{- range $i, $f := .Figures }}
	<div id="plot{{ $i }}"></div>
{{- end }}
	<script>
{{- range $i, $f := .Figures }}
		Plotly.newPlot('plot{{ $i }}', JSON.parse(atob('{{ $f }}')));
{{- end }}
	</script>
</body>
</html>`))

// WriteHTML renders the figures to a self-contained HTML page (Plotly is loaded from its CDN).
func WriteHTML(w io.Writer, figs ...*grob.Fig) error {
	encoded := make([]string, len(figs))
	for ii, fig := range figs {
		figJSON, err := json.Marshal(fig)
		if err != nil {
			return errors.Wrapf(err, "failed to marshal plotly figure #%d", ii)
		}
		encoded[ii] = base64.StdEncoding.EncodeToString(figJSON)
	}
	data := &struct {
		CDN     string
		Figures []string
	}{CDN: plotly.PlotlySrc, Figures: encoded}
	if err := htmlTemplate.Execute(w, data); err != nil {
		return errors.Wrap(err, "failed to render plotly")
	}
	return nil
}

// WriteHTMLFile is like WriteHTML, but writes to the file at path.
func WriteHTMLFile(path string, figs ...*grob.Fig) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %q", path)
	}
	if err = WriteHTML(f, figs...); err != nil {
		_ = f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "failed to close %q", path)
}
