// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package notebooks

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"net/url"

	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/dex/report"
	"github.com/janpfeifer/gonb/gonbui"
	gonbplotly "github.com/janpfeifer/gonb/gonbui/plotly"
	"github.com/klauspost/compress/zlib"
	"github.com/pkg/errors"
)

// DefaultBaseURL of the dex web visualizer.
const DefaultBaseURL = "https://getlosh.xyz/dex"

// DisplayOptions for Display.
type DisplayOptions struct {
	BaseURL       string
	Width, Height int
	Extract       dex.ExtractOptions
}

// DefaultDisplayOptions returns the options of the public visualizer, with an 800x600 iframe.
func DefaultDisplayOptions() DisplayOptions {
	return DisplayOptions{
		BaseURL: DefaultBaseURL,
		Width:   800,
		Height:  600,
		Extract: dex.DefaultExtractOptions(),
	}
}

// EncodePayload serializes v as JSON, compresses it with zlib and encodes it with URL-safe base64.
func EncodePayload(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "failed to serialize payload to JSON")
	}
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err = w.Write(data); err != nil {
		return "", errors.Wrap(err, "failed to compress payload")
	}
	if err = w.Close(); err != nil {
		return "", errors.Wrap(err, "failed to compress payload")
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// DexURL returns the visualizer URL for the given records and configuration snapshots: both are passed
// encoded (see EncodePayload) in the "arrow" and "config" query parameters.
func DexURL(baseURL string, records []dex.ParameterRecord, configs []dex.ConfigSnapshot) (string, error) {
	if records == nil {
		records = []dex.ParameterRecord{}
	}
	if configs == nil {
		configs = []dex.ConfigSnapshot{}
	}
	arrowParam, err := EncodePayload(records)
	if err != nil {
		return "", errors.WithMessage(err, "parameter records")
	}
	configParam, err := EncodePayload(configs)
	if err != nil {
		return "", errors.WithMessage(err, "configurations")
	}
	query := url.Values{}
	query.Set("arrow", arrowParam)
	query.Set("config", configParam)
	return baseURL + "?" + query.Encode(), nil
}

// IFrame returns the HTML of an iframe showing the URL.
func IFrame(url string, width, height int) string {
	return fmt.Sprintf(`<iframe src="%s" width="%d" height="%d" frameborder="0" allowfullscreen></iframe>`,
		html.EscapeString(url), width, height)
}

// Display extracts the parameters of the models and shows them in the dex visualizer.
// In GoNB it displays an iframe, otherwise it prints the URL. It returns the URL.
func Display(ctx context.Context, loader dex.ModelLoader, opts DisplayOptions, modelIDs ...string) (string, error) {
	result, err := dex.ExtractModelData(ctx, loader, modelIDs, opts.Extract)
	if err != nil {
		return "", err
	}
	dexURL, err := DexURL(opts.BaseURL, result.Records, result.Configs)
	if err != nil {
		return "", err
	}
	if IsGoNB() {
		gonbui.DisplayHTML(IFrame(dexURL, opts.Width, opts.Height))
	} else {
		fmt.Println(dexURL)
	}
	return dexURL, nil
}

// DisplayParamTypes plots the parameters per type of each model with Plotly. It only works in GoNB.
func DisplayParamTypes(summaries []report.ModelSummary) error {
	if !IsGoNB() {
		return errors.New("DisplayParamTypes requires a GoNB notebook")
	}
	return gonbplotly.DisplayFig(report.ParamTypesFigure(summaries))
}
