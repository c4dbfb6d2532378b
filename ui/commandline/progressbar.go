// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package commandline

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/attentionmech/dex/pkg/dex/harvest"
	"github.com/attentionmech/dex/ui/notebooks"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

// ProgressbarStyle to use. Defaults to the ASCII version.
// Consider "progressbar.ThemeUnicode" for a prettier version.
// But it requires some of the graphical symbols to be supported.
var ProgressbarStyle = progressbar.ThemeASCII

// HarvestProgress displays the progress of a harvest.Harvester run. Use its Update method as
// harvest.Options.Progress.
type HarvestProgress struct {
	bar    *progressbar.ProgressBar
	out    io.Writer
	start  time.Time
	counts map[harvest.Status]int
}

// NewHarvestProgress creates a progress bar for numModels models, written to stdout.
func NewHarvestProgress(numModels int) *HarvestProgress {
	return newHarvestProgress(numModels, os.Stdout)
}

func newHarvestProgress(numModels int, out io.Writer) *HarvestProgress {
	options := []progressbar.Option{
		progressbar.OptionSetDescription("models"),
		progressbar.OptionSetTheme(ProgressbarStyle),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("models"),
		progressbar.OptionShowIts(),
	}
	if !notebooks.IsNotebook() {
		options = append(options, progressbar.OptionUseANSICodes(true))
	}
	return &HarvestProgress{
		bar:    progressbar.NewOptions(numModels, options...),
		out:    out,
		start:  time.Now(),
		counts: make(map[harvest.Status]int),
	}
}

// Update implements the harvest.Options.Progress callback.
func (p *HarvestProgress) Update(modelID string, status harvest.Status) {
	p.counts[status]++
	p.bar.Describe(fmt.Sprintf("%-9s %s", status, modelID))
	_ = p.bar.Add(1)
}

// Done finishes the progress bar and prints the counts of each status.
func (p *HarvestProgress) Done() {
	_ = p.bar.Finish()
	_, _ = fmt.Fprintln(p.out)
	_, _ = fmt.Fprintln(p.out, p.Table().Render())
}

// Table with the counts of each status and the elapsed time.
func (p *HarvestProgress) Table() *lgtable.Table {
	table := NewPlainTable(false)
	for _, status := range []harvest.Status{harvest.StatusProcessed, harvest.StatusSkipped, harvest.StatusFailed} {
		table.Row(status.String(), humanize.Comma(int64(p.counts[status])))
	}
	table.Row("elapsed", FormatDuration(time.Since(p.start)))
	return table
}
