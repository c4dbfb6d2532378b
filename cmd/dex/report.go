// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/attentionmech/dex/pkg/dex/report"
	"github.com/attentionmech/dex/pkg/dex/store"
	"github.com/attentionmech/dex/ui/commandline"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	summaryRecords bool
	plotOutput     string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <arrow file>",
	Short: "Print a per-model summary of a parameters table",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

var plotCmd = &cobra.Command{
	Use:   "plot <arrow file>",
	Short: "Plot the number of parameters per type of each model",
	Long: `Plot the number of parameters per type of each model as a grouped bar chart.

The format is taken from the --out extension: ".html" writes an interactive Plotly page, other
extensions (".png", ".svg", ".pdf", ...) a static image.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(plotCmd)
	summaryCmd.Flags().BoolVar(&summaryRecords, "records", false, "Also list every parameter record.")
	plotCmd.Flags().StringVar(&plotOutput, "out", "params.png", "Output file.")
}

func loadSummaries(path string) ([]report.ModelSummary, error) {
	records, err := store.ReadAll(path)
	if err != nil {
		return nil, err
	}
	return report.Summarize(records)
}

func runSummary(cmd *cobra.Command, args []string) error {
	records, err := store.ReadAll(args[0])
	if err != nil {
		return err
	}
	summaries, err := report.Summarize(records)
	if err != nil {
		return err
	}
	if summaryRecords {
		fmt.Fprintln(cmd.OutOrStdout(), commandline.RecordsTable(records).Render())
	}
	fmt.Fprintln(cmd.OutOrStdout(), commandline.SummaryTable(summaries).Render())
	return nil
}

func runPlot(cmd *cobra.Command, args []string) error {
	summaries, err := loadSummaries(args[0])
	if err != nil {
		return err
	}
	if strings.ToLower(filepath.Ext(plotOutput)) == ".html" {
		err = report.WriteHTMLFile(plotOutput, report.ParamTypesFigure(summaries))
	} else {
		err = report.PlotParamTypes(summaries, plotOutput)
	}
	if err != nil {
		return err
	}
	klog.Infof("Plot of %d models written to %s", len(summaries), plotOutput)
	return nil
}
