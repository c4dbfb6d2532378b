// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/dex/store"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	extractFlags        listingFlags
	extractOutput       string
	extractConfigOutput string
)

var extractCmd = &cobra.Command{
	Use:   "extract [model ids...]",
	Short: "Extract the parameters of a batch of models into an Arrow table",
	Long: `Extract the parameters of the given models, or of the top --limit models of the Hub, and write
them at once to --output. Configuration snapshots are written as JSON lines to --config_output.

Models that fail to load are logged and skipped.`,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractFlags.register(extractCmd)
	extractCmd.Flags().StringVar(&extractOutput, "output", "model_info.arrow", "Arrow table with the parameter records.")
	extractCmd.Flags().StringVar(&extractConfigOutput, "config_output", "config_list.jsonl",
		"JSON lines file with one configuration snapshot per model.")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	extractOpts, err := extractFlags.extractOptions()
	if err != nil {
		return err
	}
	modelIDs, err := extractFlags.modelIDs(ctx, args)
	if err != nil {
		return err
	}
	result, err := dex.ExtractModelData(ctx, hubLoader(), modelIDs, extractOpts)
	if err != nil {
		// Interrupted: nothing is written, since a batch run is not resumable.
		return err
	}
	if err := store.WriteAll(extractOutput, result.Records); err != nil {
		return err
	}
	if err := store.WriteConfigs(extractConfigOutput, result.Configs); err != nil {
		return err
	}
	klog.Infof("Wrote %d parameters of %d models to %s (configurations in %s)",
		len(result.Records), len(result.Configs), extractOutput, extractConfigOutput)
	return nil
}
