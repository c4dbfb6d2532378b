// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/attentionmech/dex/pkg/dex/harvest"
	"github.com/attentionmech/dex/ui/commandline"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"
)

var (
	harvestFlags   listingFlags
	harvestOptions = harvest.DefaultOptions()
	harvestQuiet   bool
)

var harvestCmd = &cobra.Command{
	Use:   "harvest [model ids...]",
	Short: "Extract the parameters of many models, incrementally and resumable",
	Long: `Extract the parameters of the given models, or of the top --limit models of the Hub, appending
them to --temp as they are processed. Models already in --temp or in --resume are skipped, so an
interrupted harvest continues where it stopped. At the end --temp is renamed to --output.

Examples:
  dex harvest --limit 1000
  dex harvest --limit 5000 --resume model_info.arrow --output model_info_v2.arrow`,
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)
	harvestFlags.register(harvestCmd)
	flags := harvestCmd.Flags()
	flags.StringVar(&harvestOptions.OutputPath, "output", harvestOptions.OutputPath, "Final Arrow table.")
	flags.StringVar(&harvestOptions.TempPath, "temp", harvestOptions.TempPath,
		"Arrow table the records are appended to while harvesting.")
	flags.StringVar(&harvestOptions.ResumePath, "resume", "",
		"Arrow table of a previous harvest: models in it are skipped.")
	flags.StringVar(&harvestOptions.ConfigPath, "config_output", harvestOptions.ConfigPath,
		"JSON lines file the configuration snapshots are appended to.")
	flags.IntVar(&harvestOptions.AppendEvery, "append_every", harvestOptions.AppendEvery,
		"Number of models buffered before each append to --temp.")
	flags.BoolVar(&harvestQuiet, "quiet", false, "Don't display a progress bar.")
}

func runHarvest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	opts := harvestOptions
	var err error
	if opts.Extract, err = harvestFlags.extractOptions(); err != nil {
		return err
	}
	modelIDs, err := harvestFlags.modelIDs(ctx, args)
	if err != nil {
		return err
	}
	var progress *commandline.HarvestProgress
	if !harvestQuiet {
		progress = commandline.NewHarvestProgress(len(modelIDs))
		opts.Progress = progress.Update
	}

	stats, err := harvest.New(hubLoader(), opts).Run(ctx, modelIDs)
	if progress != nil {
		progress.Done()
	}
	if err != nil {
		if ctx.Err() != nil {
			klog.Warningf("Harvest interrupted, rerun the same command to continue from %s", opts.TempPath)
		}
		return err
	}
	klog.Infof("Harvest done: %d processed, %d skipped, %d failed", stats.Processed, stats.Skipped, stats.Failed)
	return nil
}
