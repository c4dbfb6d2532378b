// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/attentionmech/dex/ui/notebooks"
	"github.com/spf13/cobra"
)

var (
	urlFlags   listingFlags
	urlBaseURL string
)

var urlCmd = &cobra.Command{
	Use:   "url <model ids...>",
	Short: "Print the web visualizer URL for the given models",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := notebooks.DefaultDisplayOptions()
		opts.BaseURL = urlBaseURL
		var err error
		if opts.Extract, err = urlFlags.extractOptions(); err != nil {
			return err
		}
		_, err = notebooks.Display(cmd.Context(), hubLoader(), opts, args...)
		return err
	},
}

func init() {
	rootCmd.AddCommand(urlCmd)
	urlFlags.registerExtract(urlCmd)
	urlCmd.Flags().StringVar(&urlBaseURL, "base_url", notebooks.DefaultBaseURL, "Web visualizer URL.")
}
