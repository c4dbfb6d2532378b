// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/attentionmech/dex/pkg/dex"
	"github.com/attentionmech/dex/pkg/hf"
	"github.com/gomlx/gomlx/pkg/support/xslices"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

var (
	flagConfig  string
	flagHFToken string
	flagHubURL  string
)

var rootCmd = &cobra.Command{
	Use:   "dex",
	Short: "dex - parameter metadata of HuggingFace models",
	Long: `dex builds HuggingFace models from their configuration, without allocating any weights,
and records one row per parameter: name, shape, number of elements, owning module and its source
file, type and whether it is shared with another parameter.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagConfig == "" {
			return nil
		}
		return applyConfigFile(cmd.Flags(), flagConfig)
	},
}

func init() {
	goFlags := flag.NewFlagSet("klog", flag.ExitOnError)
	klog.InitFlags(goFlags)
	rootCmd.PersistentFlags().AddGoFlagSet(goFlags)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"YAML file with values for any of the flags, keyed by flag name. Flags set explicitly take precedence.")
	rootCmd.PersistentFlags().StringVar(&flagHFToken, "hf_token", os.Getenv("HF_TOKEN"),
		"HuggingFace token, for gated or private models. Defaults to $HF_TOKEN.")
	rootCmd.PersistentFlags().StringVar(&flagHubURL, "hub_url", hf.DefaultEndpoint, "HuggingFace Hub endpoint.")
}

// applyConfigFile sets the flags not explicitly given on the command line from the YAML file at path.
func applyConfigFile(flags *pflag.FlagSet, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "failed to read configuration file %q", path)
	}
	var values map[string]any
	if err := yaml.Unmarshal(data, &values); err != nil {
		return errors.Wrapf(err, "failed to parse configuration file %q", path)
	}
	return applyConfig(flags, values)
}

func applyConfig(flags *pflag.FlagSet, values map[string]any) error {
	for name, value := range values {
		f := flags.Lookup(name)
		if f == nil {
			klog.Warningf("Configuration key %q is not a flag of this command, ignored", name)
			continue
		}
		if f.Changed {
			continue
		}
		if err := f.Value.Set(configValueString(value)); err != nil {
			return errors.Wrapf(err, "invalid configuration value for %q", name)
		}
	}
	return nil
}

func configValueString(value any) string {
	switch v := value.(type) {
	case []any:
		// Slice flags accept comma-separated values.
		return strings.Join(xslices.Map(v, func(e any) string { return fmt.Sprint(e) }), ",")
	default:
		return fmt.Sprint(v)
	}
}

// Flags shared by the extract and harvest commands.
type listingFlags struct {
	limit       int
	sortBy      string
	maxValueLen int
	meta        bool
}

func (l *listingFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&l.limit, "limit", 100, "Number of models to list from the Hub, when no model ids are given.")
	cmd.Flags().StringVar(&l.sortBy, "sort_by", "trending_score", "Hub sort key (descending) for the listing.")
	l.registerExtract(cmd)
}

// registerExtract registers only the flags of the extraction itself, for commands that take explicit model ids.
func (l *listingFlags) registerExtract(cmd *cobra.Command) {
	cmd.Flags().IntVar(&l.maxValueLen, "max_value_len", dex.DefaultMaxValueLen,
		"Maximum length of string values kept in the configuration snapshots.")
	cmd.Flags().BoolVar(&l.meta, "meta", true, "Build models on the meta device, without allocating weights.")
}

func (l *listingFlags) extractOptions() (dex.ExtractOptions, error) {
	if l.maxValueLen < 0 {
		return dex.ExtractOptions{}, errors.Errorf("--max_value_len must be >= 0, got %d", l.maxValueLen)
	}
	return dex.ExtractOptions{MaxValueLen: l.maxValueLen, Meta: l.meta}, nil
}

// modelIDs returns args if given, otherwise lists the models from the Hub, skipping gated ones and those
// requiring custom code.
func (l *listingFlags) modelIDs(ctx context.Context, args []string) ([]string, error) {
	if len(args) > 0 {
		return slices.Clone(args), nil
	}
	client := hf.NewClient(flagHubURL).WithAuthToken(flagHFToken)
	models, err := client.ListModels(ctx, l.limit, l.sortBy)
	if err != nil {
		return nil, err
	}
	valid := hf.FilterValid(models)
	klog.Infof("Listed %d models, %d without gating or custom code", len(models), len(valid))
	return hf.ModelIDs(valid), nil
}

func hubLoader() *dex.HubLoader {
	return &dex.HubLoader{AuthToken: flagHFToken}
}
