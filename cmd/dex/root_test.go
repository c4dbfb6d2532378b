// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyConfigFile(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	limit := flags.Int("limit", 100, "")
	sortBy := flags.String("sort_by", "trending_score", "")
	meta := flags.Bool("meta", true, "")
	tags := flags.StringSlice("tags", nil, "")
	require.NoError(t, flags.Parse([]string{"--sort_by=likes"}))

	path := filepath.Join(t.TempDir(), "dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
limit: 7
sort_by: downloads
meta: false
tags: [a, b]
unknown_key: 1
`), 0o644))
	require.NoError(t, applyConfigFile(flags, path))
	assert.Equal(t, 7, *limit)
	assert.Equal(t, "likes", *sortBy, "explicit flags take precedence")
	assert.False(t, *meta)
	assert.Equal(t, []string{"a", "b"}, *tags)

	require.NoError(t, os.WriteFile(path, []byte("limit: many\n"), 0o644))
	assert.Error(t, applyConfigFile(flags, path))
	assert.Error(t, applyConfigFile(flags, filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestCommands(t *testing.T) {
	var names []string
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"extract", "harvest", "summary", "plot", "url"} {
		assert.Contains(t, names, name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("v"), "klog flags are exposed")
	assert.NotNil(t, harvestCmd.Flags().Lookup("resume"))
}

func TestExtractOptions(t *testing.T) {
	flags := listingFlags{maxValueLen: 20, meta: true}
	opts, err := flags.extractOptions()
	require.NoError(t, err)
	assert.Equal(t, 20, opts.MaxValueLen)
	assert.True(t, opts.Meta)

	flags.maxValueLen = -1
	_, err = flags.extractOptions()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max_value_len")
}
