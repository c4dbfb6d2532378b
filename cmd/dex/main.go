// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// dex harvests the parameter metadata of HuggingFace models into Arrow tables, and summarizes
// or plots the harvested tables.
//
// Models are built from their config.json only, on the zero-footprint meta device: no weights are
// downloaded or allocated.
//
// Usage:
//
//	dex extract --limit 100 --output model_info.arrow
//	dex harvest --limit 1000 --resume old_model_info.arrow
//	dex summary model_info.arrow
//	dex plot model_info.arrow --out params.png
//	dex url gpt2 bert-base-uncased
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()
	klog.Flush()
	if err != nil {
		os.Exit(1)
	}
}
