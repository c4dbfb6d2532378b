// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package notebooks displays dex results inside Jupyter notebooks.
//
// It supports GoNB [1], where the dex visualizer is embedded as an iframe and plots are rendered
// with Plotly. Elsewhere (including bash_kernel [2]) the visualizer URL is printed instead.
//
// [1] GoNB: https://github.com/janpfeifer/gonb
// [2] bash_kernel: https://github.com/takluyver/bash_kernel
package notebooks

import (
	"os"

	"github.com/janpfeifer/gonb/gonbui"
)

// IsNotebook returns whether running inside a Jupyter notebook.
func IsNotebook() bool {
	return IsBashKernel() || IsGoNB()
}

const bashKernelEnv = "NOTEBOOK_BASH_KERNEL_CAPABILITIES"

// IsBashKernel returns whether running in a Jupyter notebook with a bash_kernel.
func IsBashKernel() bool {
	_, found := os.LookupEnv(bashKernelEnv)
	return found
}

// IsGoNB returns whether running in a Jupyter notebook with a GoNB kernel, where HTML can be displayed.
func IsGoNB() bool {
	return gonbui.IsNotebook
}
