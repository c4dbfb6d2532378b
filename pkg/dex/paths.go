// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

import (
	"os"
	"path/filepath"
	"strings"
)

// LibraryMarkers are path segments under which third-party libraries are installed: the part of a source
// path after the last marker is already portable.
var LibraryMarkers = []string{
	"site-packages",
	filepath.Join("pkg", "mod") + string(filepath.Separator), // Go module cache.
}

// CleanPath returns a portable version of the source file path:
//
//   - If it contains any of LibraryMarkers, the part after the last marker, without leading separators.
//   - Else if it is under cwd, the path relative to cwd.
//   - Else path unchanged.
//
// CleanPath is idempotent.
func CleanPath(path, cwd string) string {
	markerEnd := -1
	for _, marker := range LibraryMarkers {
		if idx := strings.LastIndex(path, marker); idx >= 0 {
			markerEnd = max(markerEnd, idx+len(marker))
		}
	}
	if markerEnd >= 0 {
		return strings.TrimLeft(path[markerEnd:], `/\`)
	}
	if cwd != "" && filepath.IsAbs(path) && strings.HasPrefix(path, cwd) {
		rel, err := filepath.Rel(cwd, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return rel
		}
	}
	return path
}

// workingDir returns the current directory, or "" if it is not available.
func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return cwd
}
