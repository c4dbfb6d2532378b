// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dex

// DefaultMaxValueLen is the default maximum length of strings in a ConfigSnapshot.
const DefaultMaxValueLen = 50

// TruncateValue returns value with every string, including those nested in lists and maps, cut to at most
// maxLen characters (runes). The structure of lists and maps is preserved and other values are
// returned unchanged. The input is not modified.
// A negative maxLen is taken as 0, truncating every string to "".
func TruncateValue(value any, maxLen int) any {
	switch v := value.(type) {
	case string:
		return truncateString(v, maxLen)
	case []any:
		out := make([]any, len(v))
		for ii, e := range v {
			out[ii] = TruncateValue(e, maxLen)
		}
		return out
	case []string:
		out := make([]string, len(v))
		for ii, e := range v {
			out[ii] = truncateString(e, maxLen)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = TruncateValue(e, maxLen)
		}
		return out
	default:
		return value
	}
}

func truncateString(s string, maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	if len(s) <= maxLen {
		return s
	}
	count := 0
	for idx := range s {
		if count == maxLen {
			return s[:idx]
		}
		count++
	}
	return s
}

// NewConfigSnapshot truncates every value of cfg and tags it with the model name.
func NewConfigSnapshot(modelName string, cfg map[string]any, maxLen int) ConfigSnapshot {
	snapshot := make(ConfigSnapshot, len(cfg)+1)
	for k, v := range cfg {
		snapshot[k] = TruncateValue(v, maxLen)
	}
	snapshot[ModelNameKey] = modelName
	return snapshot
}
