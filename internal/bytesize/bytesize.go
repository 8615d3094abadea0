// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package bytesize parses the CLI's human-readable memory-size literals
// ("1MB", "3GB", "512KB") into a byte count.
package bytesize

import (
	"fmt"
	"strconv"
	"strings"
)

type unit struct {
	suffix     string
	multiplier uint64
}

// Ordered longest-suffix-first so "mb" isn't mistaken for trailing "b".
var units = []unit{
	{"gb", 1024 * 1024 * 1024},
	{"mb", 1024 * 1024},
	{"kb", 1024},
}

// Parse converts a literal of the form digits[KB|MB|GB] (case-insensitive,
// 1024-based, unit trailing and optional) into bytes. A bare digit string
// is interpreted as a byte count. An empty string, a unit with no digits,
// or an unrecognized unit are all errors.
func Parse(s string) (uint64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return 0, fmt.Errorf("bytesize: empty size string")
	}

	lower := strings.ToLower(trimmed)
	for _, u := range units {
		if !strings.HasSuffix(lower, u.suffix) {
			continue
		}
		numStr := strings.TrimSpace(trimmed[:len(trimmed)-len(u.suffix)])
		if numStr == "" {
			return 0, fmt.Errorf("bytesize: %q has a unit but no digits", s)
		}
		n, err := strconv.ParseUint(numStr, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("bytesize: invalid number %q: %w", numStr, err)
		}
		return n * u.multiplier, nil
	}

	// No recognized unit suffix: accept a bare byte count, reject anything
	// that isn't purely numeric (e.g. an unknown unit like "5XB").
	n, err := strconv.ParseUint(lower, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bytesize: %q has no recognized unit (KB, MB, GB)", s)
	}
	return n, nil
}
