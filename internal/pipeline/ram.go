// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pipeline

import "github.com/shirou/gopsutil/v3/mem"

// defaultRamFraction and defaultRamFloor bound the RAM budget this tool
// picks for itself when the caller doesn't supply one: a quarter of
// whatever is currently available, never less than 64 MiB.
const (
	defaultRamFraction = 0.25
	defaultRamFloor    = 64 << 20
)

// DefaultMaxRamSize derives a conservative RAM budget from the host's
// currently available memory, for callers that omit an explicit one. If
// system memory cannot be queried, it falls back to defaultRamFloor.
func DefaultMaxRamSize() uint64 {
	v, err := mem.VirtualMemory()
	if err != nil {
		return defaultRamFloor
	}
	budget := uint64(float64(v.Available) * defaultRamFraction)
	if budget < defaultRamFloor {
		return defaultRamFloor
	}
	return budget
}
