// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package pipeline wires the reader, hasher and writer stages (C8): it
// sizes the thread budget and queues from Options, runs the three
// stages in the order that avoids deadlock, and restores the output
// file to its pre-run state on any failure.
package pipeline

import (
	"runtime"

	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
)

// optimalFrameBytes is the target size of one reader frame, independent
// of block size — small blocks get many blocks per frame, large blocks
// get few.
const optimalFrameBytes = 1 << 20 // 1 MiB

// Options is the external configuration surface for one run.
type Options struct {
	InputFile  string
	OutputFile string
	BlockSize  uint64
	IsSSD      bool
	MaxRamSize uint64

	// MaxReadBytesPerSec optionally throttles the reader side. Zero
	// means unlimited.
	MaxReadBytesPerSec int64

	// HardwareThreads overrides the detected thread budget; zero means
	// "use runtime.NumCPU()". Exposed mainly so tests can pin T without
	// depending on the host's core count.
	HardwareThreads int
}

// derived holds the values computed once from Options at the start of a
// run (spec.md §4.8).
type derived struct {
	T             int
	readerTasks   int
	hasherTasks   int
	maxQueueElems int
}

func deriveFrom(opts Options) (derived, error) {
	if opts.BlockSize == 0 {
		panic("pipeline: Options.BlockSize must be >= 1")
	}

	hw := opts.HardwareThreads
	if hw <= 0 {
		hw = runtime.NumCPU()
	}
	T := hw - 1
	if T < 3 {
		T = 3
	}

	readerTasks := 1
	if opts.IsSSD {
		readerTasks = int(support.CeilDiv(uint64(T), 4))
	}
	hasherTasks := int(support.CeilDiv(uint64(3*T), 4))

	if readerTasks+1 >= T {
		// Guarantees hasher tasks can always be dispatched. With T
		// floored at 3 above, this holds for every HardwareThreads value
		// and storage type; the check asserts that invariant.
		panic("pipeline: readerTasks + writerTasks must be < T")
	}

	maxQueueElems := int(opts.MaxRamSize / (opts.BlockSize + 1))
	if maxQueueElems == 0 {
		return derived{}, support.NewConfigError("Max RAM size is too small to hold even one queue slot; reduce block size or increase RAM")
	}

	return derived{
		T:             T,
		readerTasks:   readerTasks,
		hasherTasks:   hasherTasks,
		maxQueueElems: maxQueueElems,
	}, nil
}
