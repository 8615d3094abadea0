// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package reader implements the parallel file reader (C6): it splits an
// input file into frame configs and runs N reader tasks against
// independent file handles to fill the input queue.
package reader

import (
	"github.com/nishisan-dev/nbackup-sigtool/internal/blockpool"
	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
)

// PlanFrames computes the frame configs covering a file of fileSize
// bytes read in blockSize-byte blocks, targeting optimalFrameBytes per
// frame, and returns alongside them the uniform blocks-per-frame
// capacity it used. A zero fileSize yields no configs (and a capacity of
// 0). blockSize must be >= 1 — a caller violating this has a
// programming error, not a data error.
//
// The returned capacity is needed downstream by the hasher: the
// output-side pool must bind to one fixed chunk size for the whole run,
// and that size is blocksPerFrame, not any individual frame's (possibly
// shrunk) reported BlocksCount.
func PlanFrames(fileSize int64, blockSize int, optimalFrameBytes int, pool *blockpool.Pool) ([]frame.Config, int) {
	if blockSize <= 0 {
		panic("reader: PlanFrames called with blockSize <= 0")
	}
	if fileSize <= 0 {
		return nil, 0
	}

	blocksInFile := support.CeilDiv(uint64(fileSize), uint64(blockSize))
	blocksPerFrame := support.CeilDiv(uint64(optimalFrameBytes), uint64(blockSize))
	if blocksPerFrame > blocksInFile {
		blocksPerFrame = blocksInFile
	}
	framesInFile := support.CeilDiv(blocksInFile, blocksPerFrame)

	// Every config requests exactly blocksPerFrame blocks of capacity,
	// even the last one: it may run past the real end of the file, but
	// that only means the reader observes a short final read on it and
	// shrinks the reported block count via SetBlocksCount. Varying the
	// requested capacity per frame instead would ask the shared pool to
	// bind more than one chunk size, which it rejects.
	configs := make([]frame.Config, 0, framesInFile)
	for i := uint64(0); i < framesInFile; i++ {
		configs = append(configs, frame.Config{
			FirstBlockIdx: i * blocksPerFrame,
			BlockSize:     blockSize,
			BlocksCount:   int(blocksPerFrame),
			Pool:          pool,
		})
	}
	return configs, int(blocksPerFrame)
}
