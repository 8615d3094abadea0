// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package crc8

import (
	"time"

	"github.com/nishisan-dev/nbackup-sigtool/internal/blockpool"
	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/queue"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
	"github.com/nishisan-dev/nbackup-sigtool/internal/taskgroup"
)

// popTimeout is the interval each hasher task blocks on the input queue
// before checking whether the producer side has finished.
const popTimeout = 100 * time.Millisecond

// HashFrame computes the per-block CRC-8 of in and returns a new frame at
// the same FirstBlockIdx with BlockSize 1 and BlocksCount equal to in's.
// Each block is hashed over its real bytes only (in.RealBlock), so the
// file's final, possibly-short block is never hashed together with its
// trailing zero padding. outCapacityBlocks is the output frame's
// allocated capacity, which must be the same value across every call
// sharing pool — it is the run's fixed blocks-per-frame figure, not
// in.BlocksCount(), because the last frame of a run reports fewer
// blocks than it was allocated for and pool.Get rejects a varying chunk
// size. An empty input frame (BlocksCount 0) produces an empty output
// frame with its identity fields carried through unchanged.
func HashFrame(in *frame.Frame, outCapacityBlocks int, pool *blockpool.Pool) (*frame.Frame, error) {
	out, err := frame.New(frame.Config{
		FirstBlockIdx: in.FirstBlockIdx(),
		BlockSize:     1,
		BlocksCount:   outCapacityBlocks,
		Pool:          pool,
	})
	if err != nil {
		return nil, err
	}
	if err := out.SetBlocksCount(in.BlocksCount()); err != nil {
		out.Release()
		return nil, err
	}
	for i := 0; i < in.BlocksCount(); i++ {
		out.Block(i)[0] = Checksum(in.RealBlock(i))
	}
	return out, nil
}

// Run starts tasksCount hasher goroutines draining src into dst. Each
// task pops a frame, hashes it with HashFrame (allocating every output
// frame at outCapacityBlocks capacity, the fixed chunk size pool is
// bound to) and pushes the result, releasing the original input frame
// back to its pool once hashed. Once finished is set and src observed
// empty, the task exits. The returned Group's Wait joins all tasksCount
// goroutines and yields the first error (an allocation failure from
// dst's pool, typically).
func Run(src, dst *queue.Queue[*frame.Frame], finished *support.Flag, tasksCount int, outCapacityBlocks int, pool *blockpool.Pool) *taskgroup.Group {
	g := taskgroup.New(tasksCount)
	for i := 0; i < tasksCount; i++ {
		g.Go(func() error {
			for {
				in, ok := src.PopWithTimeout(popTimeout)
				if !ok {
					if finished.IsSet() {
						if in, ok = src.TryPop(); !ok {
							return nil
						}
					} else {
						continue
					}
				}
				out, err := HashFrame(in, outCapacityBlocks, pool)
				in.Release()
				if err != nil {
					return err
				}
				dst.PushBlocking(out)
			}
		})
	}
	return g
}
