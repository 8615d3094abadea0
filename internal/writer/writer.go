// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package writer implements the single parallel file writer task (C7):
// it drains the output queue and writes each signature frame at its
// absolute byte position, preserving any bytes outside the written
// ranges.
package writer

import (
	"os"
	"time"

	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/queue"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
	"github.com/nishisan-dev/nbackup-sigtool/internal/taskgroup"
)

// popTimeout mirrors the hasher's poll interval: long enough to avoid
// busy-waiting, short enough to notice the finished flag promptly.
const popTimeout = 100 * time.Millisecond

// Start opens path (creating it if absent, otherwise opening it
// read-write so bytes outside the written ranges survive) and submits
// exactly one writer task. The task drains src, writing each frame's
// bytes at writingPosShift+firstBlockIdx (the output side uses
// BlockSize 1, so this is an exact byte offset), until finished is set
// and src is observed empty.
func Start(path string, writingPosShift int64, src *queue.Queue[*frame.Frame], finished *support.Flag) *taskgroup.Group {
	g := taskgroup.New(1)
	g.Go(func() error {
		flags := os.O_RDWR
		if _, err := os.Stat(path); err != nil {
			flags |= os.O_CREATE
		}
		f, err := os.OpenFile(path, flags, 0o644)
		if err != nil {
			return support.WrapIOError(support.OriginOutput, err)
		}
		defer f.Close()

		for {
			fr, ok := src.PopWithTimeout(popTimeout)
			if !ok {
				if finished.IsSet() {
					if fr, ok = src.TryPop(); !ok {
						return nil
					}
				} else {
					continue
				}
			}
			pos := writingPosShift + int64(fr.FirstBlockIdx())
			_, err := f.WriteAt(fr.Data(), pos)
			fr.Release()
			if err != nil {
				return support.WrapIOError(support.OriginOutput, err)
			}
		}
	})
	return g
}
