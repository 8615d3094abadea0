// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reader

import (
	"context"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/time/rate"

	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/queue"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
	"github.com/nishisan-dev/nbackup-sigtool/internal/taskgroup"
)

// Start submits tasksCount reader tasks against path, each opening its
// own independent *os.File handle. A shared atomic cursor hands out the
// next config to whichever task asks first. Completed frames are pushed
// onto dst; a short final read is reported via frame.SetBlocksCount
// rather than treated as an error. limiter may be nil (no throttling).
//
// Reader tasks are the only stage submitted that can observe a
// benign end-of-file mid-read; any other I/O error is wrapped with
// support.WrapIOError(support.OriginInput, ...) and surfaces through the
// returned Group's Wait.
func Start(ctx context.Context, path string, configs []frame.Config, dst *queue.Queue[*frame.Frame], tasksCount int, limiter *rate.Limiter) *taskgroup.Group {
	var cursor atomic.Int64
	g := taskgroup.New(tasksCount)

	for i := 0; i < tasksCount; i++ {
		g.Go(func() error {
			f, err := os.Open(path)
			if err != nil {
				return support.WrapIOError(support.OriginInput, err)
			}
			defer f.Close()

			for {
				idx := cursor.Add(1) - 1
				if idx >= int64(len(configs)) {
					return nil
				}
				cfg := configs[idx]

				fr, err := frame.New(cfg)
				if err != nil {
					return err
				}

				if limiter != nil {
					for remaining := fr.Len(); remaining > 0; {
						chunk := remaining
						if burst := limiter.Burst(); chunk > burst {
							chunk = burst
						}
						if err := limiter.WaitN(ctx, chunk); err != nil {
							fr.Release()
							return support.WrapIOError(support.OriginInput, err)
						}
						remaining -= chunk
					}
				}

				offset := int64(cfg.FirstBlockIdx) * int64(cfg.BlockSize)
				n, err := io.ReadFull(io.NewSectionReader(f, offset, int64(fr.Len())), fr.Data())
				if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
					fr.Release()
					return support.WrapIOError(support.OriginInput, err)
				}

				if n < fr.Len() {
					blocksRead := int(support.CeilDiv(uint64(n), uint64(cfg.BlockSize)))
					if err := fr.SetBlocksCount(blocksRead); err != nil {
						fr.Release()
						return err
					}
					if err := fr.SetRealLen(n); err != nil {
						fr.Release()
						return err
					}
				}

				dst.PushBlocking(fr)
			}
		})
	}
	return g
}
