// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package pipeline

import (
	"context"
	"log/slog"
	"os"

	"golang.org/x/time/rate"

	"github.com/nishisan-dev/nbackup-sigtool/internal/blockpool"
	"github.com/nishisan-dev/nbackup-sigtool/internal/crc8"
	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/queue"
	"github.com/nishisan-dev/nbackup-sigtool/internal/reader"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
	"github.com/nishisan-dev/nbackup-sigtool/internal/writer"
)

// backupDescriptor records the output file's pre-run state so a failed
// run can be rolled back byte-exactly.
type backupDescriptor struct {
	existed bool
	length  int64
}

// Controller owns one pipeline run's thread budget, queues, pools and
// stage lifecycles.
type Controller struct {
	opts   Options
	logger *slog.Logger
}

// NewController builds a Controller for opts. logger may be nil, in
// which case slog.Default() is used.
func NewController(opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{opts: opts, logger: logger}
}

// Run executes one full pipeline: plan, read, hash, write, and on any
// stage failure restores the output file to its pre-run state before
// returning the wrapped error.
func (c *Controller) Run(ctx context.Context) error {
	d, err := deriveFrom(c.opts)
	if err != nil {
		return err
	}

	info, err := os.Stat(c.opts.InputFile)
	if err != nil {
		return support.WrapIOError(support.OriginInput, err)
	}

	backup, err := statOutput(c.opts.OutputFile)
	if err != nil {
		return support.WrapIOError(support.OriginOutput, err)
	}
	writingPosShift := backup.length

	c.logger.Info("starting pipeline run",
		"input", c.opts.InputFile, "output", c.opts.OutputFile,
		"blockSize", c.opts.BlockSize, "T", d.T,
		"readerTasks", d.readerTasks, "hasherTasks", d.hasherTasks,
		"maxQueueElems", d.maxQueueElems)

	inputPool := &blockpool.Pool{}
	outputPool := &blockpool.Pool{}

	configs, blocksPerFrame := reader.PlanFrames(info.Size(), int(c.opts.BlockSize), optimalFrameBytes, inputPool)

	inputQueue := queue.New[*frame.Frame](d.maxQueueElems)
	outputQueue := queue.New[*frame.Frame](d.maxQueueElems)
	var readingFinished, hashingFinished support.Flag

	var limiter *rate.Limiter
	if c.opts.MaxReadBytesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.opts.MaxReadBytesPerSec), int(c.opts.MaxReadBytesPerSec))
	}

	// Start order avoids the classic producer/consumer deadlock: if the
	// writer were submitted after every hasher slot was taken, the
	// queues would fill, pushers would block, and the writer would
	// never get a chance to drain them. Reader, then writer, then
	// hasher guarantees the writer is already running by the time the
	// output queue has anything to drain.
	readerGroup := reader.Start(ctx, c.opts.InputFile, configs, inputQueue, d.readerTasks, limiter)
	writerGroup := writer.Start(c.opts.OutputFile, writingPosShift, outputQueue, &hashingFinished)
	hasherGroup := crc8.Run(inputQueue, outputQueue, &readingFinished, d.hasherTasks, blocksPerFrame, outputPool)

	// Every stage is joined in order regardless of earlier failures, and
	// the finished flags are always set: the hasher and writer goroutines
	// only exit once they observe their upstream flag, so skipping a
	// join after an early failure would leak them.
	readerErr := readerGroup.Wait()
	readingFinished.Set()

	hasherErr := hasherGroup.Wait()
	hashingFinished.Set()

	writerErr := writerGroup.Wait()

	if err := firstError(readerErr, hasherErr, writerErr); err != nil {
		c.rollback(backup)
		return err
	}

	c.logger.Info("pipeline run completed", "blocksWritten", support.CeilDiv(uint64(info.Size()), c.opts.BlockSize))
	return nil
}

// firstError returns the first non-nil error among errs, or nil if all
// are nil.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// statOutput returns the output file's pre-run backup descriptor: its
// existing length, or "did not exist".
func statOutput(path string) (backupDescriptor, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return backupDescriptor{existed: false}, nil
	}
	if err != nil {
		return backupDescriptor{}, err
	}
	return backupDescriptor{existed: true, length: info.Size()}, nil
}

// rollback restores the output file to its pre-run state: truncated to
// its original length if it existed, removed if it did not. Filesystem
// errors here are logged and swallowed — the primary pipeline error
// must not be masked by a cleanup failure.
func (c *Controller) rollback(backup backupDescriptor) {
	path := c.opts.OutputFile
	if !backup.existed {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			c.logger.Warn("rollback: failed to remove output file", "path", path, "error", err)
		}
		return
	}
	if err := os.Truncate(path, backup.length); err != nil {
		c.logger.Warn("rollback: failed to truncate output file", "path", path, "error", err, "length", backup.length)
	}
}
