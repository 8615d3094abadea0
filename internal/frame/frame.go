// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package frame implements the data frame C3: a contiguous run of
// equally sized blocks located at a known block offset in a file, backed
// by a pooled, zero-filled buffer.
package frame

import (
	"errors"
	"fmt"

	"github.com/nishisan-dev/nbackup-sigtool/internal/blockpool"
)

// ErrOutOfRange is returned by SetBlocksCount when the requested count
// would exceed the frame's allocated capacity.
var ErrOutOfRange = errors.New("frame: blocks count exceeds capacity")

// Config is the recipe used to construct a Frame. Two configs are equal
// iff FirstBlockIdx, BlockSize and BlocksCount match — Pool is not part
// of the equality (the same plan can, in principle, be replayed against
// a different pool instance).
type Config struct {
	FirstBlockIdx uint64
	BlockSize     int
	BlocksCount   int
	Pool          *blockpool.Pool
}

// Equal reports whether c and other describe the same frame shape.
func (c Config) Equal(other Config) bool {
	return c.FirstBlockIdx == other.FirstBlockIdx &&
		c.BlockSize == other.BlockSize &&
		c.BlocksCount == other.BlocksCount
}

// Frame is an ordered, contiguous group of BlocksCount adjacent blocks
// starting at FirstBlockIdx, backed by a blockpool.Buffer of exactly
// BlockSize*BlocksCount bytes at construction time.
type Frame struct {
	firstBlockIdx uint64
	blockSize     int
	blocksCount   int
	realLen       int
	buf           *blockpool.Buffer
}

// New allocates a Frame per cfg. The buffer is sized to
// BlockSize*BlocksCount and zero-filled.
func New(cfg Config) (*Frame, error) {
	buf, err := blockpool.Acquire(cfg.Pool, cfg.BlockSize*cfg.BlocksCount)
	if err != nil {
		return nil, err
	}
	return &Frame{
		firstBlockIdx: cfg.FirstBlockIdx,
		blockSize:     cfg.BlockSize,
		blocksCount:   cfg.BlocksCount,
		realLen:       cfg.BlockSize * cfg.BlocksCount,
		buf:           buf,
	}, nil
}

// FirstBlockIdx returns the absolute block index of the frame's first block.
func (f *Frame) FirstBlockIdx() uint64 { return f.firstBlockIdx }

// BlockSize returns the size, in bytes, of one block in this frame.
func (f *Frame) BlockSize() int { return f.blockSize }

// BlocksCount returns the number of blocks this frame currently reports.
func (f *Frame) BlocksCount() int { return f.blocksCount }

// Len returns the reported byte length: BlocksCount*BlockSize.
func (f *Frame) Len() int { return f.blocksCount * f.blockSize }

// Data returns the frame's full reported byte range.
func (f *Frame) Data() []byte {
	return f.buf.Data()[:f.Len()]
}

// Block returns the sub-range of bytes for block i (0-based within this
// frame), a slice of exactly BlockSize bytes. Any bytes past RealLen are
// zero-filled padding rather than data read from the input file.
func (f *Frame) Block(i int) []byte {
	if i < 0 || i >= f.blocksCount {
		panic(fmt.Sprintf("frame: block index %d out of range [0,%d)", i, f.blocksCount))
	}
	start := i * f.blockSize
	return f.buf.Data()[start : start+f.blockSize]
}

// RealBlock returns the real (non-padding) byte range of block i: the
// full BlockSize for every block but a short final block, which is
// truncated to RealLen. Used by the hasher so the last, partial block
// of the file is not hashed together with its trailing zero padding.
func (f *Frame) RealBlock(i int) []byte {
	b := f.Block(i)
	start := i * f.blockSize
	end := start + f.blockSize
	if end > f.realLen {
		end = f.realLen
	}
	if end < start {
		end = start
	}
	return b[:end-start]
}

// RealLen returns the number of real (non-padding) bytes the frame
// holds, at most BlocksCount*BlockSize.
func (f *Frame) RealLen() int { return f.realLen }

// SetBlocksCount reduces (or restores) the reported number of blocks
// without reallocating. It fails with ErrOutOfRange if k*BlockSize would
// exceed the buffer's allocated capacity — used by the reader when the
// final frame of a file is short. RealLen is reset to k*BlockSize (no
// padding); call SetRealLen afterward to report a short final block.
func (f *Frame) SetBlocksCount(k int) error {
	if k < 0 || k*f.blockSize > len(f.buf.Data()) {
		return ErrOutOfRange
	}
	f.blocksCount = k
	f.realLen = k * f.blockSize
	return nil
}

// SetRealLen reports that only the first n bytes of the frame were
// actually read from the input file; the rest of the last block is
// zero padding. Only the final block may be partial: n must be greater
// than (BlocksCount-1)*BlockSize (or BlocksCount must be 0) and at most
// BlocksCount*BlockSize.
func (f *Frame) SetRealLen(n int) error {
	full := f.blocksCount * f.blockSize
	allBlocksButLast := full - f.blockSize
	if n < 0 || n > full || (f.blocksCount > 0 && n <= allBlocksButLast) {
		return ErrOutOfRange
	}
	f.realLen = n
	return nil
}

// Release returns the frame's backing buffer to its source pool.
func (f *Frame) Release() {
	f.buf.Release()
}

// Clone performs a full byte copy of the frame under the same pool.
func (f *Frame) Clone() (*Frame, error) {
	buf, err := f.buf.Clone()
	if err != nil {
		return nil, err
	}
	return &Frame{
		firstBlockIdx: f.firstBlockIdx,
		blockSize:     f.blockSize,
		blocksCount:   f.blocksCount,
		realLen:       f.realLen,
		buf:           buf,
	}, nil
}

// Less orders frames by FirstBlockIdx. Used only for deterministic test
// output ordering — the pipeline itself never depends on frame order.
func (f *Frame) Less(other *Frame) bool {
	return f.firstBlockIdx < other.firstBlockIdx
}
