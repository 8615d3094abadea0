// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package blockpool

// Buffer is the RAII-style owner of one pool chunk (or a heap fallback
// when no pool is supplied). It is always zero-initialised and must be
// released exactly once.
type Buffer struct {
	pool     *Pool
	data     []byte
	released bool
}

// Acquire obtains n zero-filled bytes, from pool if non-nil or from the
// heap otherwise.
func Acquire(pool *Pool, n int) (*Buffer, error) {
	if pool == nil {
		return &Buffer{data: make([]byte, n)}, nil
	}
	chunk, err := pool.Get(n)
	if err != nil {
		return nil, err
	}
	for i := range chunk {
		chunk[i] = 0
	}
	return &Buffer{pool: pool, data: chunk}, nil
}

// Data returns the buffer's backing bytes.
func (b *Buffer) Data() []byte {
	return b.data
}

// Release returns the buffer to its source pool, or is a no-op for a
// heap-backed buffer. Safe to call more than once.
func (b *Buffer) Release() {
	if b.released {
		return
	}
	b.released = true
	if b.pool != nil {
		b.pool.Put(b.data)
	}
	b.data = nil
}

// Clone allocates a fresh buffer from the same pool (or the heap, if
// this buffer has none) and copies this buffer's bytes into it.
func (b *Buffer) Clone() (*Buffer, error) {
	out, err := Acquire(b.pool, len(b.data))
	if err != nil {
		return nil, err
	}
	copy(out.data, b.data)
	return out, nil
}
