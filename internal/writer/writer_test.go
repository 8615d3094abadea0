// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nishisan-dev/nbackup-sigtool/internal/frame"
	"github.com/nishisan-dev/nbackup-sigtool/internal/queue"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
)

func newFrame(t *testing.T, firstBlockIdx uint64, data []byte) *frame.Frame {
	t.Helper()
	f, err := frame.New(frame.Config{FirstBlockIdx: firstBlockIdx, BlockSize: 1, BlocksCount: len(data)})
	if err != nil {
		t.Fatalf("frame.New: %v", err)
	}
	copy(f.Data(), data)
	return f
}

func TestStartWritesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sig")
	src := queue.New[*frame.Frame](0)
	var finished support.Flag

	src.PushBlocking(newFrame(t, 0, []byte{0x12, 0xA7}))
	src.PushBlocking(newFrame(t, 2, []byte{0x00, 0x7D}))
	finished.Set()

	g := Start(path, 0, src, &finished)
	if err := g.Wait(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := []byte{0x12, 0xA7, 0x00, 0x7D}
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStartAppendsPreservingExistingBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sig")
	preexisting := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	if err := os.WriteFile(path, preexisting, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	src := queue.New[*frame.Frame](0)
	var finished support.Flag
	src.PushBlocking(newFrame(t, 0, []byte{0x01, 0x02}))
	finished.Set()

	g := Start(path, int64(len(preexisting)), src, &finished)
	if err := g.Wait(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := append(append([]byte{}, preexisting...), 0x01, 0x02)
	if string(got) != string(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStartWaitsForFinishedFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.sig")
	src := queue.New[*frame.Frame](0)
	var finished support.Flag

	g := Start(path, 0, src, &finished)
	src.PushBlocking(newFrame(t, 0, []byte{0x42}))

	finished.Set()
	if err := g.Wait(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0] != 0x42 {
		t.Fatalf("got %v, want [0x42]", got)
	}
}
