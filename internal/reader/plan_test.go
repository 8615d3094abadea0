// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package reader

import "testing"

func TestPlanFramesEmptyFile(t *testing.T) {
	configs, blocksPerFrame := PlanFrames(0, 4, 1024, nil)
	if len(configs) != 0 {
		t.Fatalf("expected no configs for empty file, got %d", len(configs))
	}
	if blocksPerFrame != 0 {
		t.Fatalf("expected blocksPerFrame 0 for empty file, got %d", blocksPerFrame)
	}
}

func TestPlanFramesSingleFrame(t *testing.T) {
	configs, blocksPerFrame := PlanFrames(10, 4, 1024, nil)
	if len(configs) != 1 {
		t.Fatalf("expected 1 config, got %d", len(configs))
	}
	c := configs[0]
	if c.FirstBlockIdx != 0 || c.BlockSize != 4 || c.BlocksCount != 3 || blocksPerFrame != 3 {
		t.Fatalf("unexpected config: %+v, blocksPerFrame=%d", c, blocksPerFrame)
	}
}

func TestPlanFramesMultipleFrames(t *testing.T) {
	// blockSize=1, optimalFrameBytes=4 -> blocksPerFrame=4, 10 blocks -> 3 frames.
	// Every config requests the same capacity (4 blocks), including the
	// last one, which overshoots the real 2 remaining blocks; the
	// reader's short-read handling is what shrinks it at read time, not
	// planning.
	configs, blocksPerFrame := PlanFrames(10, 1, 4, nil)
	if len(configs) != 3 {
		t.Fatalf("expected 3 configs, got %d", len(configs))
	}
	if blocksPerFrame != 4 {
		t.Fatalf("expected blocksPerFrame 4, got %d", blocksPerFrame)
	}
	wantFirst := []uint64{0, 4, 8}
	for i, c := range configs {
		if c.FirstBlockIdx != wantFirst[i] || c.BlocksCount != 4 {
			t.Fatalf("config %d: got firstBlockIdx=%d blocksCount=%d, want firstBlockIdx=%d blocksCount=4",
				i, c.FirstBlockIdx, c.BlocksCount, wantFirst[i])
		}
	}
}

func TestPlanFramesBlockSizeZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for blockSize 0")
		}
	}()
	PlanFrames(10, 0, 1024, nil)
}

func TestPlanFramesOptimalLargerThanFile(t *testing.T) {
	configs, blocksPerFrame := PlanFrames(10, 1, 1<<20, nil)
	if len(configs) != 1 {
		t.Fatalf("expected 1 config when frame budget exceeds file size, got %d", len(configs))
	}
	if configs[0].BlocksCount != 10 || blocksPerFrame != 10 {
		t.Fatalf("expected BlocksCount 10 and blocksPerFrame 10, got %d/%d", configs[0].BlocksCount, blocksPerFrame)
	}
}
