// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempProfile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp run profile: %v", err)
	}
	return path
}

func TestLoadRunProfileFullySpecified(t *testing.T) {
	path := writeTempProfile(t, `
block_size: "4KB"
ram_budget: "256MB"
storage_type: "ssd"
`)
	p, err := LoadRunProfile(path)
	if err != nil {
		t.Fatalf("LoadRunProfile: %v", err)
	}
	if p.BlockSizeBytes != 4*1024 {
		t.Errorf("expected BlockSizeBytes 4096, got %d", p.BlockSizeBytes)
	}
	if p.RamBudgetBytes != 256*1024*1024 {
		t.Errorf("expected RamBudgetBytes 256MB, got %d", p.RamBudgetBytes)
	}
	if !p.IsSSD {
		t.Error("expected IsSSD true for storage_type ssd")
	}
}

func TestLoadRunProfileDefaultsToHDD(t *testing.T) {
	path := writeTempProfile(t, `
block_size: "1MB"
`)
	p, err := LoadRunProfile(path)
	if err != nil {
		t.Fatalf("LoadRunProfile: %v", err)
	}
	if p.IsSSD {
		t.Error("expected IsSSD false when storage_type is omitted")
	}
	if p.RamBudgetBytes != 0 {
		t.Errorf("expected RamBudgetBytes 0 when ram_budget is omitted, got %d", p.RamBudgetBytes)
	}
}

func TestLoadRunProfileInvalidStorageType(t *testing.T) {
	path := writeTempProfile(t, `
storage_type: "tape"
`)
	if _, err := LoadRunProfile(path); err == nil {
		t.Fatal("expected error for invalid storage_type")
	}
}

func TestLoadRunProfileZeroBlockSize(t *testing.T) {
	path := writeTempProfile(t, `
block_size: "0"
`)
	if _, err := LoadRunProfile(path); err == nil {
		t.Fatal("expected error for a zero block_size")
	}
}

func TestLoadRunProfileInvalidBlockSize(t *testing.T) {
	path := writeTempProfile(t, `
block_size: "not-a-size"
`)
	if _, err := LoadRunProfile(path); err == nil {
		t.Fatal("expected error for an unparseable block_size")
	}
}

func TestLoadRunProfileFileNotFound(t *testing.T) {
	if _, err := LoadRunProfile("/nonexistent/path/profile.yaml"); err == nil {
		t.Fatal("expected error for a missing run profile file")
	}
}

func TestLoadRunProfileInvalidYAML(t *testing.T) {
	path := writeTempProfile(t, "{{not yaml}}")
	if _, err := LoadRunProfile(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}
