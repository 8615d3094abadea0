// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package config loads the tool's optional YAML run profile: a small,
// reusable set of defaults for block size, RAM budget and storage type
// that the CLI flags may override field by field.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nishisan-dev/nbackup-sigtool/internal/bytesize"
)

// RunProfile is the on-disk shape of a run profile file.
type RunProfile struct {
	BlockSize   string `yaml:"block_size"`
	RamBudget   string `yaml:"ram_budget"`
	StorageType string `yaml:"storage_type"` // "hdd" or "ssd"

	// BlockSizeBytes and RamBudgetBytes are the parsed forms of the
	// fields above, populated by LoadRunProfile. IsSSD is derived from
	// StorageType.
	BlockSizeBytes uint64 `yaml:"-"`
	RamBudgetBytes uint64 `yaml:"-"`
	IsSSD          bool   `yaml:"-"`
}

// LoadRunProfile reads and validates the YAML run profile at path.
func LoadRunProfile(path string) (*RunProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run profile: %w", err)
	}

	var p RunProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing run profile: %w", err)
	}
	if err := p.resolve(); err != nil {
		return nil, fmt.Errorf("validating run profile: %w", err)
	}
	return &p, nil
}

// resolve parses the human-readable size fields and validates storage_type.
func (p *RunProfile) resolve() error {
	if p.BlockSize != "" {
		n, err := bytesize.Parse(p.BlockSize)
		if err != nil {
			return fmt.Errorf("block_size: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("block_size must be greater than zero")
		}
		p.BlockSizeBytes = n
	}

	if p.RamBudget != "" {
		n, err := bytesize.Parse(p.RamBudget)
		if err != nil {
			return fmt.Errorf("ram_budget: %w", err)
		}
		p.RamBudgetBytes = n
	}

	switch p.StorageType {
	case "", "hdd":
		p.IsSSD = false
	case "ssd":
		p.IsSSD = true
	default:
		return fmt.Errorf("storage_type must be \"hdd\" or \"ssd\", got %q", p.StorageType)
	}

	return nil
}
