// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Command sigtool computes a per-block CRC-8 signature file for an
// input file, appending one byte per block to the output file.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/nishisan-dev/nbackup-sigtool/internal/bytesize"
	"github.com/nishisan-dev/nbackup-sigtool/internal/config"
	"github.com/nishisan-dev/nbackup-sigtool/internal/logging"
	"github.com/nishisan-dev/nbackup-sigtool/internal/pipeline"
	"github.com/nishisan-dev/nbackup-sigtool/internal/support"
)

// Exit codes per the CLI surface's contract.
const (
	exitOK         = 0
	exitBadOption  = 1
	exitAllocOrRAM = 2
	exitGenericErr = 3
	exitUnknownErr = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sigtool", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	inputFile := fs.String("i", "", "input file path (required)")
	outputFile := fs.String("o", "", "output signature file path (required)")
	blockSizeStr := fs.String("s", "1MB", "block size, e.g. 4KB, 1MB, 2GB")
	storageType := fs.String("t", "HDD", "storage type hint: HDD or SSD")
	maxRamStr := fs.String("m", "3GB", "maximum RAM budget, e.g. 512MB, 3GB")
	profilePath := fs.String("c", "", "optional YAML run profile overridden by the flags above")
	logLevel := fs.String("log-level", "info", "log level: debug, info, warn, error")
	logFormat := fs.String("log-format", "json", "log format: json or text")

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return exitOK
		}
		return exitBadOption
	}

	opts, err := buildOptions(*inputFile, *outputFile, *blockSizeStr, *storageType, *maxRamStr, *profilePath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitBadOption
	}

	logger, logCloser := logging.NewLogger(*logLevel, *logFormat, "")
	defer logCloser.Close()

	c := pipeline.NewController(opts, logger)
	if err := c.Run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeFor(err)
	}

	return exitOK
}

// buildOptions merges an optional YAML run profile with the CLI flags,
// the flags winning whenever they were explicitly set (distinguished
// here by diffing against each flag's own default).
func buildOptions(inputFile, outputFile, blockSizeStr, storageType, maxRamStr, profilePath string) (pipeline.Options, error) {
	if inputFile == "" {
		return pipeline.Options{}, support.NewConfigError("-i (input file) is required")
	}
	if outputFile == "" {
		return pipeline.Options{}, support.NewConfigError("-o (output file) is required")
	}

	isSSD, err := parseStorageType(storageType)
	if err != nil {
		return pipeline.Options{}, err
	}
	blockSize, err := bytesize.Parse(blockSizeStr)
	if err != nil {
		return pipeline.Options{}, support.NewConfigError(fmt.Sprintf("-s: %v", err))
	}
	if blockSize == 0 {
		return pipeline.Options{}, support.NewConfigError("-s (block size) must be greater than zero")
	}
	maxRam, err := bytesize.Parse(maxRamStr)
	if err != nil {
		return pipeline.Options{}, support.NewConfigError(fmt.Sprintf("-m: %v", err))
	}

	maxRamFromDefault := maxRamStr == "3GB"

	if profilePath != "" {
		profile, err := config.LoadRunProfile(profilePath)
		if err != nil {
			return pipeline.Options{}, support.NewConfigError(fmt.Sprintf("-c: %v", err))
		}
		if blockSizeStr == "1MB" && profile.BlockSizeBytes != 0 {
			blockSize = profile.BlockSizeBytes
		}
		if maxRamFromDefault && profile.RamBudgetBytes != 0 {
			maxRam = profile.RamBudgetBytes
			maxRamFromDefault = false
		}
		if storageType == "HDD" && profile.StorageType != "" {
			isSSD = profile.IsSSD
		}
	}

	// "-m" left at its default (and not overridden by a profile), or
	// explicitly zeroed, both mean "size it from the machine" rather
	// than the hardcoded 3GB fallback.
	if maxRamFromDefault || maxRam == 0 {
		maxRam = pipeline.DefaultMaxRamSize()
	}

	return pipeline.Options{
		InputFile:  inputFile,
		OutputFile: outputFile,
		BlockSize:  blockSize,
		IsSSD:      isSSD,
		MaxRamSize: maxRam,
	}, nil
}

func parseStorageType(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "HDD":
		return false, nil
	case "SSD":
		return true, nil
	default:
		return false, support.NewConfigError(fmt.Sprintf("-t must be HDD or SSD, got %q", s))
	}
}

// exitCodeFor maps a pipeline error to the exit code contract in §6:
// ConfigError and AllocError both surface as the RAM/allocation class
// (2), since a RAM-too-small ConfigError and a pool exhaustion
// AllocError are both resource-budget failures from the caller's point
// of view; any other non-nil error is generic (3). Only a nil err
// reaches the unknown-error code (4).
func exitCodeFor(err error) int {
	switch {
	case support.IsConfigError(err), support.IsAllocError(err):
		return exitAllocOrRAM
	case err != nil:
		return exitGenericErr
	default:
		return exitUnknownErr
	}
}
