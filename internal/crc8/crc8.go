// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package crc8 implements the block signature algorithm (C5): the
// per-block CRC-8 checksum over each block of a frame, one output byte
// per input block.
package crc8

// Table is the precomputed CRC-8 lookup table: polynomial 0x31,
// MSB-first, no input/output reflection, initial value 0x00, no final
// XOR. This is the variant the original crc8() function computes, not
// the reflected CRC-8/Dallas-Maxim a polynomial of 0x31 usually implies
// in library code — see DESIGN.md's internal/crc8 entry.
var Table [256]byte

const poly = 0x31

func init() {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		Table[i] = crc
	}
}

// Checksum computes the checksum of data, byte by byte against Table,
// starting from an initial value of 0x00.
func Checksum(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = Table[crc^b]
	}
	return crc
}
