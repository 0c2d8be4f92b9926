// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package evmproof

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/tdfol/groth16-backend/internal/backenderr"
)

// Decode0x strips an optional 0x/0X prefix and decodes the remaining 64 hex
// characters into 32 bytes, big-endian.
func Decode0x(s string) ([32]byte, error) {
	var out [32]byte
	trimmed := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(trimmed) != 64 {
		return out, backenderr.New(backenderr.InvalidHex, "hex field must be 64 characters (32 bytes), got "+strconv.Itoa(len(trimmed)))
	}
	b, err := hex.DecodeString(trimmed)
	if err != nil {
		return out, backenderr.Wrap(backenderr.InvalidHex, "invalid hex characters", err)
	}
	copy(out[:], b)
	return out, nil
}

// Encode0x formats 32 bytes as a canonical 0x-prefixed, lower-case hex
// string.
func Encode0x(b [32]byte) string {
	return "0x" + hex.EncodeToString(b[:])
}
