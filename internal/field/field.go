// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package field implements the atom hasher and canonical field encoding used
// throughout the backend: mapping UTF-8 atom strings to BN254 scalar field
// elements, and serializing field elements back to big-endian bytes.
package field

import (
	"crypto/sha256"
	"regexp"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// AtomPattern is the lexical grammar for a propositional atom.
var AtomPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// IsAtom reports whether s is a well-formed atom.
func IsAtom(s string) bool {
	return AtomPattern.MatchString(s)
}

// HashAtom computes SHA256(s), interprets the digest as a big-endian integer,
// and reduces it modulo the BN254 scalar field order. Deterministic and pure.
func HashAtom(s string) fr.Element {
	return ReduceModR(sha256.Sum256([]byte(s)))
}

// ReduceModR interprets a 32-byte big-endian digest as an integer and reduces
// it modulo the BN254 scalar field order.
func ReduceModR(digest [32]byte) fr.Element {
	var e fr.Element
	e.SetBytes(digest[:])
	return e
}

// EncodeBE32 serializes a field element as big-endian bytes, left-padded to
// 32 bytes. fr.Element.Bytes already returns the canonical 32-byte form, so
// this is a thin, explicitly-named wrapper kept for readability at call
// sites that think in terms of "the 32-byte encoding" rather than "the
// element's Bytes method".
func EncodeBE32(x *fr.Element) [32]byte {
	return x.Bytes()
}
