// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package evmproof

import (
	"strings"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestDecode0xAcceptsOptionalPrefix(t *testing.T) {
	raw := strings.Repeat("ab", 32)
	for _, s := range []string{raw, "0x" + raw, "0X" + raw} {
		b, err := Decode0x(s)
		if err != nil {
			t.Fatalf("Decode0x(%q): %v", s, err)
		}
		if b[0] != 0xab || b[31] != 0xab {
			t.Fatalf("Decode0x(%q) produced wrong bytes: %x", s, b)
		}
	}
}

func TestDecode0xRejectsWrongLength(t *testing.T) {
	if _, err := Decode0x("0xab"); err == nil {
		t.Fatalf("expected error for short hex input")
	}
}

func TestDecode0xRejectsNonHex(t *testing.T) {
	bad := "zz" + strings.Repeat("00", 31)
	if _, err := Decode0x(bad); err == nil {
		t.Fatalf("expected error for non-hex input")
	}
}

func TestEncode0xCanonicalForm(t *testing.T) {
	var b [32]byte
	b[31] = 0x01
	got := Encode0x(b)
	want := "0x" + strings.Repeat("00", 31) + "01"
	if got != want {
		t.Fatalf("Encode0x = %q, want %q", got, want)
	}
}

func TestPublicInputsRoundTrip(t *testing.T) {
	var in [NumPublicWords]fr.Element
	in[0].SetUint64(1)
	in[1].SetUint64(2)
	in[2].SetUint64(255)
	in[3].SetUint64(42)

	words := EncodePublicInputs(in)
	back, err := DecodePublicInputs(words)
	if err != nil {
		t.Fatalf("DecodePublicInputs: %v", err)
	}
	for i := range in {
		if !in[i].Equal(&back[i]) {
			t.Fatalf("public input %d round-trip mismatch: %s != %s", i, in[i].String(), back[i].String())
		}
	}
}

func TestDecodeProofRejectsMalformedWord(t *testing.T) {
	var words [NumProofWords]string
	for i := range words {
		words[i] = "0x" + strings.Repeat("00", 32)
	}
	words[0] = "not-hex"
	if _, err := DecodeProof(words); err == nil {
		t.Fatalf("expected error decoding malformed proof word")
	}
}

func TestDecodeProofRejectsOffCurvePoint(t *testing.T) {
	var words [NumProofWords]string
	for i := range words {
		words[i] = Encode0x([32]byte{31: 0x01})
	}
	if _, err := DecodeProof(words); err == nil {
		t.Fatalf("expected error decoding an all-ones-style proof that is not on curve")
	}
}
