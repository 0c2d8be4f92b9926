// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package field

import (
	"crypto/sha256"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

func TestIsAtom(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"P", true},
		{"Q1", true},
		{"a_b_C9", true},
		{"", false},
		{"1P", false},
		{"P Q", false},
		{"P->Q", false},
		{"_P", false},
	}
	for _, c := range cases {
		if got := IsAtom(c.in); got != c.want {
			t.Errorf("IsAtom(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestHashAtomDeterministic(t *testing.T) {
	a := HashAtom("P")
	b := HashAtom("P")
	if !a.Equal(&b) {
		t.Fatalf("HashAtom not deterministic: %s != %s", a.String(), b.String())
	}
}

func TestHashAtomMatchesManualReduction(t *testing.T) {
	digest := sha256.Sum256([]byte("Q"))
	var want fr.Element
	want.SetBytes(digest[:])

	got := HashAtom("Q")
	if !got.Equal(&want) {
		t.Fatalf("HashAtom(%q) = %s, want %s", "Q", got.String(), want.String())
	}
}

func TestEncodeBE32RoundTrip(t *testing.T) {
	x := HashAtom("theorem")
	enc := EncodeBE32(&x)

	var back fr.Element
	back.SetBytes(enc[:])
	if !back.Equal(&x) {
		t.Fatalf("EncodeBE32 round-trip mismatch")
	}
}
