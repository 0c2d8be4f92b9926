// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package commitment

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/tdfol/groth16-backend/internal/field"
)

func TestCommitMatchesS1Scenario(t *testing.T) {
	hp := field.HashAtom("P")
	hq := field.HashAtom("Q")

	var ant, cons [MaxAxioms]fr.Element
	// axiom 0: fact P -> (ant=0, cons=H(P))
	cons[0] = hp
	// axiom 1: P -> Q -> (ant=H(P), cons=H(Q))
	ant[1] = hp
	cons[1] = hq

	got := Commit(ant, cons)

	var alpha, beta, term0, term1, want fr.Element
	alpha.SetUint64(Alpha)
	beta.SetUint64(Beta)

	term0 = hp // beta^0 = 1, ant term is 0 for slot 0
	term1.Mul(&alpha, &hp)
	term1.Add(&term1, &hq)
	term1.Mul(&term1, &beta)

	want.Add(&term0, &term1)

	if !got.Equal(&want) {
		t.Fatalf("Commit = %s, want %s", got.String(), want.String())
	}
}

func TestCommitEmptyIsZero(t *testing.T) {
	var ant, cons [MaxAxioms]fr.Element
	got := Commit(ant, cons)
	if !got.IsZero() {
		t.Fatalf("Commit of all-zero slots = %s, want 0", got.String())
	}
}

func TestCommitOrderDependent(t *testing.T) {
	ha := field.HashAtom("A")
	hb := field.HashAtom("B")

	var ant1, cons1, ant2, cons2 [MaxAxioms]fr.Element
	cons1[0] = ha
	cons1[1] = hb

	cons2[0] = hb
	cons2[1] = ha

	c1 := Commit(ant1, cons1)
	c2 := Commit(ant2, cons2)
	if c1.Equal(&c2) {
		t.Fatalf("Commit must be position-dependent, got equal commitments for swapped order")
	}
}
