// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package commitment implements the field-only axiom-set accumulator shared
// between the witness builder (off-circuit) and circuit v2 (in-circuit).
// In-circuit SHA-256 is deliberately avoided: the accumulator below is
// collision-resistant only for a fixed ordering and bounded length, which is
// exactly what the circuit's fixed-size witness allocation enforces.
package commitment

import "github.com/consensys/gnark-crypto/ecc/bn254/fr"

const (
	// MaxAxioms bounds the padded axiom list.
	MaxAxioms = 16
	// MaxSteps bounds the padded derivation trace.
	MaxSteps = 16
	// Alpha weights the antecedent half of each (cons, ant) pair.
	Alpha = 7
	// Beta is the accumulator's per-slot base.
	Beta = 13
)

// Commit computes C = sum_i (cons_i + alpha*ant_i) * beta^i over fixed-size,
// zero-padded ant/cons slices. Both slices must have length MaxAxioms;
// callers are responsible for padding with (0, 0) beyond the real axiom
// count.
func Commit(ant, cons [MaxAxioms]fr.Element) fr.Element {
	var alpha, beta, betaPow, term, weighted, acc fr.Element
	alpha.SetUint64(Alpha)
	beta.SetUint64(Beta)
	betaPow.SetOne()

	for i := 0; i < MaxAxioms; i++ {
		weighted.Mul(&alpha, &ant[i])
		weighted.Add(&weighted, &cons[i])
		term.Mul(&weighted, &betaPow)
		acc.Add(&acc, &term)
		betaPow.Mul(&betaPow, &beta)
	}
	return acc
}
