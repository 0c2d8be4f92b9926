// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package circuit

import (
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/tdfol/groth16-backend/internal/commitment"
	"github.com/tdfol/groth16-backend/internal/field"
)

// newAssignment builds a fully-padded DerivationCircuit assignment from
// parallel ant/cons atom-name slices (antAtoms[i] == "" means a fact slot)
// and a trace of atom names; every slot beyond the given length is set to 0
// explicitly, since frontend.NewWitness rejects unassigned (nil) Variables.
func newAssignment(antAtoms, consAtoms []string, traceAtoms []string, theoremAtom string) *DerivationCircuit {
	a := &DerivationCircuit{
		Version:     2,
		RulesetHash: rulesetHashConst,
	}
	zeroPad(a)

	var antFr, consFr [commitment.MaxAxioms]fr.Element
	for i := range consAtoms {
		if antAtoms[i] != "" {
			h := field.HashAtom(antAtoms[i])
			antFr[i] = h
			a.Ant[i] = h
		}
		h := field.HashAtom(consAtoms[i])
		consFr[i] = h
		a.Cons[i] = h
	}
	for i := range traceAtoms {
		a.Trace[i] = field.HashAtom(traceAtoms[i])
	}

	a.ThmHash = field.HashAtom(theoremAtom)
	a.AxiomsCommit = commitment.Commit(antFr, consFr)
	return a
}

// zeroPad assigns 0 to every Ant, Cons and Trace slot of a.
func zeroPad(a *DerivationCircuit) {
	for i := 0; i < commitment.MaxAxioms; i++ {
		a.Ant[i], a.Cons[i] = 0, 0
	}
	for k := 0; k < commitment.MaxSteps; k++ {
		a.Trace[k] = 0
	}
}

func solve(t *testing.T, a *DerivationCircuit) error {
	t.Helper()
	circuit := &DerivationCircuit{}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	w, err := frontend.NewWitness(a, ecc.BN254.ScalarField())
	if err != nil {
		t.Fatalf("NewWitness: %v", err)
	}
	return ccs.IsSolved(w)
}

func TestDerivationCircuitS1MinimalModusPonens(t *testing.T) {
	a := newAssignment([]string{"", "P"}, []string{"P", "Q"}, []string{"Q"}, "Q")
	if err := solve(t, a); err != nil {
		t.Fatalf("expected S1 assignment to satisfy the circuit, got: %v", err)
	}
}

func TestDerivationCircuitS2ChainedInference(t *testing.T) {
	a := newAssignment([]string{"", "A", "B"}, []string{"A", "B", "C"}, []string{"B", "C"}, "C")
	if err := solve(t, a); err != nil {
		t.Fatalf("expected S2 assignment to satisfy the circuit, got: %v", err)
	}
}

func TestDerivationCircuitS3FailingTraceRejected(t *testing.T) {
	a := newAssignment([]string{"", "A"}, []string{"A", "B"}, []string{"C"}, "C")
	if err := solve(t, a); err == nil {
		t.Fatalf("expected S3 assignment (no justification for C) to fail solving")
	}
}

func TestDerivationCircuitRejectsWrongVersion(t *testing.T) {
	a := newAssignment([]string{"", "P"}, []string{"P", "Q"}, []string{"Q"}, "Q")
	a.Version = 1
	if err := solve(t, a); err == nil {
		t.Fatalf("expected version mismatch to fail solving")
	}
}

func TestDerivationCircuitRejectsDuplicateTraceEntries(t *testing.T) {
	a := newAssignment([]string{"", "A"}, []string{"A", "B"}, []string{"B", "B"}, "B")
	if err := solve(t, a); err == nil {
		t.Fatalf("expected duplicate non-zero trace entries to fail solving")
	}
}

func TestDerivationCircuitRejectsEmptyTrace(t *testing.T) {
	a := &DerivationCircuit{Version: 2, RulesetHash: rulesetHashConst}
	zeroPad(a)
	a.Cons[0] = field.HashAtom("A")
	a.ThmHash = field.HashAtom("A")
	var ant, cons [commitment.MaxAxioms]fr.Element
	cons[0] = field.HashAtom("A")
	a.AxiomsCommit = commitment.Commit(ant, cons)

	if err := solve(t, a); err == nil {
		t.Fatalf("expected empty trace to fail solving")
	}
}
