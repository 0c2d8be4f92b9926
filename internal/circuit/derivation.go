// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package circuit

import (
	"math/big"

	"github.com/consensys/gnark/frontend"

	"github.com/tdfol/groth16-backend/internal/commitment"
	"github.com/tdfol/groth16-backend/internal/field"
)

// RulesetID is the only ruleset circuit v2 accepts.
const RulesetID = "TDFOL_v1"

// rulesetHashConst is reduce_mod_r(SHA256("TDFOL_v1")), computed once and
// embedded as a circuit constant.
var rulesetHashConst = func() *big.Int {
	h := field.HashAtom(RulesetID)
	var bi big.Int
	h.BigInt(&bi)
	return &bi
}()

// betaPowers[i] = Beta^i, precomputed as plain integers. Beta^15 fits
// comfortably in an int64 (~5.1e16), so no field-element exponentiation is
// needed at circuit-build time; the frontend reduces these constants modulo
// the scalar field automatically wherever they are used as coefficients.
var betaPowers = func() [commitment.MaxAxioms]int64 {
	var p [commitment.MaxAxioms]int64
	p[0] = 1
	for i := 1; i < commitment.MaxAxioms; i++ {
		p[i] = p[i-1] * commitment.Beta
	}
	return p
}()

// DerivationCircuit is the version-2 TDFOL_v1 forward-chaining derivation
// circuit: it enforces axiom well-formedness, in-circuit commitment
// equality, a non-empty tail-padded unique trace, per-step Horn-modus-ponens
// justification, and theorem membership in the derived known set.
type DerivationCircuit struct {
	ThmHash      frontend.Variable `gnark:",public"`
	AxiomsCommit frontend.Variable `gnark:",public"`
	Version      frontend.Variable `gnark:",public"`
	RulesetHash  frontend.Variable `gnark:",public"`

	Ant   [commitment.MaxAxioms]frontend.Variable
	Cons  [commitment.MaxAxioms]frontend.Variable
	Trace [commitment.MaxSteps]frontend.Variable
}

// Define implements frontend.Circuit.
func (c *DerivationCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Version, 2)
	api.AssertIsEqual(c.RulesetHash, rulesetHashConst)

	antZero := make([]frontend.Variable, commitment.MaxAxioms)
	consZero := make([]frontend.Variable, commitment.MaxAxioms)
	antNonZero := make([]frontend.Variable, commitment.MaxAxioms)
	consNonZero := make([]frontend.Variable, commitment.MaxAxioms)
	isFact := make([]frontend.Variable, commitment.MaxAxioms)

	for i := 0; i < commitment.MaxAxioms; i++ {
		antZero[i] = api.IsZero(c.Ant[i])
		consZero[i] = api.IsZero(c.Cons[i])
		antNonZero[i] = api.Sub(1, antZero[i])
		consNonZero[i] = api.Sub(1, consZero[i])

		// (cons_i = 0) AND (ant_i != 0) must be false.
		api.AssertIsEqual(api.And(consZero[i], antNonZero[i]), 0)

		// a fact slot is ant=0 and cons!=0.
		isFact[i] = api.And(antZero[i], consNonZero[i])
	}

	// axioms_commitment_input = sum_i (cons_i + alpha*ant_i) * beta^i
	var acc frontend.Variable = 0
	for i := 0; i < commitment.MaxAxioms; i++ {
		weighted := api.Add(c.Cons[i], api.Mul(commitment.Alpha, c.Ant[i]))
		acc = api.Add(acc, api.Mul(weighted, betaPowers[i]))
	}
	api.AssertIsEqual(c.AxiomsCommit, acc)

	traceNonZero := make([]frontend.Variable, commitment.MaxSteps)
	for k := 0; k < commitment.MaxSteps; k++ {
		traceNonZero[k] = api.Sub(1, api.IsZero(c.Trace[k]))
	}

	// at least one step non-zero.
	api.AssertIsEqual(karyOr(api, traceNonZero), 1)

	// tail-only zero padding: trace_i = 0 implies trace_{i+1} = 0.
	for k := 0; k < commitment.MaxSteps-1; k++ {
		bad := api.And(api.Sub(1, traceNonZero[k]), traceNonZero[k+1])
		api.AssertIsEqual(bad, 0)
	}

	// uniqueness among non-zero trace entries.
	for i := 0; i < commitment.MaxSteps; i++ {
		for j := i + 1; j < commitment.MaxSteps; j++ {
			eqIJ := boolEqual(api, c.Trace[i], c.Trace[j])
			bad := api.And(api.And(traceNonZero[i], traceNonZero[j]), eqIJ)
			api.AssertIsEqual(bad, 0)
		}
	}

	// factsMembership reports whether v equals some fact's consequent.
	factsMembership := func(v frontend.Variable) frontend.Variable {
		bits := make([]frontend.Variable, commitment.MaxAxioms)
		for i := 0; i < commitment.MaxAxioms; i++ {
			bits[i] = api.And(isFact[i], boolEqual(api, c.Cons[i], v))
		}
		return karyOr(api, bits)
	}

	// tracePrefixMembership reports whether v equals a non-zero trace entry
	// at an index strictly less than upTo.
	tracePrefixMembership := func(v frontend.Variable, upTo int) frontend.Variable {
		if upTo <= 0 {
			return frontend.Variable(0)
		}
		bits := make([]frontend.Variable, upTo)
		for j := 0; j < upTo; j++ {
			bits[j] = api.And(traceNonZero[j], boolEqual(api, c.Trace[j], v))
		}
		return karyOr(api, bits)
	}

	knownSetMembership := func(v frontend.Variable, upTo int) frontend.Variable {
		return api.Or(factsMembership(v), tracePrefixMembership(v, upTo))
	}

	for k := 0; k < commitment.MaxSteps; k++ {
		stepKnown := knownSetMembership(c.Trace[k], k)

		justifiers := make([]frontend.Variable, commitment.MaxAxioms)
		for i := 0; i < commitment.MaxAxioms; i++ {
			isImplication := api.And(antNonZero[i], consNonZero[i])
			consMatches := boolEqual(api, c.Cons[i], c.Trace[k])
			antKnown := knownSetMembership(c.Ant[i], k)
			justifiers[i] = api.And(api.And(isImplication, consMatches), antKnown)
		}
		existsJustifier := karyOr(api, justifiers)

		bad := api.And(api.And(traceNonZero[k], api.Sub(1, stepKnown)), api.Sub(1, existsJustifier))
		api.AssertIsEqual(bad, 0)
	}

	// theorem membership: theorem_hash in facts union non-zero trace entries.
	theoremInFacts := factsMembership(c.ThmHash)
	theoremInTraceBits := make([]frontend.Variable, commitment.MaxSteps)
	for k := 0; k < commitment.MaxSteps; k++ {
		theoremInTraceBits[k] = api.And(traceNonZero[k], boolEqual(api, c.Trace[k], c.ThmHash))
	}
	theoremInTrace := karyOr(api, theoremInTraceBits)
	api.AssertIsEqual(api.Or(theoremInFacts, theoremInTrace), 1)

	return nil
}

// boolEqual returns a boolean (0/1) Variable that is 1 iff a == b.
func boolEqual(api frontend.API, a, b frontend.Variable) frontend.Variable {
	return api.IsZero(api.Sub(a, b))
}

// karyOr folds a slice of boolean Variables with OR. An empty slice returns
// the constant 0.
func karyOr(api frontend.API, bits []frontend.Variable) frontend.Variable {
	if len(bits) == 0 {
		return frontend.Variable(0)
	}
	acc := bits[0]
	for _, b := range bits[1:] {
		acc = api.Or(acc, b)
	}
	return acc
}
