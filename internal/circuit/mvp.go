// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package circuit defines the two R1CS circuits: MVPCircuit (version 1, a
// compatibility surface with no semantic soundness beyond non-zero public
// inputs) and DerivationCircuit (version 2, the TDFOL_v1 forward-chaining
// derivation circuit).
package circuit

import (
	"github.com/consensys/gnark/frontend"
)

// MVPCircuit is the version-1 compatibility circuit. It does not constrain
// ThmHash or AxiomsCommit to be digests of anything; it only proves each of
// the three hash-shaped public inputs is non-zero, and that the declared
// version equals the version baked into the witness.
type MVPCircuit struct {
	// Public inputs, in canonical order.
	ThmHash      frontend.Variable `gnark:",public"`
	AxiomsCommit frontend.Variable `gnark:",public"`
	Version      frontend.Variable `gnark:",public"`
	RulesetHash  frontend.Variable `gnark:",public"`

	// Private witnesses: multiplicative inverses of the three hash-shaped
	// values above, and the version the keys were generated for.
	ThmHashInv      frontend.Variable
	AxiomsCommitInv frontend.Variable
	RulesetHashInv  frontend.Variable
	VersionWitness  frontend.Variable
}

// Define implements frontend.Circuit.
func (c *MVPCircuit) Define(api frontend.API) error {
	one := frontend.Variable(1)

	api.AssertIsEqual(api.Mul(c.ThmHash, c.ThmHashInv), one)
	api.AssertIsEqual(api.Mul(c.AxiomsCommit, c.AxiomsCommitInv), one)
	api.AssertIsEqual(api.Mul(c.RulesetHash, c.RulesetHashInv), one)

	api.AssertIsEqual(c.Version, c.VersionWitness)

	return nil
}
