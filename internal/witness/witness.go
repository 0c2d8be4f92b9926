// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package witness parses the external witness JSON, validates it against the
// declared commitments and hashes, and assembles the matching circuit
// instance (version 1's MVPCircuit or version 2's DerivationCircuit) plus its
// canonical public-input vector.
package witness

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/frontend"

	"github.com/tdfol/groth16-backend/internal/backenderr"
	"github.com/tdfol/groth16-backend/internal/circuit"
	"github.com/tdfol/groth16-backend/internal/commitment"
	"github.com/tdfol/groth16-backend/internal/evmproof"
	"github.com/tdfol/groth16-backend/internal/field"
)

// Input is the external witness-JSON shape. Unknown top-level keys are
// preserved in Extra rather than rejected, so callers can round-trip
// additional metadata through to ProofOutput.extra.
type Input struct {
	PrivateAxioms       []string `json:"private_axioms"`
	Theorem             string   `json:"theorem"`
	IntermediateSteps   []string `json:"intermediate_steps"`
	AxiomsCommitmentHex string   `json:"axioms_commitment_hex"`
	TheoremHashHex      string   `json:"theorem_hash_hex"`
	CircuitVersion      uint32   `json:"circuit_version"`
	RulesetID           string   `json:"ruleset_id"`
	SecurityLevel       *int     `json:"security_level,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var knownInputKeys = map[string]bool{
	"private_axioms":        true,
	"theorem":               true,
	"intermediate_steps":    true,
	"axioms_commitment_hex": true,
	"theorem_hash_hex":      true,
	"circuit_version":       true,
	"ruleset_id":            true,
	"security_level":        true,
}

// UnmarshalJSON decodes the known fields normally and stashes every other
// top-level key in Extra.
func (in *Input) UnmarshalJSON(data []byte) error {
	type alias Input
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return backenderr.Wrap(backenderr.InvalidJSON, "decoding witness input", err)
	}
	*in = Input(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return backenderr.Wrap(backenderr.InvalidJSON, "decoding witness input", err)
	}
	extra := make(map[string]json.RawMessage)
	for k, v := range raw {
		if !knownInputKeys[k] {
			extra[k] = v
		}
	}
	if len(extra) > 0 {
		in.Extra = extra
	}
	return nil
}

// Parse decodes a witness JSON document into an Input.
func Parse(data []byte) (*Input, error) {
	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		var be *backenderr.Error
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, backenderr.Wrap(backenderr.InvalidJSON, "decoding witness input", err)
	}
	return &in, nil
}

// parsedAxiom is an axiom split into its optional antecedent and required
// consequent atom names.
type parsedAxiom struct {
	Ant  string
	Cons string
}

func parseAxiom(raw string) (parsedAxiom, error) {
	parts := strings.Split(raw, "->")
	switch len(parts) {
	case 1:
		cons := strings.TrimSpace(parts[0])
		if !field.IsAtom(cons) {
			return parsedAxiom{}, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("axiom %q: consequent is not a well-formed atom", raw))
		}
		return parsedAxiom{Cons: cons}, nil
	case 2:
		ant := strings.TrimSpace(parts[0])
		cons := strings.TrimSpace(parts[1])
		if !field.IsAtom(ant) {
			return parsedAxiom{}, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("axiom %q: antecedent is not a well-formed atom", raw))
		}
		if !field.IsAtom(cons) {
			return parsedAxiom{}, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("axiom %q: consequent is not a well-formed atom", raw))
		}
		return parsedAxiom{Ant: ant, Cons: cons}, nil
	default:
		return parsedAxiom{}, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("axiom %q: at most one \"->\" allowed", raw))
	}
}

// Assembled is the output of Build: the circuit instance ready for
// compilation/proving, its canonical in-circuit public-input vector, and the
// human-readable fields needed to render the external wire-format
// public_inputs array.
type Assembled struct {
	Version             uint32
	RulesetID           string
	TheoremHashHex      string
	AxiomsCommitmentHex string
	PublicInputs        [4]fr.Element
	Circuit             frontend.Circuit
	Extra               map[string]json.RawMessage
}

// Build validates in against the declared commitments and hashes and
// assembles the matching circuit instance. Circuit v2 recomputes the axioms
// commitment and theorem hash from the supplied axioms/theorem and rejects
// any declared axioms_commitment_hex/theorem_hash_hex that disagrees with
// them. Circuit v1 is a compatibility surface only: it skips trace handling
// and recomputation entirely, taking axioms_commitment_hex/theorem_hash_hex
// as opaque non-zero 32-byte vectors reduced straight into Fr.
func Build(in *Input) (*Assembled, error) {
	if in.CircuitVersion > 255 {
		return nil, backenderr.New(backenderr.InvalidInput, "circuit_version must be <= 255")
	}
	if len(in.PrivateAxioms) == 0 {
		return nil, backenderr.New(backenderr.InvalidInput, "private_axioms must be non-empty")
	}
	if len(in.PrivateAxioms) > commitment.MaxAxioms {
		return nil, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("private_axioms exceeds MAX_AXIOMS=%d", commitment.MaxAxioms))
	}
	if in.Theorem == "" {
		return nil, backenderr.New(backenderr.InvalidInput, "theorem must be non-empty")
	}
	if in.RulesetID == "" {
		return nil, backenderr.New(backenderr.InvalidInput, "ruleset_id must be non-empty")
	}

	if in.CircuitVersion == 2 {
		return buildDerivation(in)
	}
	return buildMVP(in)
}

// buildDerivation handles circuit v2: axioms and theorem are parsed and
// hashed, the commitment is recomputed, and any declared commitment/hash is
// checked against the recomputed value.
func buildDerivation(in *Input) (*Assembled, error) {
	if !field.IsAtom(in.Theorem) {
		return nil, backenderr.New(backenderr.InvalidInput, "theorem is not a well-formed atom")
	}
	if in.RulesetID != circuit.RulesetID {
		return nil, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("unsupported ruleset_id %q for circuit v2", in.RulesetID))
	}
	if len(in.IntermediateSteps) == 0 {
		return nil, backenderr.New(backenderr.InvalidInput, "intermediate_steps must be non-empty for circuit v2")
	}
	if len(in.IntermediateSteps) > commitment.MaxSteps {
		return nil, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("intermediate_steps exceeds MAX_STEPS=%d", commitment.MaxSteps))
	}

	var antArr, consArr [commitment.MaxAxioms]fr.Element
	for i, raw := range in.PrivateAxioms {
		pa, err := parseAxiom(raw)
		if err != nil {
			return nil, err
		}
		if pa.Ant != "" {
			antArr[i] = field.HashAtom(pa.Ant)
		}
		consArr[i] = field.HashAtom(pa.Cons)
	}
	expectedCommit := commitment.Commit(antArr, consArr)

	if in.AxiomsCommitmentHex != "" {
		declared, err := evmproof.Decode0x(in.AxiomsCommitmentHex)
		if err != nil {
			return nil, err
		}
		if declared != field.EncodeBE32(&expectedCommit) {
			return nil, backenderr.New(backenderr.InvalidInput, "axioms_commitment_hex does not match the computed commitment")
		}
	}

	rawTheoremDigest := sha256.Sum256([]byte(in.Theorem))
	if in.TheoremHashHex != "" {
		declared, err := evmproof.Decode0x(in.TheoremHashHex)
		if err != nil {
			return nil, err
		}
		if declared != rawTheoremDigest {
			return nil, backenderr.New(backenderr.InvalidInput, "theorem_hash_hex does not match SHA256(theorem)")
		}
	}
	thmHash := field.ReduceModR(rawTheoremDigest)

	var traceArr [commitment.MaxSteps]fr.Element
	for i, atom := range in.IntermediateSteps {
		if !field.IsAtom(atom) {
			return nil, backenderr.New(backenderr.InvalidInput, fmt.Sprintf("intermediate_steps[%d] is not a well-formed atom", i))
		}
		traceArr[i] = field.HashAtom(atom)
	}

	rulesetHash := field.HashAtom(in.RulesetID)
	var versionFr fr.Element
	versionFr.SetUint64(uint64(in.CircuitVersion))

	var out Assembled
	out.Version = in.CircuitVersion
	out.RulesetID = in.RulesetID
	out.TheoremHashHex = evmproof.Encode0x(rawTheoremDigest)
	out.AxiomsCommitmentHex = evmproof.Encode0x(field.EncodeBE32(&expectedCommit))
	out.Extra = in.Extra
	out.PublicInputs = [4]fr.Element{thmHash, expectedCommit, versionFr, rulesetHash}

	deriv := &circuit.DerivationCircuit{
		ThmHash:      thmHash,
		AxiomsCommit: expectedCommit,
		Version:      versionFr,
		RulesetHash:  rulesetHash,
	}
	for i := 0; i < commitment.MaxAxioms; i++ {
		deriv.Ant[i] = antArr[i]
		deriv.Cons[i] = consArr[i]
	}
	for i := 0; i < commitment.MaxSteps; i++ {
		deriv.Trace[i] = traceArr[i]
	}
	out.Circuit = deriv
	return &out, nil
}

// buildMVP handles circuit v1: a compatibility surface that takes
// axioms_commitment_hex/theorem_hash_hex as opaque, caller-declared 32-byte
// vectors. Neither private_axioms nor theorem content is hashed or
// recomputed against them; both must merely be non-zero once reduced into
// Fr, matching the MVP circuit's inverse-witness satisfiability constraint.
func buildMVP(in *Input) (*Assembled, error) {
	if in.AxiomsCommitmentHex == "" {
		return nil, backenderr.New(backenderr.InvalidInput, "axioms_commitment_hex is required for circuit v1")
	}
	if in.TheoremHashHex == "" {
		return nil, backenderr.New(backenderr.InvalidInput, "theorem_hash_hex is required for circuit v1")
	}

	declaredCommit, err := evmproof.Decode0x(in.AxiomsCommitmentHex)
	if err != nil {
		return nil, err
	}
	declaredThm, err := evmproof.Decode0x(in.TheoremHashHex)
	if err != nil {
		return nil, err
	}

	expectedCommit := field.ReduceModR(declaredCommit)
	thmHash := field.ReduceModR(declaredThm)
	rulesetHash := field.HashAtom(in.RulesetID)
	var versionFr fr.Element
	versionFr.SetUint64(uint64(in.CircuitVersion))

	if expectedCommit.IsZero() {
		return nil, backenderr.New(backenderr.InvalidInput, "axioms_commitment_hex must be non-zero for circuit v1")
	}
	if thmHash.IsZero() {
		return nil, backenderr.New(backenderr.InvalidInput, "theorem_hash_hex must be non-zero for circuit v1")
	}
	if rulesetHash.IsZero() {
		return nil, backenderr.New(backenderr.InvalidInput, "ruleset_id hash must be non-zero for circuit v1")
	}

	var out Assembled
	out.Version = in.CircuitVersion
	out.RulesetID = in.RulesetID
	out.TheoremHashHex = evmproof.Encode0x(declaredThm)
	out.AxiomsCommitmentHex = evmproof.Encode0x(declaredCommit)
	out.Extra = in.Extra
	out.PublicInputs = [4]fr.Element{thmHash, expectedCommit, versionFr, rulesetHash}

	var thmInv, commitInv, rulesetInv fr.Element
	thmInv.Inverse(&thmHash)
	commitInv.Inverse(&expectedCommit)
	rulesetInv.Inverse(&rulesetHash)

	out.Circuit = &circuit.MVPCircuit{
		ThmHash:         thmHash,
		AxiomsCommit:    expectedCommit,
		Version:         versionFr,
		RulesetHash:     rulesetHash,
		ThmHashInv:      thmInv,
		AxiomsCommitInv: commitInv,
		RulesetHashInv:  rulesetInv,
		VersionWitness:  versionFr,
	}
	return &out, nil
}
