// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package verify checks a Groth16 proof document against its declared
// public inputs and a version's verifying key.
package verify

import (
	"encoding/json"
	"strconv"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tdfol/groth16-backend/internal/artifacts"
	"github.com/tdfol/groth16-backend/internal/circuit"
	"github.com/tdfol/groth16-backend/internal/evmproof"
	"github.com/tdfol/groth16-backend/internal/field"
	"github.com/tdfol/groth16-backend/internal/prove"
)

// Run parses proofJSON, derives its public-input vector, and runs the
// Groth16 pairing check against the verifying key for the proof's declared
// version. Structural failures (malformed JSON, a public_inputs array whose
// length is not 4, malformed proof/public-input words, a version/public-input
// mismatch) return (false, nil): only a failure to load the version's keys
// is surfaced as an error. Keys are loaded through the KeyCache, which reads
// the proving key file together with the verifying key file, so a missing
// proving_key.bin is also such an error.
func Run(root string, cache *artifacts.KeyCache, proofJSON []byte) (bool, error) {
	logger := log.With().Str("request_id", uuid.New().String()).Logger()

	var doc prove.ProofOutput
	if err := json.Unmarshal(proofJSON, &doc); err != nil {
		logger.Warn().Err(err).Msg("proof envelope failed to parse")
		return false, nil
	}
	logger = logger.With().Uint32("version", doc.Version).Logger()

	if doc.SchemaVersion != 1 {
		logger.Warn().Int("schema_version", doc.SchemaVersion).Msg("unsupported schema_version")
		return false, nil
	}
	if doc.Version > 255 {
		logger.Warn().Msg("version exceeds 255")
		return false, nil
	}
	var shape struct {
		PublicInputs []json.RawMessage `json:"public_inputs"`
	}
	if err := json.Unmarshal(proofJSON, &shape); err != nil || len(shape.PublicInputs) != 4 {
		logger.Warn().Msg("public_inputs must have exactly 4 entries")
		return false, nil
	}

	evmProofWords, ok := extract8(doc.Extra, "evm_proof")
	if !ok {
		logger.Warn().Msg("missing or malformed extra.evm_proof")
		return false, nil
	}
	decodedProof, err := evmproof.DecodeProof(evmProofWords)
	if err != nil {
		logger.Warn().Err(err).Msg("malformed proof words")
		return false, nil
	}

	publicInputs, ok := derivePublicInputs(doc)
	if !ok {
		logger.Warn().Msg("could not derive public inputs")
		return false, nil
	}

	var docVersionFr fr.Element
	docVersionFr.SetUint64(uint64(doc.Version))
	if !publicInputs[2].Equal(&docVersionFr) {
		logger.Warn().Msg("public_inputs[2] does not match the proof's declared version")
		return false, nil
	}

	vk, err := cache.LoadVerifyingKey(root, doc.Version)
	if err != nil {
		logger.Warn().Err(err).Msg("loading verifying key failed")
		return false, err
	}

	assignment := publicOnlyCircuit(doc.Version, publicInputs)
	publicWitness, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		logger.Warn().Err(err).Msg("building public witness failed")
		return false, nil
	}

	if err := groth16.Verify(decodedProof, vk, publicWitness); err != nil {
		logger.Info().Err(err).Bool("valid", false).Msg("verification result")
		return false, nil
	}
	logger.Info().Bool("valid", true).Msg("verification result")
	return true, nil
}

// derivePublicInputs prefers extra.evm_public_inputs (already-reduced
// canonical Fr words); it falls back to the human-readable public_inputs
// wire array, reducing each component the same way the witness builder
// does at proving time.
func derivePublicInputs(doc prove.ProofOutput) ([4]fr.Element, bool) {
	var out [4]fr.Element

	if words, ok := extract4(doc.Extra, "evm_public_inputs"); ok {
		decoded, err := evmproof.DecodePublicInputs(words)
		if err == nil {
			return decoded, true
		}
	}

	thmBytes, err := evmproof.Decode0x(doc.PublicInputs[0])
	if err != nil {
		return out, false
	}
	commitBytes, err := evmproof.Decode0x(doc.PublicInputs[1])
	if err != nil {
		return out, false
	}
	versionNum, err := strconv.ParseUint(doc.PublicInputs[2], 10, 32)
	if err != nil {
		return out, false
	}

	var commitFr, versionFr fr.Element
	commitFr.SetBytes(commitBytes[:])
	versionFr.SetUint64(versionNum)

	out[0] = field.ReduceModR(thmBytes)
	out[1] = commitFr
	out[2] = versionFr
	out[3] = field.HashAtom(doc.PublicInputs[3])
	return out, true
}

// publicOnlyCircuit returns a circuit assignment with only its public
// fields set, suitable for frontend.PublicOnly(). MVPCircuit and
// DerivationCircuit declare their public fields in the same order, so the
// resulting public witness is identical regardless of which is used; the
// version decides which to pick only for readability.
func publicOnlyCircuit(version uint32, pub [4]fr.Element) frontend.Circuit {
	if version == 2 {
		return &circuit.DerivationCircuit{
			ThmHash:      pub[0],
			AxiomsCommit: pub[1],
			Version:      pub[2],
			RulesetHash:  pub[3],
		}
	}
	return &circuit.MVPCircuit{
		ThmHash:      pub[0],
		AxiomsCommit: pub[1],
		Version:      pub[2],
		RulesetHash:  pub[3],
	}
}

func extract8(extra map[string]json.RawMessage, key string) ([8]string, bool) {
	var out [8]string
	raw, ok := extra[key]
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}

func extract4(extra map[string]json.RawMessage, key string) ([4]string, bool) {
	var out [4]string
	raw, ok := extra[key]
	if !ok {
		return out, false
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false
	}
	return out, true
}
