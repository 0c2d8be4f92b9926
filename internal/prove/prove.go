// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package prove builds a circuit witness from an external witness document,
// runs a satisfiability pre-check, and produces a Groth16 proof together
// with its EVM-compatible encoding.
package prove

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tdfol/groth16-backend/internal/artifacts"
	"github.com/tdfol/groth16-backend/internal/backenderr"
	"github.com/tdfol/groth16-backend/internal/evmproof"
	"github.com/tdfol/groth16-backend/internal/seed"
	"github.com/tdfol/groth16-backend/internal/witness"
)

// ProofOutput is the external proof JSON document: the prover's output and
// the verifier's input.
type ProofOutput struct {
	SchemaVersion int                        `json:"schema_version"`
	ProofA        string                     `json:"proof_a"`
	ProofB        string                     `json:"proof_b"`
	ProofC        string                     `json:"proof_c"`
	PublicInputs  [4]string                  `json:"public_inputs"`
	Timestamp     uint64                     `json:"timestamp"`
	Version       uint32                     `json:"version"`
	Extra         map[string]json.RawMessage `json:"extra"`
}

// Run validates in, loads the version's proving key from cache/root,
// assembles the circuit witness, pre-checks satisfiability, runs the Groth16
// prover, and returns the external proof document. callerSeed, if non-empty,
// forces deterministic proving regardless of GROTH16_BACKEND_DETERMINISTIC.
func Run(root string, cache *artifacts.KeyCache, in *witness.Input, callerSeed []byte) (*ProofOutput, error) {
	logger := log.With().Str("request_id", uuid.New().String()).Logger()

	assembled, err := witness.Build(in)
	if err != nil {
		// Only the error kind is logged: witness errors can quote a private
		// axiom verbatim.
		var be *backenderr.Error
		if errors.As(err, &be) {
			logger.Warn().Str("kind", string(be.Kind)).Msg("witness assembly failed")
		} else {
			logger.Warn().Msg("witness assembly failed")
		}
		return nil, err
	}
	logger = logger.With().Uint32("version", assembled.Version).Logger()

	pk, err := cache.LoadProvingKey(root, assembled.Version)
	if err != nil {
		logger.Warn().Err(err).Msg("loading proving key failed")
		return nil, err
	}

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, assembled.Circuit)
	if err != nil {
		logger.Warn().Err(err).Msg("circuit compile failed")
		return nil, backenderr.Wrap(backenderr.Internal, "compiling circuit", err)
	}

	fullWitness, err := frontend.NewWitness(assembled.Circuit, ecc.BN254.ScalarField())
	if err != nil {
		logger.Warn().Err(err).Msg("building witness failed")
		return nil, backenderr.Wrap(backenderr.Internal, "building witness", err)
	}

	if err := ccs.IsSolved(fullWitness); err != nil {
		logger.Warn().Err(err).Msg("witness does not satisfy the circuit")
		return nil, backenderr.Wrap(backenderr.InvalidInput, "witness does not satisfy the circuit's constraints", err)
	}

	deterministic := seed.Resolve(callerSeed)
	if deterministic {
		restore, err := seed.WithDeterministicRandomness(callerSeed)
		if err != nil {
			logger.Warn().Err(err).Msg("installing deterministic randomness failed")
			return nil, backenderr.Wrap(backenderr.Internal, "installing deterministic randomness", err)
		}
		defer restore()
	}

	proof, err := groth16.Prove(ccs, pk, fullWitness)
	if err != nil {
		logger.Warn().Err(err).Msg("groth16 proving failed")
		return nil, backenderr.Wrap(backenderr.Internal, "groth16 prove", err)
	}

	evmWords, err := evmproof.EncodeProof(proof)
	if err != nil {
		logger.Warn().Err(err).Msg("encoding EVM proof words failed")
		return nil, backenderr.Wrap(backenderr.Internal, "encoding EVM proof", err)
	}
	evmPublicWords := evmproof.EncodePublicInputs(assembled.PublicInputs)

	var timestamp uint64
	if !deterministic {
		timestamp = uint64(time.Now().Unix())
	}

	out := &ProofOutput{
		SchemaVersion: 1,
		ProofA:        jsonArrayString(evmWords[0], evmWords[1]),
		ProofB:        jsonNestedPairString(evmWords[2], evmWords[3], evmWords[4], evmWords[5]),
		ProofC:        jsonArrayString(evmWords[6], evmWords[7]),
		PublicInputs: [4]string{
			assembled.TheoremHashHex,
			assembled.AxiomsCommitmentHex,
			strconv.FormatUint(uint64(assembled.Version), 10),
			assembled.RulesetID,
		},
		Timestamp: timestamp,
		Version:   assembled.Version,
		Extra:     mergeExtra(assembled.Extra, evmWords, evmPublicWords),
	}

	logger.Info().Bool("deterministic", deterministic).Msg("proof generated")
	return out, nil
}

func jsonArrayString(a, b string) string {
	raw, _ := json.Marshal([2]string{a, b})
	return string(raw)
}

func jsonNestedPairString(xc0, xc1, yc0, yc1 string) string {
	raw, _ := json.Marshal([2][2]string{{xc0, xc1}, {yc0, yc1}})
	return string(raw)
}

func mergeExtra(base map[string]json.RawMessage, evmProof [evmproof.NumProofWords]string, evmPublicInputs [evmproof.NumPublicWords]string) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(base)+2)
	for k, v := range base {
		out[k] = v
	}
	proofRaw, _ := json.Marshal(evmProof)
	publicRaw, _ := json.Marshal(evmPublicInputs)
	out["evm_proof"] = proofRaw
	out["evm_public_inputs"] = publicRaw
	return out
}
