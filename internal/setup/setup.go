// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package setup runs circuit-specific Groth16 setup and persists the
// resulting proving/verifying keys under a version directory.
package setup

import (
	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tdfol/groth16-backend/internal/artifacts"
	"github.com/tdfol/groth16-backend/internal/backenderr"
	"github.com/tdfol/groth16-backend/internal/circuit"
	"github.com/tdfol/groth16-backend/internal/seed"
)

// circuitFor returns the zero-value circuit instance whose shape setup
// compiles for the given circuit_version: version 2 always selects the
// TDFOL_v1 derivation circuit; every other version in [0, 255] selects the
// compatibility MVP circuit. Only the circuit's structure (variable
// allocation and constraints) matters here, not any particular witness
// values, so a zero-value instance is sufficient.
func circuitFor(version uint32) frontend.Circuit {
	if version == 2 {
		return &circuit.DerivationCircuit{}
	}
	return &circuit.MVPCircuit{}
}

// Run compiles the circuit for version, runs Groth16 setup, and persists the
// resulting keys and manifest under root. callerSeed, if non-empty, forces
// deterministic key generation regardless of GROTH16_BACKEND_DETERMINISTIC.
func Run(root string, version uint32, callerSeed []byte) (*artifacts.Manifest, error) {
	if version > 255 {
		return nil, backenderr.New(backenderr.InvalidInput, "circuit_version must be <= 255")
	}

	logger := log.With().Str("request_id", uuid.New().String()).Uint32("version", version).Logger()

	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuitFor(version))
	if err != nil {
		logger.Warn().Err(err).Msg("circuit compile failed")
		return nil, backenderr.Wrap(backenderr.Internal, "compiling circuit", err)
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

	pk, vk, err := groth16.Setup(ccs)
	if err != nil {
		logger.Warn().Err(err).Msg("groth16 setup failed")
		return nil, backenderr.Wrap(backenderr.Internal, "groth16 setup", err)
	}

	manifest, err := artifacts.SaveKeys(root, version, pk, vk)
	if err != nil {
		logger.Warn().Err(err).Msg("saving setup keys failed")
		return nil, backenderr.Wrap(backenderr.IOError, "saving setup keys", err)
	}

	logger.Info().Bool("deterministic", deterministic).Str("vk_hash", manifest.VKHashHex).Msg("setup complete")
	return manifest, nil
}
