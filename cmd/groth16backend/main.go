// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package main is the CLI shell over the TDFOL_v1 Groth16 backend: thin
// dispatch into internal/setup, internal/prove, internal/verify, and the
// standalone atom-hashing utility; no business logic lives here.
package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/tdfol/groth16-backend/internal/artifacts"
	"github.com/tdfol/groth16-backend/internal/config"
	"github.com/tdfol/groth16-backend/internal/field"
	"github.com/tdfol/groth16-backend/internal/prove"
	"github.com/tdfol/groth16-backend/internal/setup"
	"github.com/tdfol/groth16-backend/internal/verify"
	"github.com/tdfol/groth16-backend/internal/witness"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, "usage: groth16backend <setup|prove|verify|hash> [flags]")
		return 2
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "setup":
		return runSetup(rest, stdout, stderr)
	case "prove":
		return runProve(rest, stdout, stderr)
	case "verify":
		return runVerify(rest, stdout, stderr)
	case "hash":
		return runHash(rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "error: unknown subcommand %q\n", sub)
		return 2
	}
}

// newFlagSet builds a pflag.FlagSet carrying the two ambient configuration
// flags (--artifacts-root, --deterministic) that setup, prove and verify
// accept, in addition to whatever subcommand-specific flags the caller
// registers. The hash subcommand builds its own flag set without them.
func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("artifacts-root", "", "override "+config.ArtifactsRootEnvVar)
	fs.Bool("deterministic", false, "override "+config.DeterministicEnvVar)
	return fs
}

// resolveSeed returns the deterministic-randomness seed for a call: an
// explicit --seed hex string takes precedence; otherwise, if deterministic
// mode is active, the default all-zero 32-byte seed is used so the call
// still goes through internal/seed's substitution path even when
// determinism was requested only via --deterministic (which, unlike
// GROTH16_BACKEND_DETERMINISTIC, internal/seed cannot observe directly).
func resolveSeed(cfg *config.Config, seedHex string) ([]byte, error) {
	if seedHex != "" {
		trimmed := strings.TrimPrefix(strings.TrimPrefix(seedHex, "0x"), "0X")
		b, err := hex.DecodeString(trimmed)
		if err != nil {
			return nil, fmt.Errorf("invalid --seed hex: %w", err)
		}
		return b, nil
	}
	if cfg.Deterministic {
		return make([]byte, 32), nil
	}
	return nil, nil
}

func runSetup(rest []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("setup", stderr)
	version := fs.Uint32("version", 0, "circuit version to generate keys for (required)")
	seedHex := fs.String("seed", "", "optional hex-encoded deterministic seed")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	if !fs.Changed("version") {
		fmt.Fprintln(stderr, "error: --version is required")
		fs.Usage()
		return 2
	}

	cfg := config.FromFlags(fs)
	callerSeed, err := resolveSeed(cfg, *seedHex)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	manifest, err := setup.Run(cfg.ArtifactsRoot, *version, callerSeed)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if err := json.NewEncoder(stdout).Encode(manifest); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func runProve(rest []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("prove", stderr)
	input := fs.StringP("input", "i", "-", "witness JSON file, or \"-\" for stdin")
	output := fs.StringP("output", "o", "-", "proof JSON file, or \"-\" for stdout")
	seedHex := fs.String("seed", "", "optional hex-encoded deterministic seed")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	witnessJSON, err := readInput(*input)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	in, err := witness.Parse(witnessJSON)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	cfg := config.FromFlags(fs)
	callerSeed, err := resolveSeed(cfg, *seedHex)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}

	cache := artifacts.NewKeyCache()
	proofOut, err := prove.Run(cfg.ArtifactsRoot, cache, in, callerSeed)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	raw, err := json.Marshal(proofOut)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	if err := writeOutput(*output, raw, stdout); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func runVerify(rest []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("verify", stderr)
	proofPath := fs.StringP("proof", "p", "-", "proof JSON file, or \"-\" for stdin")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	proofJSON, err := readInput(*proofPath)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	cfg := config.FromFlags(fs)
	cache := artifacts.NewKeyCache()
	ok, err := verify.Run(cfg.ArtifactsRoot, cache, proofJSON)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}

	if ok {
		fmt.Fprintln(stderr, "proof is VALID")
		return 0
	}
	fmt.Fprintln(stderr, "proof is INVALID")
	return 1
}

func runHash(rest []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("hash", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	atom := fs.String("atom", "", "atom string to hash (required)")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	if *atom == "" {
		fmt.Fprintln(stderr, "error: --atom is required")
		fs.Usage()
		return 2
	}
	if !field.IsAtom(*atom) {
		fmt.Fprintln(stderr, "error: --atom is not a well-formed atom")
		return 2
	}

	h := field.HashAtom(*atom)
	b := field.EncodeBE32(&h)
	fmt.Fprintln(stdout, "0x"+hex.EncodeToString(b[:]))
	return 0
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == "" || path == "-" {
		_, err := stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
