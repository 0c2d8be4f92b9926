// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package config resolves the two process-wide settings the core reads:
// the artifacts root directory and the determinism flag. It uses
// spf13/viper (and, for the CLI shell, spf13/pflag) the same way
// vocdoni-davinci-node binds its own env-driven configuration, so a single
// source of truth serves both "GROTH16_BACKEND_ARTIFACTS_ROOT" style env
// vars and equivalent CLI flags.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ArtifactsRootEnvVar names the environment variable overriding the
	// default artifacts root.
	ArtifactsRootEnvVar = "GROTH16_BACKEND_ARTIFACTS_ROOT"
	// DeterministicEnvVar names the environment variable forcing
	// deterministic mode.
	DeterministicEnvVar = "GROTH16_BACKEND_DETERMINISTIC"

	// DefaultArtifactsRoot is the build-time default artifacts directory.
	DefaultArtifactsRoot = "./artifacts"
)

// newViper builds a viper instance bound to the backend's two env vars.
// Each call is independent so tests can exercise different environments
// without cross-contaminating viper's process-wide default instance.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("")
	v.SetDefault("artifacts_root", DefaultArtifactsRoot)
	v.SetDefault("deterministic", false)
	_ = v.BindEnv("artifacts_root", ArtifactsRootEnvVar)
	_ = v.BindEnv("deterministic", DeterministicEnvVar)
	return v
}

// ArtifactsRoot resolves GROTH16_BACKEND_ARTIFACTS_ROOT, falling back to
// DefaultArtifactsRoot. No CLI flags are involved on this path; the CLI
// resolves the root through FromFlags instead, and internal/setup,
// internal/prove and internal/verify take the root as a parameter.
func ArtifactsRoot() string {
	return newViper().GetString("artifacts_root")
}

// truthyValues enumerates the exact set GROTH16_BACKEND_DETERMINISTIC is
// compared against. strconv.ParseBool (which viper's GetBool delegates to
// via spf13/cast) does not recognize "yes"/"YES", so this set is checked
// directly rather than through GetBool.
var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"TRUE": true,
	"yes":  true,
	"YES":  true,
}

// Deterministic resolves GROTH16_BACKEND_DETERMINISTIC against the
// {1, true, TRUE, yes, YES} truthy set.
func Deterministic() bool {
	return truthyValues[strings.TrimSpace(newViper().GetString("deterministic"))]
}

// Config is the resolved configuration consumed by the CLI shell.
type Config struct {
	ArtifactsRoot string
	Deterministic bool
}

// FromFlags resolves configuration from a pflag.FlagSet (expected to carry
// --artifacts-root and --deterministic, both optional) layered over the
// environment and the built-in defaults. Flags take precedence when set.
func FromFlags(fs *pflag.FlagSet) *Config {
	v := newViper()
	if fs != nil {
		_ = v.BindPFlag("artifacts_root", fs.Lookup("artifacts-root"))
		_ = v.BindPFlag("deterministic", fs.Lookup("deterministic"))
	}
	return &Config{
		ArtifactsRoot: strings.TrimRight(v.GetString("artifacts_root"), "/"),
		Deterministic: truthyValues[strings.TrimSpace(v.GetString("deterministic"))],
	}
}
