// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package seed implements the deterministic-randomness seam used by setup
// and proving. gnark's groth16.Setup and groth16.Prove read toxic waste and
// blinding factors exclusively from crypto/rand.Reader and expose no
// pluggable-randomness option, so determinism is achieved the same way
// gnark's own test suite achieves it: temporarily substituting
// crypto/rand.Reader with a seeded keystream for the duration of the call,
// then restoring it.
package seed

import (
	"crypto/rand"
	"crypto/sha256"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// DeterministicEnvVar is the environment variable that forces deterministic
// mode when no caller-supplied seed is given.
const DeterministicEnvVar = "GROTH16_BACKEND_DETERMINISTIC"

var truthyValues = map[string]bool{
	"1":    true,
	"true": true,
	"TRUE": true,
	"yes":  true,
	"YES":  true,
}

// EnvDeterministic reports whether GROTH16_BACKEND_DETERMINISTIC is set to a
// truthy value per the {1, true, TRUE, yes, YES} set.
func EnvDeterministic() bool {
	v, ok := os.LookupEnv(DeterministicEnvVar)
	if !ok {
		return false
	}
	return truthyValues[strings.TrimSpace(v)]
}

// mu serializes every installation of a deterministic crypto/rand.Reader.
// Determinism mode mutates global process state, so two deterministic
// setup/prove calls cannot safely run concurrently with each other; holding
// mu from installation until restore makes each such call wait for the
// previous one to finish.
var mu sync.Mutex

// reader is an io.Reader producing a chacha20 keystream seeded from a fixed
// 32-byte key with an all-zero nonce. It never reuses key material across
// processes for anything other than intentionally-reproducible test/setup
// randomness.
type reader struct {
	cipher *chacha20.Cipher
}

func newReader(key [32]byte) (*reader, error) {
	c, err := chacha20.NewUnauthenticatedCipher(key[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		return nil, err
	}
	return &reader{cipher: c}, nil
}

func (r *reader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	r.cipher.XORKeyStream(p, p)
	return len(p), nil
}

// deriveKey expands an arbitrary-length caller seed into a 32-byte chacha20
// key via SHA-256; a 32-byte seed is used as the key directly. A nil/empty
// seed derives the default all-zero-seed key, used when determinism is
// requested only via the environment variable.
func deriveKey(callerSeed []byte) [32]byte {
	if len(callerSeed) == 0 {
		return [32]byte{}
	}
	if len(callerSeed) == 32 {
		var k [32]byte
		copy(k[:], callerSeed)
		return k
	}
	return sha256.Sum256(callerSeed)
}

// Resolve reports whether the call should run deterministically, given an
// optional caller-supplied seed. Determinism triggers either from a
// non-empty caller seed or from the environment variable.
func Resolve(callerSeed []byte) bool {
	return len(callerSeed) > 0 || EnvDeterministic()
}

// WithDeterministicRandomness installs a seeded crypto/rand.Reader for the
// duration of the returned restore function's caller, and returns a
// function that restores the previous reader. callerSeed may be nil, in
// which case the default all-zero seed is used (the env-var-only path).
// Callers MUST defer the returned restore function.
func WithDeterministicRandomness(callerSeed []byte) (restore func(), err error) {
	mu.Lock()
	key := deriveKey(callerSeed)
	r, err := newReader(key)
	if err != nil {
		mu.Unlock()
		return nil, err
	}

	previous := rand.Reader
	rand.Reader = r
	return func() {
		rand.Reader = previous
		mu.Unlock()
	}, nil
}

var _ io.Reader = (*reader)(nil)
