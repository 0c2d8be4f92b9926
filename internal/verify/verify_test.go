// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package verify

import (
	"encoding/json"
	"testing"

	"github.com/tdfol/groth16-backend/internal/artifacts"
	"github.com/tdfol/groth16-backend/internal/prove"
	"github.com/tdfol/groth16-backend/internal/setup"
	"github.com/tdfol/groth16-backend/internal/witness"
)

const testSeed = "fixed-verify-test-seed-fixed-se"

func mustSetupAndProve(t *testing.T, version uint32, in *witness.Input) (string, []byte) {
	t.Helper()
	root := t.TempDir()
	if _, err := setup.Run(root, version, []byte(testSeed)); err != nil {
		t.Fatalf("setup.Run: %v", err)
	}
	cache := artifacts.NewKeyCache()
	out, err := prove.Run(root, cache, in, []byte(testSeed))
	if err != nil {
		t.Fatalf("prove.Run: %v", err)
	}
	raw, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal proof: %v", err)
	}
	return root, raw
}

func s1Input() *witness.Input {
	return &witness.Input{
		PrivateAxioms:     []string{"P", "P -> Q"},
		Theorem:           "Q",
		IntermediateSteps: []string{"Q"},
		CircuitVersion:    2,
		RulesetID:         "TDFOL_v1",
	}
}

func TestRunS1Soundness(t *testing.T) {
	root, proofJSON := mustSetupAndProve(t, 2, s1Input())
	cache := artifacts.NewKeyCache()

	ok, err := Run(root, cache, proofJSON)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid proof to verify true")
	}
}

func TestRunS6TamperedProofRejected(t *testing.T) {
	root, proofJSON := mustSetupAndProve(t, 2, s1Input())
	cache := artifacts.NewKeyCache()

	var doc prove.ProofOutput
	if err := json.Unmarshal(proofJSON, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	var evmProof [8]string
	if err := json.Unmarshal(doc.Extra["evm_proof"], &evmProof); err != nil {
		t.Fatalf("unmarshal evm_proof: %v", err)
	}
	// Flip the last hex nibble of the first proof word.
	word := []byte(evmProof[0])
	if word[len(word)-1] == '0' {
		word[len(word)-1] = '1'
	} else {
		word[len(word)-1] = '0'
	}
	evmProof[0] = string(word)
	raw, _ := json.Marshal(evmProof)
	doc.Extra["evm_proof"] = raw

	tampered, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal tampered proof: %v", err)
	}

	ok, err := Run(root, cache, tampered)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ok {
		t.Fatalf("expected tampered proof to fail verification")
	}
}

func TestRunKeyBindingMismatch(t *testing.T) {
	root2 := t.TempDir()
	if _, err := setup.Run(root2, 2, []byte("a-completely-different-seed-abc")); err != nil {
		t.Fatalf("setup.Run (v2 different keys): %v", err)
	}

	_, proofJSON := mustSetupAndProve(t, 2, s1Input())
	cache := artifacts.NewKeyCache()

	ok, err := Run(root2, cache, proofJSON)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ok {
		t.Fatalf("expected proof bound to one key set to fail verification under a different key set")
	}
}

func TestRunMalformedSchemaVersionRejectedWithoutError(t *testing.T) {
	root, proofJSON := mustSetupAndProve(t, 2, s1Input())
	cache := artifacts.NewKeyCache()

	var doc map[string]interface{}
	if err := json.Unmarshal(proofJSON, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	doc["schema_version"] = 2
	raw, _ := json.Marshal(doc)

	ok, err := Run(root, cache, raw)
	if err != nil {
		t.Fatalf("expected no error for a structural mismatch, got: %v", err)
	}
	if ok {
		t.Fatalf("expected schema_version mismatch to verify false")
	}
}

func TestRunMissingKeysIsError(t *testing.T) {
	_, proofJSON := mustSetupAndProve(t, 2, s1Input())
	cache := artifacts.NewKeyCache()

	_, err := Run(t.TempDir(), cache, proofJSON)
	if err == nil {
		t.Fatalf("expected an error when the verifying key file does not exist")
	}
}

func TestRunGarbageJSONReturnsFalseNotError(t *testing.T) {
	cache := artifacts.NewKeyCache()
	ok, err := Run(t.TempDir(), cache, []byte("not json"))
	if err != nil {
		t.Fatalf("expected no error for unparseable proof JSON, got: %v", err)
	}
	if ok {
		t.Fatalf("expected garbage input to verify false")
	}
}
