// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package artifacts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tdfol/groth16-backend/internal/backenderr"
)

func TestPaths(t *testing.T) {
	dir, pk, vk, manifest := Paths("/artifacts", 2)
	if dir != filepath.Join("/artifacts", "v2") {
		t.Fatalf("dir = %q", dir)
	}
	if pk != filepath.Join(dir, ProvingKeyFile) {
		t.Fatalf("pk = %q", pk)
	}
	if vk != filepath.Join(dir, VerifyingKeyFile) {
		t.Fatalf("vk = %q", vk)
	}
	if manifest != filepath.Join(dir, ManifestFile) {
		t.Fatalf("manifest = %q", manifest)
	}
}

func TestSHA256FileKnownVector(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.bin")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	got, err := SHA256File(path)
	if err != nil {
		t.Fatalf("SHA256File: %v", err)
	}
	// SHA-256 of the empty string.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Fatalf("SHA256File(empty) = %s, want %s", got, want)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFile)

	m := &Manifest{
		SchemaVersion:         1,
		Version:               2,
		ProvingKeyPath:        "v2/proving_key.bin",
		VerifyingKeyPath:      "v2/verifying_key.bin",
		ProvingKeySHA256Hex:   "aa",
		VerifyingKeySHA256Hex: "bb",
		VKHashHex:             "bb",
	}
	if err := SaveManifest(path, m); err != nil {
		t.Fatalf("SaveManifest: %v", err)
	}

	got, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if *got != *m {
		t.Fatalf("LoadManifest = %+v, want %+v", got, m)
	}
}

func TestKeyCacheMissingFileIsIOError(t *testing.T) {
	dir := t.TempDir()
	cache := NewKeyCache()
	_, err := cache.LoadProvingKey(dir, 7)
	if err == nil {
		t.Fatalf("expected error loading missing proving key")
	}
	if !backenderr.Is(err, backenderr.IOError) {
		t.Fatalf("expected IOError, got %v", err)
	}
}
