// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package artifacts manages the on-disk key/manifest layout for a circuit
// version, and an optional in-memory cache of deserialized keys.
package artifacts

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/consensys/gnark-crypto/ecc"
	groth16 "github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/rs/zerolog/log"

	"github.com/tdfol/groth16-backend/internal/backenderr"
)

// curveID is fixed: this backend is BN254-only, for EVM pairing precompile
// compatibility.
const curveID = ecc.BN254

// ProvingKeyFile and VerifyingKeyFile are the canonical per-version key file
// names.
const (
	ProvingKeyFile   = "proving_key.bin"
	VerifyingKeyFile = "verifying_key.bin"
	ManifestFile     = "manifest.json"
)

// Manifest is the setup manifest persisted alongside the key files.
type Manifest struct {
	SchemaVersion        int    `json:"schema_version"`
	Version              uint32 `json:"version"`
	ProvingKeyPath       string `json:"proving_key_path"`
	VerifyingKeyPath     string `json:"verifying_key_path"`
	ProvingKeySHA256Hex  string `json:"proving_key_sha256_hex"`
	VerifyingKeySHA256Hex string `json:"verifying_key_sha256_hex"`
	VKHashHex            string `json:"vk_hash_hex"`
}

// VersionDir returns the per-version directory under root.
func VersionDir(root string, version uint32) string {
	return filepath.Join(root, fmt.Sprintf("v%d", version))
}

// Paths returns the standard file paths for a circuit version under root.
func Paths(root string, version uint32) (dir, pkPath, vkPath, manifestPath string) {
	dir = VersionDir(root, version)
	return dir, filepath.Join(dir, ProvingKeyFile), filepath.Join(dir, VerifyingKeyFile), filepath.Join(dir, ManifestFile)
}

// SHA256File computes the SHA-256 hash of a file and returns it as a
// lower-case hex string.
func SHA256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SaveManifest writes m as single-line JSON to path.
func SaveManifest(path string, m *Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest %s: %w", path, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest %s: %w", path, err)
	}
	return nil
}

// LoadManifest reads a manifest from path.
func LoadManifest(path string) (*Manifest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	m := new(Manifest)
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	return m, nil
}

// SaveKeys serializes pk and vk in canonical uncompressed form to dir,
// writes the manifest, and returns it.
func SaveKeys(root string, version uint32, pk groth16.ProvingKey, vk groth16.VerifyingKey) (*Manifest, error) {
	dir, pkPath, vkPath, manifestPath := Paths(root, version)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}

	if err := writeKey(pkPath, pk); err != nil {
		return nil, err
	}
	if err := writeKey(vkPath, vk); err != nil {
		return nil, err
	}

	pkHash, err := SHA256File(pkPath)
	if err != nil {
		return nil, err
	}
	vkHash, err := SHA256File(vkPath)
	if err != nil {
		return nil, err
	}

	m := &Manifest{
		SchemaVersion:         1,
		Version:               version,
		ProvingKeyPath:        pkPath,
		VerifyingKeyPath:      vkPath,
		ProvingKeySHA256Hex:   pkHash,
		VerifyingKeySHA256Hex: vkHash,
		VKHashHex:             vkHash,
	}
	if err := SaveManifest(manifestPath, m); err != nil {
		return nil, err
	}

	log.Info().Uint32("version", version).Str("vk_hash", vkHash).Msg("setup keys written")
	return m, nil
}

// writerTo is satisfied by gnark's ProvingKey/VerifyingKey types; WriteRawTo
// writes points without compression.
type writerTo interface {
	WriteRawTo(w io.Writer) (int64, error)
}

func writeKey(path string, k writerTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := k.WriteRawTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// keyPair holds a deserialized proving/verifying key pair for one version.
type keyPair struct {
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// KeyCache is a process-local, version-keyed cache of deserialized Groth16
// keys. It is safe for concurrent readers; entries are immutable once
// inserted.
type KeyCache struct {
	mu      sync.RWMutex
	entries map[uint32]*keyPair
}

// NewKeyCache returns an empty cache.
func NewKeyCache() *KeyCache {
	return &KeyCache{entries: make(map[uint32]*keyPair)}
}

// LoadProvingKey returns the proving key for version, reading it from disk
// and populating the cache on first access.
func (c *KeyCache) LoadProvingKey(root string, version uint32) (groth16.ProvingKey, error) {
	pair, err := c.load(root, version)
	if err != nil {
		return nil, err
	}
	return pair.pk, nil
}

// LoadVerifyingKey returns the verifying key for version, reading it from
// disk and populating the cache on first access. The first access reads the
// version's proving key file as well, and fails if either file is missing or
// unreadable.
func (c *KeyCache) LoadVerifyingKey(root string, version uint32) (groth16.VerifyingKey, error) {
	pair, err := c.load(root, version)
	if err != nil {
		return nil, err
	}
	return pair.vk, nil
}

func (c *KeyCache) load(root string, version uint32) (*keyPair, error) {
	c.mu.RLock()
	if p, ok := c.entries[version]; ok {
		c.mu.RUnlock()
		return p, nil
	}
	c.mu.RUnlock()

	_, pkPath, vkPath, _ := Paths(root, version)

	pk := groth16.NewProvingKey(curveID)
	if err := readKey(pkPath, pk); err != nil {
		return nil, backenderr.Wrap(backenderr.IOError, "loading proving key for version "+fmt.Sprint(version), err)
	}

	vk := groth16.NewVerifyingKey(curveID)
	if err := readKey(vkPath, vk); err != nil {
		return nil, backenderr.Wrap(backenderr.IOError, "loading verifying key for version "+fmt.Sprint(version), err)
	}

	pair := &keyPair{pk: pk, vk: vk}

	c.mu.Lock()
	if existing, ok := c.entries[version]; ok {
		c.mu.Unlock()
		return existing, nil
	}
	c.entries[version] = pair
	c.mu.Unlock()

	return pair, nil
}

// readerFrom is satisfied by gnark's ProvingKey/VerifyingKey types.
type readerFrom interface {
	ReadFrom(r io.Reader) (int64, error)
}

func readKey(path string, k readerFrom) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.ReadFrom(f)
	return err
}

// constraintSystemHash hashes a compiled constraint system; kept for a
// future on-disk cache keyed by circuit content rather than version number.
func constraintSystemHash(ccs constraint.ConstraintSystem) (string, error) {
	h := sha256.New()
	if _, err := ccs.WriteTo(h); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
