// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package evmproof encodes and decodes Groth16 proofs and public inputs in
// the eight/four-word EVM pairing-precompile layout: proof words ordered
// [A.x, A.y, B.x.c0, B.x.c1, B.y.c0, B.y.c1, C.x, C.y], each a 32-byte
// big-endian field element rendered as 0x-prefixed hex.
package evmproof

import (
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fp"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	groth16 "github.com/consensys/gnark/backend/groth16"
	groth16bn254 "github.com/consensys/gnark/backend/groth16/bn254"

	"github.com/tdfol/groth16-backend/internal/backenderr"
)

// NumProofWords is the fixed length of the EVM-encoded proof.
const NumProofWords = 8

// NumPublicWords is the fixed length of the canonical public-input vector.
const NumPublicWords = 4

// EncodeProof extracts the eight EVM words from a BN254 Groth16 proof.
func EncodeProof(proof groth16.Proof) ([NumProofWords]string, error) {
	var out [NumProofWords]string

	p, ok := proof.(*groth16bn254.Proof)
	if !ok {
		return out, fmt.Errorf("unexpected proof type (need *groth16/bn254.Proof): %T", proof)
	}

	out[0] = Encode0x(p.Ar.X.Bytes())
	out[1] = Encode0x(p.Ar.Y.Bytes())
	out[2] = Encode0x(p.Bs.X.A0.Bytes())
	out[3] = Encode0x(p.Bs.X.A1.Bytes())
	out[4] = Encode0x(p.Bs.Y.A0.Bytes())
	out[5] = Encode0x(p.Bs.Y.A1.Bytes())
	out[6] = Encode0x(p.Krs.X.Bytes())
	out[7] = Encode0x(p.Krs.Y.Bytes())
	return out, nil
}

// DecodeProof parses eight EVM-word hex strings back into a BN254 Groth16
// proof. Malformed words are reported via the returned error; callers in
// the verifier path must treat any error here as "invalid proof" (false),
// not propagate it.
func DecodeProof(words [NumProofWords]string) (groth16.Proof, error) {
	var elems [NumProofWords]fp.Element
	for i, w := range words {
		b, err := Decode0x(w)
		if err != nil {
			return nil, err
		}
		elems[i].SetBytes(b[:])
	}

	p := &groth16bn254.Proof{}
	p.Ar = bn254.G1Affine{X: elems[0], Y: elems[1]}
	p.Bs = bn254.G2Affine{
		X: bn254.E2{A0: elems[2], A1: elems[3]},
		Y: bn254.E2{A0: elems[4], A1: elems[5]},
	}
	p.Krs = bn254.G1Affine{X: elems[6], Y: elems[7]}

	if !p.Ar.IsOnCurve() || !p.Bs.IsOnCurve() || !p.Krs.IsOnCurve() {
		return nil, backenderr.New(backenderr.InvalidInput, "decoded proof point is not on curve")
	}

	return p, nil
}

// EncodePublicInputs renders four Fr public inputs as canonical hex words.
func EncodePublicInputs(inputs [NumPublicWords]fr.Element) [NumPublicWords]string {
	var out [NumPublicWords]string
	for i, x := range inputs {
		out[i] = Encode0x(x.Bytes())
	}
	return out
}

// DecodePublicInputs parses four hex words into Fr elements.
func DecodePublicInputs(words [NumPublicWords]string) ([NumPublicWords]fr.Element, error) {
	var out [NumPublicWords]fr.Element
	for i, w := range words {
		b, err := Decode0x(w)
		if err != nil {
			return out, err
		}
		out[i].SetBytes(b[:])
	}
	return out, nil
}
