// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

// Package backenderr defines the typed error kinds surfaced by the prover,
// verifier, and setup. It deliberately stays on the standard library: an
// Error carries its cause in a field exposed through Unwrap, so errors.Is and
// errors.As work without an error-wrapping library.
package backenderr

import (
	"errors"
	"fmt"
)

// Kind categorizes a backend failure.
type Kind string

const (
	// InvalidJSON means the witness or proof envelope failed to parse.
	InvalidJSON Kind = "INVALID_JSON"
	// InvalidHex means a hex field has the wrong length or non-hex characters.
	InvalidHex Kind = "INVALID_HEX"
	// IOError means a key file was missing or unreadable.
	IOError Kind = "IO_ERROR"
	// Internal means a cryptographic library failure or unexpected arithmetic error.
	Internal Kind = "INTERNAL"
	// InvalidInput means a witness-semantic failure: empty axioms, bad atom
	// format, commitment mismatch, theorem hash mismatch, too many
	// axioms/steps, unsupported ruleset, or unsupported version.
	InvalidInput Kind = "INVALID_INPUT"
)

// Error is the typed error returned by the core. It wraps an underlying
// cause (if any) so errors.Is / errors.As keep working across the boundary.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error with no wrapped cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Wrap builds an Error wrapping cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Kind == kind
	}
	return false
}
