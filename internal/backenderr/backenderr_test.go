// Copyright (C) 2025 Logical Mechanism LLC
// SPDX-License-Identifier: GPL-3.0-only

package backenderr

import (
	"errors"
	"testing"
)

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(IOError, "reading verifying key", cause)

	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is did not find wrapped cause")
	}
	if !Is(err, IOError) {
		t.Fatalf("Is(err, IOError) = false, want true")
	}
	if Is(err, InvalidHex) {
		t.Fatalf("Is(err, InvalidHex) = true, want false")
	}
}

func TestNewHasNoCause(t *testing.T) {
	err := New(InvalidInput, "empty axiom list")
	if err.Unwrap() != nil {
		t.Fatalf("New() error should not wrap a cause")
	}
	if err.Error() == "" {
		t.Fatalf("Error() should not be empty")
	}
}
