package main

import (
	"errors"
	"testing"
)

func TestArgErrorIsDetectableViaErrorsAs(t *testing.T) {
	err := argErrorf("--pin-sha256 is required")

	var ae *argError
	if !errors.As(err, &ae) {
		t.Fatal("expected argErrorf's result to satisfy errors.As(*argError)")
	}
	if ae.Error() != "--pin-sha256 is required" {
		t.Fatalf("unexpected message: %q", ae.Error())
	}
}

func TestNonArgErrorIsNotDetected(t *testing.T) {
	err := errors.New("connection refused")

	var ae *argError
	if errors.As(err, &ae) {
		t.Fatal("a plain error must not satisfy errors.As(*argError)")
	}
}
