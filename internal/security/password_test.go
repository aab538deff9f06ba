package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("hash must not equal plaintext")
	}

	if err := h.Check(hash, "correct horse"); err != nil {
		t.Fatalf("expected match, got %v", err)
	}

	err = h.Check(hash, "wrong")
	if !IsMismatch(err) {
		t.Fatalf("expected mismatch, got %v", err)
	}
}

func TestHasherMalformedHashIsNotMismatch(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	err := h.Check("not-a-hash", "pw")
	if err == nil || IsMismatch(err) {
		t.Fatalf("expected a non-mismatch error, got %v", err)
	}
}

func TestNewHasherClampsCost(t *testing.T) {
	if got := NewHasher(99).cost; got != bcrypt.DefaultCost {
		t.Fatalf("cost = %d, want default", got)
	}
}
