package auth

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestNewBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(0)
	if hasher.cost != bcrypt.DefaultCost {
		t.Fatalf("unexpected cost: %d", hasher.cost)
	}
}

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("shared-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := hasher.Compare(hash, "shared-secret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := hasher.Compare(hash, "wrong"); err == nil {
		t.Fatal("expected compare error for wrong token")
	}
}

func TestBcryptHasher_HashError(t *testing.T) {
	hasher := &BcryptHasher{cost: bcrypt.MaxCost + 1}
	if _, err := hasher.Hash("token"); err == nil {
		t.Fatal("expected hash error for invalid cost")
	}
}

func TestPeerVerifier(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("shared-secret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	v := NewPeerVerifier(hash, hasher)

	if !v.Enabled() {
		t.Fatal("expected verifier enabled")
	}
	if err := v.Verify("shared-secret"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Verify("wrong"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if err := v.Verify(""); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestPeerVerifierMalformedHash(t *testing.T) {
	v := NewPeerVerifier("not-a-bcrypt-hash", NewBcryptHasher(bcrypt.MinCost))
	err := v.Verify("token")
	if err == nil || errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPeerVerifierDisabled(t *testing.T) {
	var nilVerifier *PeerVerifier
	for _, v := range []*PeerVerifier{nilVerifier, NewPeerVerifier("", NewBcryptHasher(0))} {
		if v.Enabled() {
			t.Fatal("expected verifier disabled")
		}
		if err := v.Verify(""); err != nil {
			t.Fatalf("disabled verifier must accept, got %v", err)
		}
	}
}
