package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken indicates a missing or mismatching peer token.
var ErrInvalidToken = errors.New("invalid peer token")

// TokenHasher hashes shared secrets and checks them against a stored hash.
type TokenHasher interface {
	Hash(token string) (string, error)
	Compare(hash string, token string) error
}

// BcryptHasher uses bcrypt so the shared secret never sits in configuration in clear text.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates BcryptHasher with provided cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt hash of token.
func (h *BcryptHasher) Hash(token string) (string, error) {
	encoded, err := bcrypt.GenerateFromPassword([]byte(token), h.cost)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Compare checks token against the stored hash.
func (h *BcryptHasher) Compare(hash string, token string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
}

// PeerVerifier authenticates inbound calls from the peer system.
type PeerVerifier struct {
	hash   string
	hasher TokenHasher
}

// NewPeerVerifier creates a verifier for the configured hash. An empty hash
// disables verification.
func NewPeerVerifier(hash string, hasher TokenHasher) *PeerVerifier {
	return &PeerVerifier{hash: hash, hasher: hasher}
}

// Enabled reports whether a token is required.
func (v *PeerVerifier) Enabled() bool {
	return v != nil && v.hash != ""
}

// Verify returns ErrInvalidToken unless token matches the configured hash.
func (v *PeerVerifier) Verify(token string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		return ErrInvalidToken
	}
	if err := v.hasher.Compare(v.hash, token); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidToken
		}
		return err
	}
	return nil
}
