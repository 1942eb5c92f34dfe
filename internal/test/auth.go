package test

import (
	"golang.org/x/crypto/bcrypt"

	pkgAuth "github.com/Zaqui712/B-FO/internal/pkg/auth"
)

// HasherStub provides deterministic token hashing for tests.
type HasherStub struct {
	HashFn    func(string) (string, error)
	CompareFn func(string, string) error
}

// Hash returns a predictable hash for the supplied token.
func (h HasherStub) Hash(token string) (string, error) {
	if h.HashFn != nil {
		return h.HashFn(token)
	}
	return "hash:" + token, nil
}

// Compare validates token against the stored hash and reports a mismatch
// the way bcrypt does.
func (h HasherStub) Compare(hash string, token string) error {
	if h.CompareFn != nil {
		return h.CompareFn(hash, token)
	}
	if hash != "hash:"+token {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return nil
}

var _ pkgAuth.TokenHasher = HasherStub{}
