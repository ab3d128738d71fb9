// Package credential hashes and verifies user passwords. The store keeps
// whatever Hash returns and never looks inside it.
package credential

import (
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Verifier interface {
	Hash(plain string) (string, error)
	Verify(stored, candidate string) bool
}

const (
	SchemeBcrypt = "bcrypt"
	SchemePlain  = "plain"
)

func New(scheme string) (Verifier, error) {
	switch scheme {
	case "", SchemeBcrypt:
		return Bcrypt{Cost: bcrypt.DefaultCost}, nil
	case SchemePlain:
		return Plain{}, nil
	default:
		return nil, fmt.Errorf("credential scheme[%s] is not supported", scheme)
	}
}

// Plain stores passwords as given. Only for stores that already hold
// plaintext credentials.
type Plain struct{}

func (Plain) Hash(plain string) (string, error) {
	return plain, nil
}

func (Plain) Verify(stored, candidate string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(candidate)) == 1
}

type Bcrypt struct {
	Cost int
}

func (b Bcrypt) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), b.Cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword: %w", err)
	}
	return string(hash), nil
}

func (Bcrypt) Verify(stored, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(candidate)) == nil
}
