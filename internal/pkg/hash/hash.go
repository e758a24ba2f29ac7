package hash

import (
	"crypto/subtle"
	"strings"
)

// Hash hashes secrets and verifies plaintext against stored hashes.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}

// Auto verifies against values that may be bcrypt hashes, argon2id hashes or
// plaintext, picking the scheme from the encoded prefix. New hashes use argon2id.
type Auto struct {
	bcrypt   *Bcrypt
	argon2id *Argon2id
}

// NewAuto returns an Auto hasher sharing pepper across schemes.
func NewAuto(pepper string) *Auto {
	return &Auto{
		bcrypt:   NewBcrypt(12, pepper),
		argon2id: NewArgon2id(pepper),
	}
}

// Hash returns an argon2id encoded hash of str.
func (a *Auto) Hash(str string) ([]byte, error) {
	return a.argon2id.Hash(str)
}

// Verify checks str against hashed using the scheme hashed is encoded with.
func (a *Auto) Verify(hashed, str string) bool {
	switch {
	case strings.HasPrefix(hashed, "$argon2id$"):
		return a.argon2id.Verify(hashed, str)
	case strings.HasPrefix(hashed, "$2a$"), strings.HasPrefix(hashed, "$2b$"), strings.HasPrefix(hashed, "$2y$"):
		return a.bcrypt.Verify(hashed, str)
	default:
		return hashed != "" && subtle.ConstantTimeCompare([]byte(hashed), []byte(str)) == 1
	}
}
