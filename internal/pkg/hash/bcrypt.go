package hash

import (
	"golang.org/x/crypto/bcrypt"
)

// Bcrypt verifies bcrypt allow-list entries. The pepper is appended to the
// plaintext before hashing.
type Bcrypt struct {
	cost   int
	pepper string
}

// NewBcrypt clamps cost into bcrypt's accepted range, using the default cost
// below the minimum.
func NewBcrypt(cost int, pepper string) *Bcrypt {
	switch {
	case cost < bcrypt.MinCost:
		cost = bcrypt.DefaultCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &Bcrypt{cost: cost, pepper: pepper}
}

func (h *Bcrypt) Hash(plaintext string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(plaintext+h.pepper), h.cost)
}

func (h *Bcrypt) Verify(hashed, plaintext string) bool {
	if hashed == "" || plaintext == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext+h.pepper)) == nil
}
