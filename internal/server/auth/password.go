package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used in production.
const DefaultHashCost = 10

// Hasher performs one-way password hashing and verification using bcrypt.
// Each call salts independently; the same plaintext never hashes twice to the
// same digest.
type Hasher struct {
	cost int
}

// NewHasher returns a Hasher with the given bcrypt cost. A cost below
// bcrypt.MinCost falls back to DefaultHashCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost {
		cost = DefaultHashCost
	}
	return &Hasher{cost: cost}
}

// Hash returns the bcrypt digest of the plaintext password.
func (h *Hasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Check reports whether the plaintext password matches the stored digest.
func (h *Hasher) Check(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
