package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used in production. Tests inject
// bcrypt.MinCost to avoid paying ~250ms per hash.
const DefaultHashCost = 12

// maxPasswordLen guards against bcrypt's silent truncation of inputs longer
// than 72 bytes.
const maxPasswordLen = 72

// PasswordHasher hashes and verifies passwords with bcrypt. The cost is a
// struct field so it can be lowered in tests.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher with the given bcrypt cost; values
// outside the bcrypt range fall back to DefaultHashCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the salted bcrypt digest of plaintext. The salt is embedded in
// the digest, so the same plaintext yields a different digest on every call.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if len(plaintext) > maxPasswordLen {
		return "", fmt.Errorf("password must be %d bytes or fewer", maxPasswordLen)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether plaintext matches the stored digest. A mismatch is
// not an error; the comparison inside bcrypt is constant time.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
