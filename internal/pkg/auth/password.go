package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/studentdir/internal/pkg/apperrors"
)

// DefaultBcryptCost is the hashing cost used when none is configured
const DefaultBcryptCost = 12

// PasswordHasher stores and verifies student passwords
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a bcrypt hasher. Costs outside bcrypt's range fall back to DefaultBcryptCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns a salted bcrypt digest of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", apperrors.NewHashingError("hash password", err)
	}
	return string(digest), nil
}

// Verify reports whether password matches digest.
// A mismatch is (false, nil); a malformed digest is (false, hashing error).
func (h *PasswordHasher) Verify(password, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, apperrors.NewHashingError("verify password", err)
	}
}
