package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is a one-way hash with a verify operation.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Verify returns nil only when password matches hash.
	Verify(hash, password string) error
}

// BcryptHasher hashes with bcrypt at a fixed cost.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher falls back to bcrypt.DefaultCost for out-of-range costs.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash creates a bcrypt hash from the given plaintext password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	// the cost determines the computational complexity of the hashing process
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// Verify checks if the provided plaintext password matches the stored bcrypt hash.
func (h *BcryptHasher) Verify(hashedPassword, providedPassword string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(providedPassword))
}
