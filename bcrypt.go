package blog

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements PasswordHasher
type BcryptHasher struct {
	cost int
}

var _ PasswordHasher = BcryptHasher{}

// NewBcryptHasher returns a hasher with the given cost. Zero means the
// build default, out of range values are clamped.
func NewBcryptHasher(cost int) BcryptHasher {
	switch {
	case cost == 0:
		cost = passwordHashCost()
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return BcryptHasher{cost: cost}
}

// Cost returns the bcrypt work factor
func (b BcryptHasher) Cost() int {
	return b.cost
}

// Hash will generate a salted password hash
func (b BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	cost := b.cost
	if cost == 0 {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// Verify reports whether password matches hash. A malformed hash is a mismatch.
func (b BcryptHasher) Verify(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
