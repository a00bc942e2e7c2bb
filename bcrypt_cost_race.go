//go:build race

package blog

import "golang.org/x/crypto/bcrypt"

// DefaultPasswordCost is the bcrypt cost used when none is configured
const DefaultPasswordCost = bcrypt.DefaultCost

func passwordHashCost() int {
	// Reduce cost for race-enabled builds so test suites can run with strict timeouts.
	return DefaultPasswordCost
}
