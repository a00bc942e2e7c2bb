//go:build !race

package blog

// DefaultPasswordCost is the bcrypt cost used when none is configured
const DefaultPasswordCost = 12

func passwordHashCost() int {
	return DefaultPasswordCost
}
