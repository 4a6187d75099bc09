//go:build !race

package passwordless

func passwordHashCost() int {
	return bcryptCost
}
