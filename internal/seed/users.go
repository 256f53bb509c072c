package seed

import (
	"context"
	"fmt"

	"matchfoundry/internal/store"
	"matchfoundry/pkg/types"

	"golang.org/x/crypto/bcrypt"
)

// demoPassword is shared by every seeded account.
const demoPassword = "password123"

// SeedUsers upserts the demo accounts. This file is the source of truth for
// demo data:
// - Inserts users that don't exist yet, keyed by email
// - Updates name and role for users that already exist
//
// To generate new IDs: `go run ./cmd/matchfoundry nanoid`
func SeedUsers(ctx context.Context, repo *store.UserRepository) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	// Define seed data with fixed IDs
	// compile-time safe - if the User type changes, this won't compile
	users := []types.User{
		{
			ID:       "fQ2nVhJ7xkT0b5wLcR8pYs3mD1gZaE6u",
			Name:     "Alice Founder",
			Email:    "alice@example.com",
			Password: string(hashed),
			Role:     types.UserRoleFounder,
		},
		{
			ID:       "K9tWm4cX1rB7vN2qJd5fHs8gL0pZyA3e",
			Name:     "Bob Expert",
			Email:    "bob@example.com",
			Password: string(hashed),
			Role:     types.UserRoleExpert,
		},
		{
			ID:       "Ue6sPb3hNw9kM1xT5cVr7jF2dQ0zGa4L",
			Name:     "Carla Community",
			Email:    "carla@example.com",
			Password: string(hashed),
			Role:     types.UserRoleAdmin,
		},
	}

	fmt.Println("Starting user seed...")
	fmt.Printf("  Seed file contains %d users\n", len(users))

	for _, user := range users {
		if err := repo.UpsertByEmail(ctx, &user); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", user.Email, err)
		}
		fmt.Printf("  ✓ %s (%s)\n", user.Name, user.Role)
	}

	fmt.Printf("Seeded %d users with password: %s\n", len(users), demoPassword)

	return nil
}
