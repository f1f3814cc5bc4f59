package repositories

import (
	"context"

	"github.com/johnquangdev/meeting-notes/internal/domain/entities"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Upsert inserts the user or refreshes the name of the row with the same
	// email, returning the stored row
	Upsert(ctx context.Context, user *entities.User) (*entities.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*entities.User, error)
}
