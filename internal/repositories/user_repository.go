package repositories

import (
	"context"

	"tienda/internal/models"
)

// UserRepository defines the interface for user data access.
// Reads preload the role and the addresses.
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// Create inserts the user and, when address is not nil, its first address
	// in the same transaction.
	Create(ctx context.Context, user *models.User, address *models.Address) error
	// Update overwrites the user's columns and, when address is not nil,
	// updates the default address or creates it if the user has none.
	Update(ctx context.Context, user *models.User, address *models.Address) error
	GetRole(ctx context.Context, id uint) (*models.Role, error)
}
