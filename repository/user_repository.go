// Package repository is the database access layer.
//
// Services never write SQL; they call these interfaces. Each interface has a
// SQLite and a PostgreSQL implementation, and tests can substitute a fake.
//
// Error contract for every implementation:
//   - missing row: pkg.ErrNotFound
//   - UNIQUE violation: pkg.ErrConflict (the storage constraint is the source
//     of truth for uniqueness, whatever the caller checked beforehand)
//   - anything else: pkg.ErrStorage wrapping the driver error
package repository

import (
	"context"

	"github.com/akinalp/shopapi/models"
)

// UserRepository stores users.
type UserRepository interface {
	// Create inserts user. user.ID must be set; CreatedAt is filled in.
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Update writes name, email, username and password hash of user.ID.
	Update(ctx context.Context, user *models.User) error
}
