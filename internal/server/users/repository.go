// Package users provides read-only access to the accounts table. Accounts
// are created and managed by the external credential service; this backend
// only looks owners up to address notifications.
package users

import (
	"context"

	"github.com/instashare/instashare/internal/server/models"
)

// Repository is the lookup contract for user accounts.
type Repository interface {
	// GetByID returns the user or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)
}
