// Package interfaces defines service contracts for RoastMe
package interfaces

import (
	"context"

	"github.com/bobmcallan/roastme/internal/models"
)

// StorageManager owns the database handle and hands out the stores built on it.
type StorageManager interface {
	UserStore() UserStore
	Close() error
}

// UserStore persists one User document per identity reference.
// Lookups for a missing identity return an error wrapping models.ErrRecordNotFound.
type UserStore interface {
	GetUser(ctx context.Context, identityRef string) (*models.User, error)

	// CreateUser inserts a new record; it fails if the identity or email already exists.
	CreateUser(ctx context.Context, user *models.User) error

	// DecrementTokens subtracts one token unconditionally and returns the new balance.
	DecrementTokens(ctx context.Context, identityRef string) (int, error)

	// SetHarshnessLevel updates the single preference field of an existing record.
	SetHarshnessLevel(ctx context.Context, identityRef string, level models.HarshnessLevel) (*models.User, error)

	Close() error
}
