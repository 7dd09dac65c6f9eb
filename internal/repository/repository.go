// Package repository defines data access interfaces for the service layer.
package repository

import (
	"context"

	"github.com/osdatum/backend/internal/domain"
)

// UserRepository provides access to user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateTier(ctx context.Context, id, tier string) error
}

// PurchaseRepository provides access to the grid purchase ledger.
type PurchaseRepository interface {
	// Create records a purchase if it does not already exist. It returns
	// domain conflict semantics through the bool: true when a new row was
	// written, false when the grid was already owned.
	Create(ctx context.Context, userID, gridID string) (created bool, err error)
	ListGridIDs(ctx context.Context, userID string) ([]string, error)
}

// ApplicationRepository stores public subscription applications.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.SubscriptionApplication) error
}
