// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/and161185/mybook/internal/model"
	"github.com/gofrs/uuid/v5"
)

// EntitlementRepository provides append-only access to purchase records.
type EntitlementRepository interface {
	// Save assigns an ID and inserts e; it returns only after the write is committed.
	Save(ctx context.Context, e *model.Entitlement) error
	// FindByUser returns all entitlements of a user in insertion order.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Entitlement, error)
	// FindByUserAndBook returns the earliest entitlement for (user, book) or errs.ErrNotFound.
	FindByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Entitlement, error)
}
