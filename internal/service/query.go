package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/model"
	"github.com/and161185/mybook/internal/repository"
)

// QueryService answers entitlement questions for a caller.
type QueryService interface {
	// History lists all purchases of a user; empty when none.
	History(ctx context.Context, userID uuid.UUID) ([]model.Entitlement, error)
	// IsPurchased reports whether the user owns the book.
	IsPurchased(ctx context.Context, userID, bookID uuid.UUID) (bool, error)
	// Find returns the user's entitlement for the book or errs.ErrForbidden.
	Find(ctx context.Context, userID, bookID uuid.UUID) (*model.Entitlement, error)
}

type QueryServiceImpl struct {
	repo repository.EntitlementRepository
}

// NewQueryService constructs QueryService.
func NewQueryService(repo repository.EntitlementRepository) *QueryServiceImpl {
	return &QueryServiceImpl{repo: repo}
}

// History delegates to the store.
func (s *QueryServiceImpl) History(ctx context.Context, userID uuid.UUID) ([]model.Entitlement, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	out, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, storageErr(err)
	}
	if out == nil {
		out = []model.Entitlement{}
	}
	return out, nil
}

// IsPurchased is true iff an entitlement matches both ids.
func (s *QueryServiceImpl) IsPurchased(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	if userID == uuid.Nil {
		return false, errs.ErrUnauthenticated
	}
	if bookID == uuid.Nil {
		return false, nil
	}
	_, err := s.repo.FindByUserAndBook(ctx, userID, bookID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errs.ErrNotFound):
		return false, nil
	default:
		return false, storageErr(err)
	}
}

// Find resolves the entitlement used to authorize reading.
func (s *QueryServiceImpl) Find(ctx context.Context, userID, bookID uuid.UUID) (*model.Entitlement, error) {
	if userID == uuid.Nil {
		return nil, errs.ErrUnauthenticated
	}
	e, err := s.repo.FindByUserAndBook(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("book %s not purchased: %w", bookID, errs.ErrForbidden)
		}
		return nil, storageErr(err)
	}
	return e, nil
}
