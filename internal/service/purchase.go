// Package service contains application services for purchases, entitlement queries and reading.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/metrics"
	"github.com/and161185/mybook/internal/model"
	"github.com/and161185/mybook/internal/repository"
)

const maxImageURLLen = 2000

// DuplicatePolicy decides what happens when a user buys a book they already own.
type DuplicatePolicy string

const (
	// DuplicateAllow records every purchase as a new entitlement.
	DuplicateAllow DuplicatePolicy = "allow"
	// DuplicateReject refuses a repeated purchase with errs.ErrAlreadyPurchased.
	DuplicateReject DuplicatePolicy = "reject"
)

// ParseDuplicatePolicy parses "allow" or "reject" (case-insensitive).
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case DuplicateAllow:
		return DuplicateAllow, nil
	case DuplicateReject:
		return DuplicateReject, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

// EventPublisher emits purchase events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.PurchaseEvent) error
}

// PurchaseService records book purchases.
type PurchaseService interface {
	// Purchase charges the caller, stores an entitlement and announces it.
	Purchase(ctx context.Context, who model.Identity, req model.PurchaseRequest) (model.PurchaseReceipt, error)
}

type PurchaseServiceImpl struct {
	repo    repository.EntitlementRepository
	events  EventPublisher
	policy  DuplicatePolicy
	log     *zap.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() (uuid.UUID, error)
}

// NewPurchaseService constructs PurchaseService. An empty policy means DuplicateAllow.
func NewPurchaseService(
	repo repository.EntitlementRepository,
	events EventPublisher,
	policy DuplicatePolicy,
	log *zap.Logger,
	m *metrics.Metrics,
) *PurchaseServiceImpl {
	if policy == "" {
		policy = DuplicateAllow
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PurchaseServiceImpl{
		repo:    repo,
		events:  events,
		policy:  policy,
		log:     log,
		metrics: m,
		now:     time.Now,
		newID:   uuid.NewV4,
	}
}

// Purchase validates the request, computes the charge and saves the entitlement.
// The purchase event is published only after Save has committed; a publish failure is
// logged and does not fail the purchase.
func (s *PurchaseServiceImpl) Purchase(
	ctx context.Context, who model.Identity, req model.PurchaseRequest,
) (model.PurchaseReceipt, error) {
	if who.UserID == uuid.Nil {
		return model.PurchaseReceipt{}, errs.ErrUnauthenticated
	}
	if err := validatePurchase(req); err != nil {
		return model.PurchaseReceipt{}, err
	}
	point, err := chargedPoint(who.Subscribed, req.Point)
	if err != nil {
		return model.PurchaseReceipt{}, err
	}

	if s.policy == DuplicateReject {
		_, err := s.repo.FindByUserAndBook(ctx, who.UserID, req.BookID)
		switch {
		case err == nil:
			return model.PurchaseReceipt{}, fmt.Errorf("book %s: %w", req.BookID, errs.ErrAlreadyPurchased)
		case !errors.Is(err, errs.ErrNotFound):
			return model.PurchaseReceipt{}, storageErr(err)
		}
	}

	e := model.Entitlement{
		UserID:     who.UserID,
		BookID:     req.BookID,
		Title:      req.Title,
		AuthorName: req.AuthorName,
		Category:   req.Category,
		ImageURL:   req.ImageURL,
		Point:      point,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.Save(ctx, &e); err != nil {
		return model.PurchaseReceipt{}, storageErr(err)
	}
	s.metrics.PurchaseRecorded(who.Subscribed, point)

	s.publishCommitted(ctx, e)

	return model.PurchaseReceipt{
		Message:    receiptMessage(who.Subscribed, point),
		Subscribed: who.Subscribed,
		BookID:     e.BookID,
		Point:      e.Point,
		Title:      e.Title,
		AuthorName: e.AuthorName,
		Category:   e.Category,
		ImageURL:   e.ImageURL,
	}, nil
}

// publishCommitted emits the event for an already committed entitlement.
// The row exists regardless of the outcome, so the caller's cancellation is not propagated.
func (s *PurchaseServiceImpl) publishCommitted(ctx context.Context, e model.Entitlement) {
	if s.events == nil {
		return
	}
	evID, err := s.newID()
	if err != nil {
		s.log.Error("event id", zap.Error(err), zap.String("entitlement_id", e.ID.String()))
		s.metrics.EventPublishFailed()
		return
	}
	ev := model.NewPurchaseEvent(evID, e, s.now().UTC())
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Error("publish purchase event",
			zap.Error(err),
			zap.String("event_id", evID.String()),
			zap.String("entitlement_id", e.ID.String()),
		)
		s.metrics.EventPublishFailed()
	}
}

func validatePurchase(req model.PurchaseRequest) error {
	switch {
	case req.BookID == uuid.Nil:
		return fmt.Errorf("validation: empty book id: %w", errs.ErrInvalidArgument)
	case strings.TrimSpace(req.Title) == "":
		return fmt.Errorf("validation: empty title: %w", errs.ErrInvalidArgument)
	case strings.TrimSpace(req.AuthorName) == "":
		return fmt.Errorf("validation: empty author name: %w", errs.ErrInvalidArgument)
	case strings.TrimSpace(req.Category) == "":
		return fmt.Errorf("validation: empty category: %w", errs.ErrInvalidArgument)
	case strings.TrimSpace(req.ImageURL) == "":
		return fmt.Errorf("validation: empty image url: %w", errs.ErrInvalidArgument)
	case len(req.ImageURL) > maxImageURLLen:
		return fmt.Errorf("validation: image url longer than %d: %w", maxImageURLLen, errs.ErrInvalidArgument)
	}
	return nil
}

// chargedPoint: subscribers pay nothing, everyone else pays the supplied non-negative price.
func chargedPoint(subscribed bool, supplied *int) (int, error) {
	if subscribed {
		return 0, nil
	}
	if supplied == nil {
		return 0, fmt.Errorf("validation: point is required: %w", errs.ErrInvalidArgument)
	}
	if *supplied < 0 {
		return 0, fmt.Errorf("validation: point must be >= 0: %w", errs.ErrInvalidArgument)
	}
	// my_books.point is INTEGER
	if *supplied > math.MaxInt32 {
		return 0, fmt.Errorf("validation: point out of range: %w", errs.ErrInvalidArgument)
	}
	return *supplied, nil
}

func receiptMessage(subscribed bool, point int) string {
	if subscribed {
		return "purchase completed (subscriber, 0 points charged)"
	}
	return fmt.Sprintf("purchase completed (%d points charged)", point)
}

func storageErr(err error) error {
	if errors.Is(err, errs.ErrStorage) {
		return err
	}
	return fmt.Errorf("%w: %w", errs.ErrStorage, err)
}
