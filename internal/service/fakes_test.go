package service

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/model"
	"github.com/and161185/mybook/internal/repository"
)

// memRepo is an in-memory EntitlementRepository that records the order of side effects in trace.
type memRepo struct {
	mu    sync.Mutex
	rows  []model.Entitlement
	trace *[]string

	saveErr error
	findErr error

	saveCalls int
}

var _ repository.EntitlementRepository = (*memRepo)(nil)

func (r *memRepo) Save(_ context.Context, e *model.Entitlement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	e.ID = uuid.Must(uuid.NewV7())
	r.rows = append(r.rows, *e)
	if r.trace != nil {
		*r.trace = append(*r.trace, "commit")
	}
	return nil
}

func (r *memRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]model.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []model.Entitlement
	for _, e := range r.rows {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memRepo) FindByUserAndBook(_ context.Context, userID, bookID uuid.UUID) (*model.Entitlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, e := range r.rows {
		if e.UserID == userID && e.BookID == bookID {
			c := e
			return &c, nil
		}
	}
	return nil, errs.ErrNotFound
}

type fakePublisher struct {
	events []model.PurchaseEvent
	err    error
	trace  *[]string
}

func (p *fakePublisher) Publish(_ context.Context, ev model.PurchaseEvent) error {
	if p.trace != nil {
		*p.trace = append(*p.trace, "publish")
	}
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

type fakeContent struct {
	out   model.RemoteContent
	err   error
	calls int
}

func (c *fakeContent) Read(context.Context, uuid.UUID) (model.RemoteContent, error) {
	c.calls++
	return c.out, c.err
}

func intPtr(v int) *int { return &v }

func purchaseReq(bookID uuid.UUID, point *int) model.PurchaseRequest {
	return model.PurchaseRequest{
		BookID:     bookID,
		Title:      "The Little Prince",
		AuthorName: "Antoine de Saint-Exupery",
		Category:   "novel",
		ImageURL:   "https://img.example/prince.jpg",
		Point:      point,
	}
}
