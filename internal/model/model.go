// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Identity is the caller identity forwarded by the upstream gateway.
type Identity struct {
	UserID     uuid.UUID
	Subscribed bool
}

// Entitlement grants a user access to a purchased book. Rows are never updated.
type Entitlement struct {
	ID         uuid.UUID // assigned by the store on save
	UserID     uuid.UUID
	BookID     uuid.UUID
	Title      string
	AuthorName string
	Category   string
	ImageURL   string // up to 2000 chars
	Point      int    // charged points (>= 0, 0 for subscribers)
	CreatedAt  time.Time
}

// PurchaseRequest is the caller's purchase intent. Point is the list price; nil means absent.
type PurchaseRequest struct {
	BookID     uuid.UUID
	Title      string
	AuthorName string
	Category   string
	ImageURL   string
	Point      *int
}

// PurchaseReceipt confirms a completed purchase.
type PurchaseReceipt struct {
	Message    string
	Subscribed bool
	BookID     uuid.UUID
	Point      int
	Title      string
	AuthorName string
	Category   string
	ImageURL   string
}

// RemoteContent is the payload returned by the books service read endpoint.
type RemoteContent struct {
	Content  string
	AudioURL string
}

// ContentView merges local entitlement metadata with remote book content.
type ContentView struct {
	BookID     uuid.UUID
	Title      string
	AuthorName string
	Category   string
	ImageURL   string
	CreatedAt  time.Time
	Content    string
	AudioURL   string
}

// PurchaseEventType is the event type emitted after a purchase is committed.
const PurchaseEventType = "BookPurchased"

// PurchaseEvent is an immutable snapshot of a committed Entitlement.
type PurchaseEvent struct {
	EventID    uuid.UUID
	EventType  string
	ID         uuid.UUID
	UserID     uuid.UUID
	BookID     uuid.UUID
	Point      int
	Title      string
	AuthorName string
	Category   string
	ImageURL   string
	CreatedAt  time.Time
	Timestamp  time.Time // publication time
}

// NewPurchaseEvent snapshots e into an event stamped with now.
func NewPurchaseEvent(eventID uuid.UUID, e Entitlement, now time.Time) PurchaseEvent {
	return PurchaseEvent{
		EventID:    eventID,
		EventType:  PurchaseEventType,
		ID:         e.ID,
		UserID:     e.UserID,
		BookID:     e.BookID,
		Point:      e.Point,
		Title:      e.Title,
		AuthorName: e.AuthorName,
		Category:   e.Category,
		ImageURL:   e.ImageURL,
		CreatedAt:  e.CreatedAt,
		Timestamp:  now,
	}
}
