// Package convert maps between HTTP payloads and domain models.
package convert

import (
	"fmt"
	"strings"
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/model"
)

// --- purchase (client -> server) ---

// PurchaseRequest is the body of POST /myBook/purchase.
type PurchaseRequest struct {
	BookID     string `json:"bookId"`
	Point      *int   `json:"point"`
	Title      string `json:"title"`
	AuthorName string `json:"authorName"`
	Category   string `json:"category"`
	ImageURL   string `json:"imageUrl"`
}

// FromPurchaseRequest converts the body into a domain request. A malformed book id is an invalid argument.
func FromPurchaseRequest(in PurchaseRequest) (model.PurchaseRequest, error) {
	id, err := ParseBookID(in.BookID)
	if err != nil {
		return model.PurchaseRequest{}, err
	}
	return model.PurchaseRequest{
		BookID:     id,
		Title:      strings.TrimSpace(in.Title),
		AuthorName: strings.TrimSpace(in.AuthorName),
		Category:   strings.TrimSpace(in.Category),
		ImageURL:   strings.TrimSpace(in.ImageURL),
		Point:      in.Point,
	}, nil
}

// ParseBookID parses a path or body book id.
func ParseBookID(s string) (u.UUID, error) {
	id, err := u.FromString(strings.TrimSpace(s))
	if err != nil || id == u.Nil {
		return u.Nil, fmt.Errorf("invalid book id %q: %w", s, errs.ErrInvalidArgument)
	}
	return id, nil
}

// --- responses (server -> client) ---

// PurchaseResponse confirms a purchase.
type PurchaseResponse struct {
	Message    string `json:"message"`
	Subscribed bool   `json:"subscribed"`
	BookID     string `json:"book_id"`
	Point      int    `json:"point"`
	Title      string `json:"title"`
	AuthorName string `json:"author_name"`
	Category   string `json:"category"`
	ImageURL   string `json:"image_url"`
}

// ToPurchaseResponse wraps a receipt.
func ToPurchaseResponse(r model.PurchaseReceipt) PurchaseResponse {
	return PurchaseResponse{
		Message:    r.Message,
		Subscribed: r.Subscribed,
		BookID:     r.BookID.String(),
		Point:      r.Point,
		Title:      r.Title,
		AuthorName: r.AuthorName,
		Category:   r.Category,
		ImageURL:   r.ImageURL,
	}
}

// HistoryItem is one entitlement in the history list. Keys follow the stored entity.
type HistoryItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	BookID     string    `json:"bookId"`
	Title      string    `json:"title"`
	AuthorName string    `json:"authorName"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"imageUrl"`
	Point      int       `json:"point"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ToHistory converts entitlements; never returns nil so an empty history encodes as [].
func ToHistory(in []model.Entitlement) []HistoryItem {
	out := make([]HistoryItem, 0, len(in))
	for _, e := range in {
		out = append(out, HistoryItem{
			ID:         e.ID.String(),
			UserID:     e.UserID.String(),
			BookID:     e.BookID.String(),
			Title:      e.Title,
			AuthorName: e.AuthorName,
			Category:   e.Category,
			ImageURL:   e.ImageURL,
			Point:      e.Point,
			CreatedAt:  e.CreatedAt.UTC(),
		})
	}
	return out
}

// ReadResponse is the merged book view returned to owners.
type ReadResponse struct {
	BookID     string    `json:"book_id"`
	Title      string    `json:"title"`
	AuthorName string    `json:"author_name"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"image_url"`
	CreatedAt  time.Time `json:"created_at"`
	Content    string    `json:"content"`
	AudioURL   string    `json:"audio_url"`
}

// ToReadResponse converts a content view.
func ToReadResponse(v model.ContentView) ReadResponse {
	return ReadResponse{
		BookID:     v.BookID.String(),
		Title:      v.Title,
		AuthorName: v.AuthorName,
		Category:   v.Category,
		ImageURL:   v.ImageURL,
		CreatedAt:  v.CreatedAt.UTC(),
		Content:    v.Content,
		AudioURL:   v.AudioURL,
	}
}

// CheckResponse answers GET /myBook/check/{bookId}.
type CheckResponse struct {
	IsPurchased bool `json:"is_purchased"`
}
