// Package events publishes purchase domain events to Kafka.
package events

import (
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/and161185/mybook/internal/model"
)

// purchaseEventJSON is the wire shape of a PurchaseEvent.
type purchaseEventJSON struct {
	EventID    string    `json:"eventId"`
	EventType  string    `json:"eventType"`
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	BookID     string    `json:"bookId"`
	Point      int       `json:"point"`
	Title      string    `json:"title"`
	AuthorName string    `json:"authorName"`
	Category   string    `json:"category"`
	ImageURL   string    `json:"imageUrl"`
	CreatedAt  time.Time `json:"createdAt"`
	Timestamp  time.Time `json:"timestamp"`
}

// Encode serializes a purchase event to JSON.
func Encode(ev model.PurchaseEvent) ([]byte, error) {
	return jsoniter.ConfigFastest.Marshal(purchaseEventJSON{
		EventID:    ev.EventID.String(),
		EventType:  ev.EventType,
		ID:         ev.ID.String(),
		UserID:     ev.UserID.String(),
		BookID:     ev.BookID.String(),
		Point:      ev.Point,
		Title:      ev.Title,
		AuthorName: ev.AuthorName,
		Category:   ev.Category,
		ImageURL:   ev.ImageURL,
		CreatedAt:  ev.CreatedAt,
		Timestamp:  ev.Timestamp,
	})
}
