package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mybook/internal/model"
)

// ContentReader fetches book content from the books service.
type ContentReader interface {
	Read(ctx context.Context, bookID uuid.UUID) (model.RemoteContent, error)
}

// ReaderService serves book content to owners.
type ReaderService interface {
	// Read returns merged metadata and content for a purchased book.
	Read(ctx context.Context, userID, bookID uuid.UUID) (model.ContentView, error)
}

type ReaderServiceImpl struct {
	query   QueryService
	content ContentReader
}

// NewReaderService constructs ReaderService.
func NewReaderService(query QueryService, content ContentReader) *ReaderServiceImpl {
	return &ReaderServiceImpl{query: query, content: content}
}

// Read checks the entitlement first; the books service is called only for owners.
// Content errors (errs.ErrNotFound, errs.ErrUpstream) are returned as is.
func (s *ReaderServiceImpl) Read(ctx context.Context, userID, bookID uuid.UUID) (model.ContentView, error) {
	e, err := s.query.Find(ctx, userID, bookID)
	if err != nil {
		return model.ContentView{}, err
	}
	rc, err := s.content.Read(ctx, bookID)
	if err != nil {
		return model.ContentView{}, err
	}
	return model.ContentView{
		BookID:     e.BookID,
		Title:      e.Title,
		AuthorName: e.AuthorName,
		Category:   e.Category,
		ImageURL:   e.ImageURL,
		CreatedAt:  e.CreatedAt,
		Content:    rc.Content,
		AudioURL:   rc.AudioURL,
	}, nil
}
