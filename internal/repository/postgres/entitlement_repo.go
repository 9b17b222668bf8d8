package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// EntitlementRepo implements EntitlementRepository using PostgreSQL.
type EntitlementRepo struct {
	db    *DB
	newID func() (uuid.UUID, error)
	now   func() time.Time
}

// NewEntitlementRepo constructs an entitlement repository.
func NewEntitlementRepo(db *DB) *EntitlementRepo {
	return &EntitlementRepo{db: db, newID: uuid.NewV7, now: time.Now}
}

// Save inserts a new entitlement in its own transaction and commits before returning.
func (r *EntitlementRepo) Save(ctx context.Context, e *model.Entitlement) (err error) {
	if e == nil {
		return fmt.Errorf("save: nil entitlement: %w", errs.ErrInvalidArgument)
	}
	id, err := r.newID()
	if err != nil {
		return fmt.Errorf("save: new id: %w: %w", errs.ErrStorage, err)
	}
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.now()
	}
	createdAt = createdAt.UTC()

	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("save: begin: %w: %w", errs.ErrStorage, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("save: commit: %w: %w", errs.ErrStorage, cerr)
			return
		}
		e.ID = id
		e.CreatedAt = createdAt
	}()

	const ins = `
INSERT INTO my_books (id, user_id, book_id, title, author_name, category, image_url, point, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err = tx.Exec(ctx, ins,
		id, e.UserID, e.BookID, e.Title, e.AuthorName, e.Category, e.ImageURL, e.Point, createdAt,
	); err != nil {
		return fmt.Errorf("save: insert: %w: %w", errs.ErrStorage, err)
	}
	return nil
}

// FindByUser lists entitlements of a user ordered by creation.
func (r *EntitlementRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]model.Entitlement, error) {
	const q = `
SELECT id, user_id, book_id, title, author_name, category, image_url, point, created_at
FROM my_books
WHERE user_id=$1
ORDER BY created_at ASC, id ASC`
	rows, err := r.db.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("find by user: %w: %w", errs.ErrStorage, err)
	}
	defer rows.Close()

	out := []model.Entitlement{}
	for rows.Next() {
		var e model.Entitlement
		if err = rows.Scan(&e.ID, &e.UserID, &e.BookID, &e.Title, &e.AuthorName,
			&e.Category, &e.ImageURL, &e.Point, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("find by user: scan: %w: %w", errs.ErrStorage, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find by user: %w: %w", errs.ErrStorage, err)
	}
	return out, nil
}

// FindByUserAndBook returns the earliest entitlement for the pair.
func (r *EntitlementRepo) FindByUserAndBook(ctx context.Context, userID, bookID uuid.UUID) (*model.Entitlement, error) {
	const q = `
SELECT id, user_id, book_id, title, author_name, category, image_url, point, created_at
FROM my_books
WHERE user_id=$1 AND book_id=$2
ORDER BY created_at ASC, id ASC
LIMIT 1`
	var e model.Entitlement
	err := r.db.Pool.QueryRow(ctx, q, userID, bookID).Scan(&e.ID, &e.UserID, &e.BookID, &e.Title,
		&e.AuthorName, &e.Category, &e.ImageURL, &e.Point, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("find by user and book: %w: %w", errs.ErrStorage, err)
	}
	return &e, nil
}
