package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    project_id,
    document_type,
    number,
    title,
    amount_cents,
    created_by,
    fully_signed_notified_at,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, NULL, $8)`

	var amount sql.NullInt64
	if doc.AmountCents != nil {
		amount = sql.NullInt64{Int64: *doc.AmountCents, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.ProjectID,
		string(doc.Type),
		doc.Number,
		doc.Title,
		amount,
		doc.CreatedBy,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT id, project_id, document_type, number, title, amount_cents, created_by, fully_signed_notified_at, created_at
FROM documents
WHERE id = $1
LIMIT 1`
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, documentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByProject lists documents ordered newest-first.
func (r *PGRepo) ListByProject(ctx context.Context, projectID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, project_id, document_type, number, title, amount_cents, created_by, fully_signed_notified_at, created_at
FROM documents
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// MarkFullySignedNotified claims the completion guard; exactly one caller
// sees a row affected.
func (r *PGRepo) MarkFullySignedNotified(ctx context.Context, documentID string, at time.Time) (bool, error) {
	const query = `
UPDATE documents
SET fully_signed_notified_at = $1
WHERE id = $2 AND fully_signed_notified_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, at, documentID)
	if err != nil {
		return false, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return updated == 1, nil
}

// ClearFullySignedNotified resets the completion guard.
func (r *PGRepo) ClearFullySignedNotified(ctx context.Context, documentID string) error {
	const query = `
UPDATE documents
SET fully_signed_notified_at = NULL
WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, documentID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var docType string
	var amount sql.NullInt64
	var notifiedAt sql.NullTime
	if err := row.Scan(
		&doc.ID,
		&doc.ProjectID,
		&docType,
		&doc.Number,
		&doc.Title,
		&amount,
		&doc.CreatedBy,
		&notifiedAt,
		&doc.CreatedAt,
	); err != nil {
		return Document{}, err
	}
	doc.Type = Type(docType)
	if amount.Valid {
		v := amount.Int64
		doc.AmountCents = &v
	}
	if notifiedAt.Valid {
		t := notifiedAt.Time
		doc.FullySignedNotifiedAt = &t
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
