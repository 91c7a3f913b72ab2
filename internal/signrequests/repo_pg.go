package signrequests

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"signing-backend/internal/signatures"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, req Request) error {
	const query = `
INSERT INTO signature_requests (
    id,
    token_hash,
    document_id,
    project_id,
    signer_role,
    recipient_email,
    recipient_name,
    requested_by,
    requester_name,
    requester_email,
    status,
    created_at,
    expires_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	var recipientName sql.NullString
	if req.RecipientName != nil {
		recipientName = sql.NullString{String: *req.RecipientName, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		req.ID,
		req.TokenHash,
		req.DocumentID,
		req.ProjectID,
		string(req.Role),
		req.RecipientEmail,
		recipientName,
		req.RequestedBy,
		nullableString(req.RequesterName),
		nullableString(req.RequesterEmail),
		string(req.Status),
		req.CreatedAt,
		req.ExpiresAt,
	)
	return err
}

const selectColumns = `id, token_hash, document_id, project_id, signer_role, recipient_email, recipient_name, requested_by, requester_name, requester_email, status, signature_id, created_at, expires_at, signed_at, cancelled_at`

func (r *PGRepo) GetByID(ctx context.Context, requestID string) (Request, error) {
	const query = `
SELECT ` + selectColumns + `
FROM signature_requests
WHERE id = $1`
	return r.getOne(ctx, query, requestID)
}

func (r *PGRepo) GetByTokenHash(ctx context.Context, tokenHash string) (Request, error) {
	const query = `
SELECT ` + selectColumns + `
FROM signature_requests
WHERE token_hash = $1`
	return r.getOne(ctx, query, tokenHash)
}

func (r *PGRepo) getOne(ctx context.Context, query, arg string) (Request, error) {
	req, err := scanRequest(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Request{}, ErrNotFound
		}
		return Request{}, err
	}
	return req, nil
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Request, error) {
	const query = `
SELECT ` + selectColumns + `
FROM signature_requests
WHERE document_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PGRepo) ClaimForSigning(ctx context.Context, requestID string, now time.Time) (bool, error) {
	const query = `
UPDATE signature_requests
SET status = 'signed', signed_at = $2
WHERE id = $1 AND status = 'pending' AND expires_at >= $2`
	return r.execOne(ctx, query, requestID, now)
}

func (r *PGRepo) ReleaseClaim(ctx context.Context, requestID string) error {
	const query = `
UPDATE signature_requests
SET status = 'pending', signed_at = NULL
WHERE id = $1 AND status = 'signed' AND signature_id IS NULL`
	_, err := r.DB.ExecContext(ctx, query, requestID)
	return err
}

func (r *PGRepo) AttachSignature(ctx context.Context, requestID, signatureID string) error {
	const query = `
UPDATE signature_requests
SET signature_id = $2
WHERE id = $1`
	_, err := r.DB.ExecContext(ctx, query, requestID, signatureID)
	return err
}

func (r *PGRepo) Cancel(ctx context.Context, requestID string, at time.Time) (bool, error) {
	const query = `
UPDATE signature_requests
SET status = 'cancelled', cancelled_at = $2
WHERE id = $1 AND status = 'pending'`
	return r.execOne(ctx, query, requestID, at)
}

func (r *PGRepo) execOne(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return updated == 1, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (Request, error) {
	var req Request
	var role, status string
	var recipientName, requesterName, requesterEmail, signatureID sql.NullString
	var signedAt, cancelledAt sql.NullTime
	if err := row.Scan(
		&req.ID,
		&req.TokenHash,
		&req.DocumentID,
		&req.ProjectID,
		&role,
		&req.RecipientEmail,
		&recipientName,
		&req.RequestedBy,
		&requesterName,
		&requesterEmail,
		&status,
		&signatureID,
		&req.CreatedAt,
		&req.ExpiresAt,
		&signedAt,
		&cancelledAt,
	); err != nil {
		return Request{}, err
	}
	req.Role = signatures.Role(role)
	req.Status = Status(status)
	if recipientName.Valid {
		v := recipientName.String
		req.RecipientName = &v
	}
	req.RequesterName = requesterName.String
	req.RequesterEmail = requesterEmail.String
	if signatureID.Valid {
		v := signatureID.String
		req.SignatureID = &v
	}
	if signedAt.Valid {
		v := signedAt.Time
		req.SignedAt = &v
	}
	if cancelledAt.Valid {
		v := cancelledAt.Time
		req.CancelledAt = &v
	}
	return req, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
