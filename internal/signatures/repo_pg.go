package signatures

import (
	"context"
	"database/sql"
	"errors"

	"signing-backend/internal/documents"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a record; the (document_id, signer_role) unique index turns
// a second signature for the same role into zero affected rows.
func (r *PGRepo) Create(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO signatures (
    id,
    document_id,
    document_type,
    project_id,
    signer_role,
    signer_name,
    signer_title,
    image_key,
    image_mime_type,
    image_size_bytes,
    signed_via,
    created_by,
    signed_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (document_id, signer_role) DO NOTHING`

	var title sql.NullString
	if rec.SignerTitle != nil {
		title = sql.NullString{String: *rec.SignerTitle, Valid: true}
	}

	res, err := r.DB.ExecContext(
		ctx,
		query,
		rec.ID,
		rec.DocumentID,
		string(rec.DocumentType),
		rec.ProjectID,
		string(rec.Role),
		rec.SignerName,
		title,
		rec.ImageKey,
		rec.ImageMimeType,
		rec.ImageSizeBytes,
		string(rec.SignedVia),
		rec.CreatedBy,
		rec.SignedAt,
	)
	if err != nil {
		return err
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return ErrRoleAlreadySigned
	}
	return nil
}

const selectColumns = `id, document_id, document_type, project_id, signer_role, signer_name, signer_title, image_key, image_mime_type, image_size_bytes, signed_via, created_by, signed_at`

func (r *PGRepo) GetByID(ctx context.Context, signatureID string) (Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM signatures
WHERE id = $1`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, signatureID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (r *PGRepo) ListByDocument(ctx context.Context, documentID string) ([]Record, error) {
	const query = `
SELECT ` + selectColumns + `
FROM signatures
WHERE document_id = $1
ORDER BY CASE signer_role WHEN 'contractor' THEN 1 WHEN 'architect' THEN 2 ELSE 3 END`
	rows, err := r.DB.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Record, 0, len(RequiredRoles))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PGRepo) Delete(ctx context.Context, signatureID string) error {
	const query = `DELETE FROM signatures WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, signatureID)
	if err != nil {
		return err
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var docType, role, via string
	var title sql.NullString
	if err := row.Scan(
		&rec.ID,
		&rec.DocumentID,
		&docType,
		&rec.ProjectID,
		&role,
		&rec.SignerName,
		&title,
		&rec.ImageKey,
		&rec.ImageMimeType,
		&rec.ImageSizeBytes,
		&via,
		&rec.CreatedBy,
		&rec.SignedAt,
	); err != nil {
		return Record{}, err
	}
	rec.DocumentType = documents.Type(docType)
	rec.Role = Role(role)
	rec.SignedVia = Via(via)
	if title.Valid {
		t := title.String
		rec.SignerTitle = &t
	}
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
