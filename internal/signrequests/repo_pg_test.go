package signrequests

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoClaimForSigningIsConditional(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending' AND expires_at >= $2")).
		WithArgs("req-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("WHERE id = $1 AND status = 'pending' AND expires_at >= $2")).
		WithArgs("req-1", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	first, err := repo.ClaimForSigning(context.Background(), "req-1", now)
	if err != nil || !first {
		t.Fatalf("expected first claim to win, got %v %v", first, err)
	}
	second, err := repo.ClaimForSigning(context.Background(), "req-1", now)
	if err != nil || second {
		t.Fatalf("expected second claim to lose, got %v %v", second, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByTokenHash(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	created := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	columns := []string{
		"id", "token_hash", "document_id", "project_id", "signer_role", "recipient_email", "recipient_name",
		"requested_by", "requester_name", "requester_email", "status", "signature_id",
		"created_at", "expires_at", "signed_at", "cancelled_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE token_hash = $1")).
		WithArgs("hash-1").
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			"req-1", "hash-1", "doc-1", "p-1", "owner", "owner@example.com", "Olivia",
			"google:gc", nil, "gil@gc.example.com", "pending", nil,
			created, created.Add(48*time.Hour), nil, nil,
		))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE token_hash = $1")).
		WithArgs("hash-2").
		WillReturnRows(sqlmock.NewRows(columns))

	req, err := repo.GetByTokenHash(context.Background(), "hash-1")
	if err != nil {
		t.Fatalf("GetByTokenHash: %v", err)
	}
	if req.Status != StatusPending || req.RecipientName == nil || *req.RecipientName != "Olivia" {
		t.Fatalf("unexpected request %+v", req)
	}
	if req.RequesterName != "" || req.RequesterEmail != "gil@gc.example.com" || req.SignatureID != nil {
		t.Fatalf("unexpected optional columns %+v", req)
	}

	if _, err := repo.GetByTokenHash(context.Background(), "hash-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
