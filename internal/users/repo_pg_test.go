package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var userColumns = []string{"id", "email", "full_name", "given_name", "family_name", "picture_url", "created_at", "updated_at"}

func TestPGRepoUpsertReturnsStoredRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("google:1", "gil@example.com", "Gil", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("google:1", "gil@example.com", "Gil", nil, nil, "https://img/p.png", now, now))

	repo := &PGRepo{DB: db}
	user, err := repo.Upsert(context.Background(), User{ID: "google:1", Email: "gil@example.com", FullName: "Gil"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if user.PictureURL != "https://img/p.png" || user.GivenName != "" {
		t.Fatalf("unexpected user %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM users").WithArgs("google:missing").WillReturnRows(sqlmock.NewRows(userColumns))

	repo := &PGRepo{DB: db}
	if _, err := repo.GetByID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
