package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCheckWithoutDatabase(t *testing.T) {
	got := NewService(nil).Check(context.Background())
	if !got.OK || got.Database != "memory" {
		t.Fatalf("unexpected status %+v", got)
	}
}

func TestCheckPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	if got := NewService(db).Check(context.Background()); !got.OK || got.Database != "ok" {
		t.Fatalf("unexpected status %+v", got)
	}

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	if got := NewService(db).Check(context.Background()); got.OK || got.Database != "unreachable" {
		t.Fatalf("unexpected status %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
