package ledgerstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestPostgresSaveSnapshotUpserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := &Postgres{db: db, logger: zap.NewNop()}
	blob := []byte(`{"positions":[]}`)

	mock.ExpectExec("INSERT INTO ledger_snapshots").
		WithArgs("ledger", blob).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.SaveSnapshot(context.Background(), "ledger", blob); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresSaveSnapshotError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := &Postgres{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO ledger_snapshots").
		WithArgs("ledger", []byte("x")).
		WillReturnError(sqlmock.ErrCancelled)

	if err := store.SaveSnapshot(context.Background(), "ledger", []byte("x")); err == nil {
		t.Error("expected error, got nil")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresLoadSnapshotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := &Postgres{db: db, logger: zap.NewNop()}
	rows := sqlmock.NewRows([]string{"blob"}).AddRow([]byte(`{"a":1}`))

	mock.ExpectQuery("SELECT blob FROM ledger_snapshots").
		WithArgs("ledger").
		WillReturnRows(rows)

	blob, err := store.LoadSnapshot(context.Background(), "ledger")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if string(blob) != `{"a":1}` {
		t.Errorf("unexpected blob: %s", blob)
	}
}

func TestPostgresLoadSnapshotMissingReturnsNilNoError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	store := &Postgres{db: db, logger: zap.NewNop()}

	mock.ExpectQuery("SELECT blob FROM ledger_snapshots").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	blob, err := store.LoadSnapshot(context.Background(), "missing")
	if err != nil {
		t.Fatalf("expected no error for a missing key, got %v", err)
	}
	if blob != nil {
		t.Errorf("expected nil blob, got %v", blob)
	}
}

func TestPostgresClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	store := &Postgres{db: db, logger: zap.NewNop()}
	mock.ExpectClose()

	if err := store.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestConsoleSaveAndLoadSnapshot(t *testing.T) {
	c := NewConsole(zap.NewNop())

	if err := c.SaveSnapshot(context.Background(), "k", []byte("v")); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	blob, err := c.LoadSnapshot(context.Background(), "k")
	if err != nil || blob != nil {
		t.Errorf("expected (nil, nil) from console load, got (%v, %v)", blob, err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}
