package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/hypervision/internal/models"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Repository{db: db}, mock
}

// TestSaveSelection_UniqueConstraintMapped tests that sqlite unique violations become ErrDuplicateSelection
func TestSaveSelection_UniqueConstraintMapped(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO selections").
		WillReturnError(sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique})

	err := repo.SaveSelection(context.Background(), models.Selection{Participant: "Zoe", OptionID: "optionA", SelectedAt: time.Now()})
	if !errors.Is(err, ErrDuplicateSelection) {
		t.Errorf("expected ErrDuplicateSelection, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestSaveSelection_OtherErrorsPassThrough tests that non-constraint errors are returned as-is
func TestSaveSelection_OtherErrorsPassThrough(t *testing.T) {
	repo, mock := newMockRepo(t)
	dbErr := errors.New("database is locked")

	mock.ExpectExec("INSERT INTO selections").WillReturnError(dbErr)

	err := repo.SaveSelection(context.Background(), models.Selection{Participant: "Zoe", OptionID: "optionA", SelectedAt: time.Now()})
	if !errors.Is(err, dbErr) {
		t.Errorf("expected passthrough error, got %v", err)
	}
}

// TestListSelections_ScanError tests row scanning error
func TestListSelections_ScanError(t *testing.T) {
	repo, mock := newMockRepo(t)

	rows := sqlmock.NewRows([]string{"participant", "option_id", "selected_at"}).
		AddRow("Zoe", "optionA", "not-a-time")
	mock.ExpectQuery("SELECT (.+) FROM selections").WillReturnRows(rows)

	if _, err := repo.ListSelections(context.Background()); err == nil {
		t.Error("expected error from scan failure, got nil")
	}
}

// TestListSelections_RowError tests iteration errors surface to the caller
func TestListSelections_RowError(t *testing.T) {
	repo, mock := newMockRepo(t)
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"participant", "option_id", "selected_at"}).
		AddRow("Zoe", "optionA", at).
		AddRow("Bo", "optionB", at).
		RowError(1, errors.New("corrupt page"))
	mock.ExpectQuery("SELECT (.+) FROM selections").WillReturnRows(rows)

	if _, err := repo.ListSelections(context.Background()); err == nil {
		t.Error("expected row error, got nil")
	}
}

// TestListOptions_QueryError tests query failure propagation
func TestListOptions_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT id, name FROM options").WillReturnError(errors.New("no such table"))

	if _, err := repo.ListOptions(context.Background()); err == nil {
		t.Error("expected query error, got nil")
	}
}

// TestSyncOptions_RollsBackOnFailure tests that a failed upsert aborts the transaction
func TestSyncOptions_RollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO options").WithArgs("optionA", "A", 0).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO options").WithArgs("optionB", "B", 1).WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.SyncOptions(context.Background(), []models.Option{
		{ID: "optionA", Name: "A"},
		{ID: "optionB", Name: "B"},
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

// TestSyncOptions_BeginError tests transaction start failure
func TestSyncOptions_BeginError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("busy"))

	if err := repo.SyncOptions(context.Background(), []models.Option{{ID: "optionA", Name: "A"}}); err == nil {
		t.Error("expected begin error, got nil")
	}
}

// TestGetSetting_QueryError tests that non-ErrNoRows errors are not mapped to ErrNotFound
func TestGetSetting_QueryError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT value FROM settings").WillReturnError(errors.New("timeout"))

	_, err := repo.GetSetting(context.Background(), "base_url")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("expected raw query error, got %v", err)
	}
}

// TestCountSelections_Error tests count query failure
func TestCountSelections_Error(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT COUNT").WillReturnError(errors.New("timeout"))

	if _, err := repo.CountSelections(context.Background()); err == nil {
		t.Error("expected error, got nil")
	}
}
