package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/hypervision/internal/models"
)

// Repository provides data access methods for the selection journal
type Repository struct {
	db *sql.DB
}

// New opens (or creates) the sqlite journal at dbPath and runs migrations.
// ":memory:" gives a journal that lives only as long as the process.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}

	// SQLite works best with a single connection; it also keeps ":memory:"
	// pointing at one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return repo, nil
}

// DB returns the underlying database connection
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS options (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			display_order INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS selections (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			participant TEXT NOT NULL UNIQUE,
			option_id TEXT NOT NULL,
			selected_at DATETIME NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_selections_option ON selections(option_id)`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// ==================== Option Methods ====================

// SyncOptions upserts the configured options, recording their display order
func (r *Repository) SyncOptions(ctx context.Context, options []models.Option) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, opt := range options {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO options (id, name, display_order) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				display_order = excluded.display_order
		`, string(opt.ID), opt.Name, i)
		if err != nil {
			return fmt.Errorf("sync option %s: %w", opt.ID, err)
		}
	}

	return tx.Commit()
}

// ListOptions returns stored options in display order
func (r *Repository) ListOptions(ctx context.Context) ([]models.Option, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM options ORDER BY display_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var options []models.Option
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		options = append(options, models.Option{ID: models.OptionID(id), Name: name})
	}
	return options, rows.Err()
}

// ==================== Selection Methods ====================

// SaveSelection appends a selection to the journal
func (r *Repository) SaveSelection(ctx context.Context, sel models.Selection) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO selections (participant, option_id, selected_at) VALUES (?, ?, ?)`,
		sel.Participant, string(sel.OptionID), sel.SelectedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrDuplicateSelection
		}
		return err
	}
	return nil
}

// ListSelections returns the journal in recording order
func (r *Repository) ListSelections(ctx context.Context) ([]models.Selection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT participant, option_id, selected_at
		FROM selections
		ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []models.Selection
	for rows.Next() {
		var sel models.Selection
		var optionID string
		if err := rows.Scan(&sel.Participant, &optionID, &sel.SelectedAt); err != nil {
			return nil, err
		}
		sel.OptionID = models.OptionID(optionID)
		selections = append(selections, sel)
	}
	return selections, rows.Err()
}

// CountSelections returns the number of journaled selections
func (r *Repository) CountSelections(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM selections`).Scan(&n)
	return n, err
}

// ==================== Settings Methods ====================

// GetSetting retrieves a setting value
func (r *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return value, err
}

// SetSetting saves a setting value
func (r *Repository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
