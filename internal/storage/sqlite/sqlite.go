// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/tabshare/tabshare/internal/models"
	"github.com/tabshare/tabshare/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer; serializing connections turns
	// concurrent claim attempts into a queue instead of SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// cents converts a decimal amount to integer minor units for storage.
func cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// amount converts stored minor units back to a decimal amount.
func amount(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

// CreateSession persists a new session and its items in one transaction.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}
	if session.CreatedAt == 0 {
		session.CreatedAt = time.Now().Unix()
	}
	if session.Status == "" {
		session.Status = models.StatusDraft
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO sessions (id, title, currency, tax_cents, tip_cents, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		session.ID, session.Title, session.Currency, cents(session.Tax), cents(session.Tip), string(session.Status), session.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for i := range session.Items {
		item := &session.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		item.SessionID = session.ID

		_, err = tx.ExecContext(ctx,
			"INSERT INTO items (id, session_id, name, price_cents, quantity) VALUES (?, ?, ?, ?, ?)",
			item.ID, item.SessionID, item.Name, cents(item.Price), item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID, including items, claimants, and members.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session := &models.Session{}
	var status string
	var taxCents, tipCents int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title, currency, tax_cents, tip_cents, status, created_at FROM sessions WHERE id = ?",
		sessionID,
	).Scan(&session.ID, &session.Title, &session.Currency, &taxCents, &tipCents, &status, &session.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	session.Tax = amount(taxCents)
	session.Tip = amount(tipCents)
	session.Status = models.Status(status)

	items, err := s.listItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Items = items

	members, err := s.listMembers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.Members = members

	return session, nil
}

// TransitionSession performs a compare-and-set on the session status.
// The WHERE clause carries the expected state, so two racing transitions
// resolve to exactly one winner inside the database.
func (s *SQLiteStore) TransitionSession(ctx context.Context, sessionID string, from, to models.Status) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET status = ? WHERE id = ? AND status = ?",
		string(to), sessionID, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to transition session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguish a missing session from a lost compare-and-set.
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&exists)
	if err == sql.ErrNoRows {
		return fmt.Errorf("session %s: %w", sessionID, storage.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	return fmt.Errorf("session %s is not %s: %w", sessionID, from, storage.ErrConflict)
}
