// Package sqlite implements storage.ExchangeStore on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/searchbot/internal/storage"
)

// Store is a SQLite implementation of ExchangeStore
type Store struct {
	db *sql.DB
}

var _ storage.ExchangeStore = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS exchanges (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			request_id TEXT,
			input TEXT NOT NULL,
			search_output TEXT,
			output TEXT,
			error TEXT,
			input_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			duration_ns INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_created ON exchanges(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_exchanges_source ON exchanges(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) SaveExchange(ctx context.Context, ex *storage.Exchange) error {
	if ex.CreatedAt.IsZero() {
		ex.CreatedAt = time.Now()
	}

	query := `INSERT INTO exchanges (id, source, request_id, input, search_output, output, error,
	              input_tokens, output_tokens, duration_ns, created_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		ex.ID, string(ex.Source), ex.RequestID, ex.Input, ex.SearchOutput, ex.Output, ex.Error,
		ex.InputTokens, ex.OutputTokens, int64(ex.Duration), ex.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save exchange: %w", err)
	}

	return nil
}

const selectColumns = `SELECT id, source, request_id, input, search_output, output, error,
	          input_tokens, output_tokens, duration_ns, created_at FROM exchanges`

type scanner interface {
	Scan(dest ...any) error
}

func scanExchange(row scanner) (*storage.Exchange, error) {
	var ex storage.Exchange
	var source string
	var requestID, searchOutput, output, errMsg sql.NullString
	var durationNS int64

	if err := row.Scan(&ex.ID, &source, &requestID, &ex.Input, &searchOutput, &output, &errMsg,
		&ex.InputTokens, &ex.OutputTokens, &durationNS, &ex.CreatedAt); err != nil {
		return nil, err
	}

	ex.Source = storage.Source(source)
	ex.RequestID = requestID.String
	ex.SearchOutput = searchOutput.String
	ex.Output = output.String
	ex.Error = errMsg.String
	ex.Duration = time.Duration(durationNS)
	return &ex, nil
}

func (s *Store) GetExchange(ctx context.Context, id string) (*storage.Exchange, error) {
	ex, err := scanExchange(s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("exchange %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange: %w", err)
	}
	return ex, nil
}

func (s *Store) ListExchanges(ctx context.Context, limit, offset int) ([]*storage.Exchange, error) {
	if limit <= 0 {
		limit = storage.DefaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []*storage.Exchange
	for rows.Next() {
		ex, err := scanExchange(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, ex)
	}

	return exchanges, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}
