package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/tabtime/internal/domain"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		// WAL lets the CLI read while the daemon appends.
		dsn = dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if dbPath == MemoryPath {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		domain TEXT,
		start_ms INTEGER NOT NULL,
		end_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		CHECK (end_ms - start_ms > 1000)
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_start ON sessions(start_ms);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// AppendRecord inserts a closed session. A single INSERT is atomic, so
// concurrent appends cannot overwrite each other. An empty domain is stored
// as NULL; the tracker never writes one, so NULL rows only come from direct
// writes to the store.
func (s *SQLiteStore) AppendRecord(ctx context.Context, rec domain.SessionRecord) error {
	if !rec.Persistable() {
		return fmt.Errorf("%w: start=%d end=%d", ErrInvalidRecord, rec.Start, rec.End)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	var dom interface{}
	if rec.Domain != "" {
		dom = rec.Domain
	}

	query := `INSERT INTO sessions (id, domain, start_ms, end_ms, created_at) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, rec.ID, dom, rec.Start, rec.End, time.Now().Unix()); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// ListRecords returns every stored record in insertion order.
func (s *SQLiteStore) ListRecords(ctx context.Context) ([]domain.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, domain, start_ms, end_ms FROM sessions ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("failed to close session rows", "error", closeErr)
		}
	}()

	records := []domain.SessionRecord{}
	for rows.Next() {
		var rec domain.SessionRecord
		var dom sql.NullString
		if err := rows.Scan(&rec.ID, &dom, &rec.Start, &rec.End); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		rec.Domain = dom.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return records, nil
}

// Clear removes all stored records.
func (s *SQLiteStore) Clear(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions`)
	if err != nil {
		return 0, fmt.Errorf("clear sessions: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

var _ Repository = (*SQLiteStore)(nil)
