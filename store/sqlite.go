package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path and
// returns a Store backed by a single documents table. WAL mode keeps
// concurrent cycle and interactive writers from blocking each other.
func NewSQLiteStore(dbPath string) (Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &sqliteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *sqliteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);`
	_, err := s.db.Exec(schema)
	return err
}

func (s *sqliteStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM documents ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	return keys, nil
}

func (s *sqliteStore) Load(ctx context.Context, keys ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(keys))

	for _, key := range keys {
		var value []byte
		err := s.db.QueryRowContext(ctx,
			`SELECT value FROM documents WHERE key = ?`, key,
		).Scan(&value)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	return entries, nil
}

func (s *sqliteStore) Save(ctx context.Context, entries ...Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSaveFailed, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, e := range entries {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO documents (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			e.Key, e.Value, now,
		)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}

	return tx.Commit()
}

func (s *sqliteStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key); err != nil {
			return fmt.Errorf("delete failed: %s: %w", key, err)
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *sqliteStore) Close() error {
	return s.db.Close()
}
