package behavior

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const behaviorKey = "user_behavior"

// SQLiteStorage persists the behavior document in a key-value table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage creates/opens the behavior database at path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create behavior db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single-process store. Use one shared connection to avoid writer lock
	// contention with SQLite under concurrent goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	st := &SQLiteStorage{db: db}
	if err := st.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStorage) init() error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA synchronous=NORMAL;`,
		`PRAGMA busy_timeout=5000;`,
		`CREATE TABLE IF NOT EXISTS behavior_state (
			state_key TEXT PRIMARY KEY,
			document TEXT NOT NULL,
			updated_at_ms INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("init behavior db: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStorage) Load(ctx context.Context) ([]byte, bool, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM behavior_state WHERE state_key = ?`, behaviorKey,
	).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load behavior document: %w", err)
	}
	return []byte(doc), true, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO behavior_state (state_key, document, updated_at_ms)
		 VALUES (?, ?, ?)
		 ON CONFLICT(state_key) DO UPDATE SET
			document = excluded.document,
			updated_at_ms = excluded.updated_at_ms`,
		behaviorKey, string(data), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save behavior document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Delete(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM behavior_state WHERE state_key = ?`, behaviorKey)
	if err != nil {
		return fmt.Errorf("delete behavior document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
