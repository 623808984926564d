package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteKV is a [KV] backed by the kv table in the application database.
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates a key-value store over the given database connection.
// The kv table is created by the application migrations.
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

func (s *SQLiteKV) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow("SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query kv: %w", err)
	}
	return value, true, nil
}

func (s *SQLiteKV) Set(key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert kv: %w", err)
	}
	return nil
}

func (s *SQLiteKV) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete kv: %w", err)
	}
	return nil
}
