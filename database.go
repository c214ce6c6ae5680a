package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store owns the process-wide database handle. The connection is opened
// and the schema applied on first use, then reused until Close.
type Store struct {
	dsn string
	now func() time.Time

	once sync.Once
	db   *sql.DB
	err  error
}

func NewStore(dsn string) *Store {
	return &Store{
		dsn: dsn,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) conn(ctx context.Context) (*sql.DB, error) {
	s.once.Do(func() {
		// the handle outlives the request that happens to open it
		ctx := context.WithoutCancel(ctx)
		db, err := openDB(ctx, s.dsn)
		if err != nil {
			s.err = fmt.Errorf("opening database: %w", err)
			return
		}
		if err := initDB(ctx, db); err != nil {
			db.Close()
			s.err = fmt.Errorf("initializing database: %w", err)
			return
		}
		s.db = db
	})
	return s.db, s.err
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// every new connection to :memory: is a new, empty database
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func initDB(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id TEXT PRIMARY KEY,
		author_id TEXT NOT NULL REFERENCES accounts(id),
		title TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_author_updated ON posts(author_id, updated_at DESC);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return err
	}

	return migrateDB(ctx, db)
}

func migrateDB(ctx context.Context, db *sql.DB) error {
	// Databases created before tags were introduced lack the column
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info('posts') WHERE name='tags'`).Scan(&count)
	if err != nil {
		return err
	}

	if count == 0 {
		_, err = db.ExecContext(ctx, `ALTER TABLE posts ADD COLUMN tags TEXT NOT NULL DEFAULT '[]'`)
		if err != nil {
			return err
		}
	}

	return nil
}
