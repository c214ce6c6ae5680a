package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
)

const tokenSecretKey = "token_secret"

func (s *Store) getSetting(ctx context.Context, key string) (string, error) {
	db, err := s.conn(ctx)
	if err != nil {
		return "", err
	}

	var value string
	err = db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) setSetting(ctx context.Context, key, value string) error {
	db, err := s.conn(ctx)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// signingKey returns the configured secret, or the one persisted from an
// earlier run, generating and storing a new one if neither exists.
func (s *Store) signingKey(ctx context.Context, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	stored, err := s.getSetting(ctx, tokenSecretKey)
	if err != nil {
		return nil, err
	}
	if stored != "" {
		return []byte(stored), nil
	}

	slog.Warn("TOKEN_SECRET not set, generating a signing key")

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating signing key: %w", err)
	}
	secret := hex.EncodeToString(b)
	if err := s.setSetting(ctx, tokenSecretKey, secret); err != nil {
		return nil, err
	}
	return []byte(secret), nil
}
