package main

import (
	"context"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(":memory:")
	if _, err := store.conn(context.Background()); err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGetSetting_NotFound(t *testing.T) {
	store := setupTestStore(t)

	value, err := store.getSetting(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("getSetting() error: %v", err)
	}

	if value != "" {
		t.Errorf("expected empty string for nonexistent key, got '%s'", value)
	}
}

func TestSetSetting_Upsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.setSetting(ctx, "key", "first"); err != nil {
		t.Fatalf("setSetting() error: %v", err)
	}
	if err := store.setSetting(ctx, "key", "second"); err != nil {
		t.Fatalf("setSetting() error: %v", err)
	}

	value, err := store.getSetting(ctx, "key")
	if err != nil {
		t.Fatalf("getSetting() error: %v", err)
	}
	if value != "second" {
		t.Errorf("expected 'second', got '%s'", value)
	}
}

func TestSigningKey_Configured(t *testing.T) {
	store := setupTestStore(t)

	key, err := store.signingKey(context.Background(), "from-env")
	if err != nil {
		t.Fatalf("signingKey() error: %v", err)
	}
	if string(key) != "from-env" {
		t.Errorf("expected configured key, got %q", key)
	}

	stored, _ := store.getSetting(context.Background(), tokenSecretKey)
	if stored != "" {
		t.Error("expected configured key not to be persisted")
	}
}

func TestSigningKey_GeneratedOnceAndReused(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first, err := store.signingKey(ctx, "")
	if err != nil {
		t.Fatalf("signingKey() error: %v", err)
	}
	if len(first) != 64 { // 32 bytes = 64 hex chars
		t.Errorf("expected key length 64, got %d", len(first))
	}

	second, err := store.signingKey(ctx, "")
	if err != nil {
		t.Fatalf("signingKey() error: %v", err)
	}
	if string(first) != string(second) {
		t.Error("expected the persisted key to be reused")
	}
}
