package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore creates a store in a temp directory, cleaned up with the test.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "hanabi-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	s, err := New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "hanabi-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	dbPath := filepath.Join(tmpDir, "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	tables := []string{"fortunes", "trigger_log", "settings"}
	for _, table := range tables {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	settings := s.Settings()

	t.Run("missing key returns ErrNotFound", func(t *testing.T) {
		if _, err := settings.Get("absent"); err != ErrNotFound {
			t.Errorf("Get() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("set and get round trip", func(t *testing.T) {
		if err := settings.Set("detection_enabled", "true"); err != nil {
			t.Fatalf("Set() error: %v", err)
		}
		got, err := settings.Get("detection_enabled")
		if err != nil {
			t.Fatalf("Get() error: %v", err)
		}
		if got != "true" {
			t.Errorf("Get() = %q, want %q", got, "true")
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		settings.Set("k", "1")
		settings.Set("k", "2")
		if got, _ := settings.Get("k"); got != "2" {
			t.Errorf("Get() = %q, want %q", got, "2")
		}
	})

	t.Run("GetDefault falls back", func(t *testing.T) {
		if got := settings.GetDefault("nope", "fallback"); got != "fallback" {
			t.Errorf("GetDefault() = %q, want fallback", got)
		}
	})

	t.Run("delete removes the key", func(t *testing.T) {
		settings.Set("doomed", "x")
		if err := settings.Delete("doomed"); err != nil {
			t.Fatalf("Delete() error: %v", err)
		}
		if err := settings.Delete("doomed"); err != ErrNotFound {
			t.Errorf("second Delete() error = %v, want ErrNotFound", err)
		}
	})
}
