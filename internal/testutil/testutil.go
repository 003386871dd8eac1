// Package testutil provides shared test helpers for setting up data dirs,
// index databases and record services.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/travelrec/internal/index"
	"github.com/starford/travelrec/internal/recordservice"
	"github.com/starford/travelrec/internal/storage"
)

// TestDB creates a temporary SQLite index that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "travelrec-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.FS.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// TestService opens a record service over an empty data directory, backed by
// a SQLite index.
func TestService(t *testing.T) (*recordservice.Service, *storage.FS) {
	t.Helper()
	_, store := TestDataDir(t)
	svc, err := recordservice.Open(store, recordservice.DefaultFiles, TestDB(t), QuietLogger())
	if err != nil {
		t.Fatal(err)
	}
	return svc, store
}

// QuietLogger discards all output.
func QuietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
