package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/travelrec/internal/apperr"
	"github.com/starford/travelrec/internal/models"
	"github.com/starford/travelrec/internal/testutil"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Data.Dir = filepath.Join(dir, "data")
	cfg.Index.Path = filepath.Join(dir, "index", "travelrec.db")
	return cfg
}

func TestOpenCreatesDataFiles(t *testing.T) {
	cfg := testConfig(t)
	app, err := Open(WithConfig(cfg))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	for _, name := range []string{"clients.json", "airlines.json", "flights.json", "travelrec.log"} {
		if _, err := os.Stat(filepath.Join(cfg.Data.Dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
	if _, err := os.Stat(cfg.IndexPath()); err != nil {
		t.Errorf("index not created: %v", err)
	}
}

func TestOpenWithoutIndex(t *testing.T) {
	cfg := testConfig(t)
	cfg.Index.Path = ""
	app, err := Open(WithConfig(cfg), WithLogger(testutil.QuietLogger()))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer app.Close()

	ctx := context.Background()
	if _, err := app.Service.AddClient(ctx, models.Client{Name: "A. Smith", Country: "UK"}); err != nil {
		t.Fatal(err)
	}
	found, err := app.Service.SearchClients(ctx, "smith")
	if err != nil || len(found) != 1 {
		t.Errorf("search = %v, %v", found, err)
	}
}

func TestOpenCorruptTableFails(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(cfg.Data.Dir, "flights.json")
	if err := os.WriteFile(path, []byte(`{"records": [{"id": "x"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Open(WithConfig(cfg), WithLogger(testutil.QuietLogger()))
	if !errors.Is(err, apperr.ErrCorrupt) {
		t.Fatalf("err = %v, want ErrCorrupt", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != `{"records": [{"id": "x"}]}` {
		t.Error("corrupt file was rewritten")
	}
}

func TestOpenRequiresConfig(t *testing.T) {
	if _, err := Open(); err == nil {
		t.Fatal("expected error without config")
	}
}
