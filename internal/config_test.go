package internal

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/travelrec/pkg/config"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestDataConfig_RequiresDir(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Dir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty data dir should fail")
	}
}

func TestDataConfig_FileNames(t *testing.T) {
	for name, mutate := range map[string]func(*DataConfig){
		"directory":   func(c *DataConfig) { c.ClientsFile = "sub/clients.json" },
		"extension":   func(c *DataConfig) { c.FlightsFile = "flights.txt" },
		"same file":   func(c *DataConfig) { c.AirlinesFile = c.ClientsFile },
		"same flight": func(c *DataConfig) { c.FlightsFile = c.AirlinesFile },
	} {
		cfg := NewDefaultConfig()
		mutate(&cfg.Data)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestApplicationConfig_LogLevel(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.App.LogLevel = slog.Level(3)
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown log level should fail")
	}
}

func TestLogPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Dir = "/var/lib/travelrec"
	if got := cfg.LogPath(); got != filepath.Join("/var/lib/travelrec", "travelrec.log") {
		t.Errorf("default log path = %q", got)
	}
	cfg.App.LogFile = "-"
	if got := cfg.LogPath(); got != "" {
		t.Errorf("stderr log path = %q", got)
	}
	cfg.App.LogFile = "/tmp/app.log"
	if got := cfg.LogPath(); got != "/tmp/app.log" {
		t.Errorf("explicit log path = %q", got)
	}
}

func TestIndexPath(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Data.Dir = "/srv/data"
	if got := cfg.IndexPath(); got != filepath.Join("/srv/data", "travelrec.db") {
		t.Errorf("relative index path = %q", got)
	}
	cfg.Index.Path = "/tmp/idx.db"
	if got := cfg.IndexPath(); got != "/tmp/idx.db" {
		t.Errorf("absolute index path = %q", got)
	}
	cfg.Index.Path = ""
	if got := cfg.IndexPath(); got != "" {
		t.Errorf("disabled index path = %q", got)
	}
}

func TestLoadYAMLOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "app:\n  log_level: debug\ndata:\n  dir: " + dir + "\nindex:\n  path: \"\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.LogLevel != slog.LevelDebug {
		t.Errorf("log level = %v", cfg.App.LogLevel)
	}
	if cfg.Data.ClientsFile != "clients.json" || !cfg.Watch.Enabled {
		t.Errorf("defaults lost: %+v", cfg)
	}
	if cfg.Index.Path != "" {
		t.Errorf("index path = %q, want disabled", cfg.Index.Path)
	}
}

func TestLoadRejectsBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_ = os.WriteFile(path, []byte("app:\n  log_level: loud\n"), 0o644)
	err := pkgconfig.Load(path, NewDefaultConfig())
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("err = %v", err)
	}
}
