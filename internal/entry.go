// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/starford/travelrec/internal/index"
	"github.com/starford/travelrec/internal/mcpserver"
	"github.com/starford/travelrec/internal/recordservice"
	"github.com/starford/travelrec/internal/storage"
	"github.com/starford/travelrec/internal/tui"
)

// App is the wired application shared by every front-end.
type App struct {
	Config  *Config
	Logger  *slog.Logger
	Service *recordservice.Service

	db      *index.DB
	logFile io.Closer
}

// Open loads the configuration options, the log, the tables and the optional
// search index. Callers must Close the returned App.
func Open(opts ...Option) (*App, error) {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}

	cfg := app.config
	a := &App{Config: cfg, Logger: app.logger}

	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	if a.Logger == nil {
		var w io.Writer = os.Stderr
		if path := cfg.LogPath(); path != "" {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return nil, fmt.Errorf("open log file: %w", err)
			}
			w = f
			a.logFile = f
		}
		// Initialize structured JSON logger.
		a.Logger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(a.Logger)
	logger := a.Logger

	logger.Info("Configuration loaded",
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("index_path", cfg.IndexPath()),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	var idx index.RecordIndex
	if path := cfg.IndexPath(); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			a.Close()
			return nil, fmt.Errorf("create index dir: %w", err)
		}
		db, err := index.Open(path)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init index: %w", err)
		}
		a.db = db
		idx = db
	}

	files := recordservice.Files{
		Clients:  cfg.Data.ClientsFile,
		Airlines: cfg.Data.AirlinesFile,
		Flights:  cfg.Data.FlightsFile,
	}
	svc, err := recordservice.Open(store, files, idx, logger)
	if err != nil {
		logger.Error("load records failed", slog.String("error", err.Error()))
		a.Close()
		return nil, fmt.Errorf("load records: %w", err)
	}
	a.Service = svc
	return a, nil
}

// Close releases the index and the log file.
func (a *App) Close() error {
	var errs []error
	if a.db != nil {
		errs = append(errs, a.db.Close())
		a.db = nil
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
		a.logFile = nil
	}
	return errors.Join(errs...)
}

// Run starts the terminal UI with the given options. With watching enabled,
// tables edited outside the application are reloaded while it runs.
func Run(ctx context.Context, opts ...Option) error {
	a, err := Open(opts...)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.New(ctx, a.Service, logger)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	g, gCtx := errgroup.WithContext(ctx)

	if a.Config.Watch.Enabled {
		g.Go(func() error {
			return a.watch(gCtx, func(msg tea.Msg) { program.Send(msg) })
		})
	}

	g.Go(func() error {
		defer cancel()
		logger.Info("Starting terminal UI")
		if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("terminal UI error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Application stopped")
	return nil
}

// RunMCP serves the record tools over stdio until stdin closes.
func RunMCP(ctx context.Context, opts ...Option) error {
	a, err := Open(opts...)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.Logger

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := mcpserver.New(a.Service)

	g, gCtx := errgroup.WithContext(ctx)

	if a.Config.Watch.Enabled {
		g.Go(func() error {
			return a.watch(gCtx, nil)
		})
	}

	g.Go(func() error {
		defer cancel()
		logger.Info("Starting MCP server on stdio")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("MCP server error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// watch reloads changed tables until ctx ends. notify, when set, receives a
// tui message for each reload. A watcher that cannot start is logged and the
// front-end keeps running without it.
func (a *App) watch(ctx context.Context, notify func(tea.Msg)) error {
	err := storage.Watch(ctx, a.Config.Data.Dir, a.Logger, func(file string) {
		kind, changed, err := a.Service.Reload(ctx, file)
		if notify == nil {
			return
		}
		switch {
		case err != nil:
			notify(tui.ReloadErrorMsg{Err: err})
		case changed:
			notify(tui.ReloadedMsg{Kind: kind})
		}
	})
	if err != nil {
		a.Logger.Warn("watch data dir failed", slog.String("error", err.Error()))
	}
	return nil
}
