package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/travelrec/internal"
	pkgconfig "github.com/starford/travelrec/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if _, err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if dir := cmd.String("data-dir"); dir != "" {
		cfg.Data.Dir = dir
	}
	return cfg, nil
}

func runTUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func runReindex(ctx context.Context, cmd *cli.Command) error {
	return withApp(cmd, func(app *internal.App) error {
		if app.Config.Index.Path == "" {
			return fmt.Errorf("no search index configured")
		}
		if err := app.Service.Reindex(ctx); err != nil {
			return err
		}
		counts := app.Service.Counts(ctx)
		fmt.Fprintf(out(cmd), "reindexed %d clients, %d airlines, %d flights\n",
			counts["client"], counts["airline"], counts["flight"])
		return nil
	})
}

// withApp opens the application for a one-shot command and closes it after.
func withApp(cmd *cli.Command, fn func(*internal.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app, err := internal.Open(internal.WithConfig(cfg))
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(app)
}

func out(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "travelrec",
		Usage:  "Travel agency records: clients, airline companies and flights stored as JSON files",
		Action: runTUI,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Aliases: []string{"d"},
				Usage:   "Override the data directory from the config file",
				Sources: cli.EnvVars("TRAVELREC_DATA_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "tui",
				Usage:  "Open the terminal UI (default)",
				Action: runTUI,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the records to MCP clients over stdio",
				Action: runMCP,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the search index from the data files",
				Action: runReindex,
			},
			clientCommand(),
			airlineCommand(),
			flightCommand(),
		},
	}
}

func main() {
	cmd := newCommand()

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "travelrec:", err)
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
