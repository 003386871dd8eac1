package internal

import (
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Data  DataConfig        `yaml:"data"`
	Index IndexConfig       `yaml:"index"`
	Watch WatchConfig       `yaml:"watch"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	return c.Data.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	// LogFile receives the JSON log. Empty means travelrec.log in the data
	// directory; "-" means stderr.
	LogFile string `yaml:"log_file"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogLevel, validation.In(slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError)),
	)
}

// LogPath returns where the log is written, or "" for stderr.
func (c *Config) LogPath() string {
	switch c.App.LogFile {
	case "-":
		return ""
	case "":
		return filepath.Join(c.Data.Dir, "travelrec.log")
	}
	return c.App.LogFile
}

// DataConfig holds the data directory and the table file of each record
// type, relative to it.
type DataConfig struct {
	Dir          string `yaml:"dir"`
	ClientsFile  string `yaml:"clients_file"`
	AirlinesFile string `yaml:"airlines_file"`
	FlightsFile  string `yaml:"flights_file"`
}

// Validate validates the data configuration. The three files must be plain
// distinct names.
func (c *DataConfig) Validate() error {
	plain := validation.By(func(v interface{}) error {
		s, _ := v.(string)
		if filepath.Base(s) != s || filepath.Ext(s) != ".json" {
			return validation.NewError("validation_plain_json", "must be a .json file name without directories")
		}
		return nil
	})
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.ClientsFile, validation.Required, plain),
		validation.Field(&c.AirlinesFile, validation.Required, plain,
			validation.NotIn(c.ClientsFile).Error("must differ from clients_file")),
		validation.Field(&c.FlightsFile, validation.Required, plain,
			validation.NotIn(c.ClientsFile, c.AirlinesFile).Error("must differ from the other files")),
	); err != nil {
		return err
	}
	return nil
}

// IndexConfig holds the SQLite search index location. An empty path disables
// the index; search then scans records in memory. A relative path is inside
// the data directory.
type IndexConfig struct {
	Path string `yaml:"path"`
}

// IndexPath returns the resolved index location, or "" when disabled.
func (c *Config) IndexPath() string {
	if c.Index.Path == "" || filepath.IsAbs(c.Index.Path) {
		return c.Index.Path
	}
	return filepath.Join(c.Data.Dir, c.Index.Path)
}

// WatchConfig controls reloading tables edited outside the application.
type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Data: DataConfig{
			Dir:          "./data",
			ClientsFile:  "clients.json",
			AirlinesFile: "airlines.json",
			FlightsFile:  "flights.json",
		},
		Index: IndexConfig{
			Path: "travelrec.db",
		},
		Watch: WatchConfig{
			Enabled: true,
		},
	}
}
