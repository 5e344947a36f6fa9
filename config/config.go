// Package config reads the sitebook configuration from SITEBOOK_* environment
// variables. Command line flags override it.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/caarlos0/env/v11"
	"github.com/etnz/sitebook"
	"github.com/etnz/sitebook/date"
)

// Storage backends.
const (
	Bolt   = "bolt"
	SQLite = "sqlite"
	File   = "file"
	Memory = "memory"
)

// Backends lists the supported storage backends.
var Backends = []string{Bolt, SQLite, File, Memory}

// Config is the sitebook configuration.
type Config struct {
	Storage        string `env:"SITEBOOK_STORAGE"         envDefault:"bolt"`
	Path           string `env:"SITEBOOK_PATH"`
	Key            string `env:"SITEBOOK_KEY"             envDefault:"sitebook_data"`
	Currency       string `env:"SITEBOOK_CURRENCY"        envDefault:"INR"`
	DateFormat     string `env:"SITEBOOK_DATE_FORMAT"     envDefault:"DD/MM/YYYY"`
	MaxAttachments int    `env:"SITEBOOK_MAX_ATTACHMENTS" envDefault:"5"`
	Quota          int    `env:"SITEBOOK_QUOTA"           envDefault:"5242880"`
}

// Load parses the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the values that cannot be checked on use.
func (c Config) Validate() error {
	if !slices.Contains(Backends, c.Storage) {
		return fmt.Errorf("unknown storage %q, want one of %v", c.Storage, Backends)
	}
	switch c.DateFormat {
	case date.DayMonthYear, date.MonthDayYear, date.YearMonthDay:
	default:
		return fmt.Errorf("unknown date format %q", c.DateFormat)
	}
	if c.MaxAttachments < 0 {
		return fmt.Errorf("invalid max attachments %d", c.MaxAttachments)
	}
	return nil
}

// StoragePath returns Path, or the default location of the backend in the
// user config directory.
func (c Config) StoragePath() (string, error) {
	if c.Path != "" {
		return c.Path, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot find a default storage location, set SITEBOOK_PATH: %w", err)
	}
	dir = filepath.Join(dir, "sitebook")
	switch c.Storage {
	case Bolt:
		return filepath.Join(dir, "sitebook.db"), nil
	case SQLite:
		return filepath.Join(dir, "sitebook.sqlite"), nil
	default:
		return dir, nil
	}
}

// Settings returns the settings of new documents.
func (c Config) Settings() sitebook.Settings {
	s := sitebook.DefaultSettings()
	if c.Currency != "" {
		s.Currency = sitebook.CurrencySymbol(c.Currency)
	}
	if c.DateFormat != "" {
		s.DateFormat = c.DateFormat
	}
	return s
}
