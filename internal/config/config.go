package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alexanderramin/tasktree/internal/tasktree"
	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
)

// Config holds process settings read from TASKTREE_* environment variables.
type Config struct {
	DBPath string `env:"TASKTREE_DB"`

	// The tree is rebuilt once RefreshTicks periods of RefreshTick have
	// passed since the last rebuild.
	RefreshTick  time.Duration `env:"TASKTREE_REFRESH_TICK" envDefault:"1m"`
	RefreshTicks int           `env:"TASKTREE_REFRESH_TICKS" envDefault:"60"`

	HoursPerDay decimal.Decimal `env:"TASKTREE_HOURS_PER_DAY" envDefault:"8"`

	LogLevel    slog.Level `env:"TASKTREE_LOG_LEVEL" envDefault:"warn"`
	LogFormat   string     `env:"TASKTREE_LOG_FORMAT" envDefault:"text"`
	LogUseCases bool       `env:"TASKTREE_LOG_USE_CASES" envDefault:"false"`
}

// LoadConfig parses the environment, fills in the default database path
// (~/.tasktree/tasktree.db) and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("finding home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".tasktree", "tasktree.db")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.RefreshTick <= 0 {
		errs = append(errs, fmt.Errorf("TASKTREE_REFRESH_TICK must be positive, got %s", c.RefreshTick))
	}
	if c.RefreshTicks <= 0 {
		errs = append(errs, fmt.Errorf("TASKTREE_REFRESH_TICKS must be positive, got %d", c.RefreshTicks))
	}
	if !c.HoursPerDay.IsPositive() {
		errs = append(errs, fmt.Errorf("TASKTREE_HOURS_PER_DAY must be positive, got %s", c.HoursPerDay))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("TASKTREE_LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func (c Config) Expiry() tasktree.TickPolicy {
	return tasktree.TickPolicy{Tick: c.RefreshTick, Ticks: c.RefreshTicks}
}

// NewLogger builds the process logger writing to w.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
