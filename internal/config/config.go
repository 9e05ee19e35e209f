// Package config loads fsmcheck settings from the environment.
//
// Values come from process environment variables, optionally seeded from
// .env files through github.com/joho/godotenv, and are parsed into Config
// with github.com/caarlos0/env/v11. Variables already set in the process
// win over .env files. Command-line flags override the loaded values.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	// ErrParsingConfig is returned when environment variables cannot be
	// parsed into Config.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrInvalidConfig is returned when a parsed value is out of range.
	ErrInvalidConfig = errors.New("invalid config")

	// ErrLoadingEnvFile is returned when an explicitly named .env file
	// cannot be read.
	ErrLoadingEnvFile = errors.New("failed to load env file")
)

// Config holds the settings shared by every command.
type Config struct {
	// DB is the path of the SQLite verdict ledger.
	DB string `env:"FSMCHECK_DB" envDefault:"fsmcheck.db"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"FSMCHECK_LOG_LEVEL" envDefault:"warn"`

	// MaxSteps caps the messages per scenario. Zero means unlimited.
	MaxSteps int `env:"FSMCHECK_MAX_STEPS" envDefault:"0"`
}

// Load reads files into the environment and parses Config.
//
// With no files, the default .env in the working directory is loaded if it
// exists. Named files must exist.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		// The default .env is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Join(ErrLoadingEnvFile, err)
		}
	} else if err := godotenv.Load(files...); err != nil {
		return Config{}, errors.Join(ErrLoadingEnvFile, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("%w: FSMCHECK_DB must not be empty", ErrInvalidConfig)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: FSMCHECK_MAX_STEPS must be >= 0, got %d", ErrInvalidConfig, c.MaxSteps)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: FSMCHECK_LOG_LEVEL %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}
