package config_test

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/fsmcheck/internal/config"
)

// clearEnv unsets every fsmcheck variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"FSMCHECK_DB", "FSMCHECK_LOG_LEVEL", "FSMCHECK_MAX_STEPS"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, config.Config{DB: "fsmcheck.db", LogLevel: "warn", MaxSteps: 0}, cfg)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("FSMCHECK_DB", "/tmp/ledger.db")
	t.Setenv("FSMCHECK_LOG_LEVEL", "DEBUG")
	t.Setenv("FSMCHECK_MAX_STEPS", "100")

	cfg, err := config.Load("testdata/.env.test")
	require.NoError(t, err)

	// Process environment wins over the file.
	assert.Equal(t, "/tmp/ledger.db", cfg.DB)
	assert.Equal(t, 100, cfg.MaxSteps)

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_FromEnvFile(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("testdata/.env.test")
	require.NoError(t, err)

	assert.Equal(t, "ledger-from-file.db", cfg.DB)
	assert.Equal(t, 25, cfg.MaxSteps)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_MissingNamedFile(t *testing.T) {
	clearEnv(t)

	_, err := config.Load("testdata/.env.missing")
	assert.ErrorIs(t, err, config.ErrLoadingEnvFile)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
	}{
		{"max steps not a number", "FSMCHECK_MAX_STEPS", "many", config.ErrParsingConfig},
		{"negative max steps", "FSMCHECK_MAX_STEPS", "-1", config.ErrInvalidConfig},
		{"unknown level", "FSMCHECK_LOG_LEVEL", "chatty", config.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_EmptyDB(t *testing.T) {
	err := config.Config{LogLevel: "info"}.Validate()
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "FSMCHECK_DB")
}
