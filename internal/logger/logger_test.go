package logger_test

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	logpkg "github.com/maxviazov/cricket-stats-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production defaults",
			config: &logpkg.LoggerConfig{
				ServiceName:    "cricket-stats-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				Fields:         map[string]interface{}{"key": "value"},
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "unknown env",
			config: &logpkg.LoggerConfig{
				Env:   "wrong-env",
				Level: "debug",
			},
			expectError: true,
		},
		{
			name: "unknown level",
			config: &logpkg.LoggerConfig{
				Env:   "prod",
				Level: "invalid-level",
			},
			expectError: true,
		},
		{
			name: "unknown time format",
			config: &logpkg.LoggerConfig{
				Env:        "prod",
				TimeFormat: "kitchen",
			},
			expectError: true,
		},
		{
			name: "staging warn to stderr",
			config: &logpkg.LoggerConfig{
				Env:          "staging",
				Level:        "warn",
				OutputTarget: "stderr",
				TimeFormat:   "unix_ms",
			},
			wantLevel: zerolog.WarnLevel,
		},
		{
			name: "dev console without debug file",
			config: &logpkg.LoggerConfig{
				Env:    "dev",
				Level:  "info",
				Format: "console",
			},
			wantLevel: zerolog.InfoLevel,
		},
		{
			name: "prod error with caller",
			config: &logpkg.LoggerConfig{
				Env:        "prod",
				Level:      "error",
				WithCaller: true,
				Fields:     map[string]interface{}{"customField": "customValue"},
			},
			wantLevel: zerolog.ErrorLevel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logpkg.New(tc.config)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	cfg := &logpkg.LoggerConfig{}
	_, err := logpkg.New(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "cricket-stats-service", cfg.ServiceName)
	assert.True(t, cfg.Stacktrace)
}

func TestNew_DebugFileInDev(t *testing.T) {
	wd, wdErr := os.Getwd()
	if wdErr != nil {
		t.Fatal(wdErr)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, err := logpkg.New(&logpkg.LoggerConfig{Env: "dev", Level: "debug"})
	assert.NoError(t, err)

	_, statErr := os.Stat("logs/debug.log")
	assert.NoError(t, statErr)
}
