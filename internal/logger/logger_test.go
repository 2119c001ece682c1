package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  zapcore.Level
	}{
		{"debug", "debug", zapcore.DebugLevel},
		{"warn", "warn", zapcore.WarnLevel},
		{"error", "error", zapcore.ErrorLevel},
		{"invalid falls back to info", "loud", zapcore.InfoLevel},
		{"empty falls back to info", "", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Level = tt.level

			log, level, err := New(cfg)
			require.NoError(t, err)
			require.NotNil(t, log)
			assert.Equal(t, tt.want, level.Level())
		})
	}
}

func TestNew_AtomicLevelChangesAtRuntime(t *testing.T) {
	log, level, err := New(DefaultConfig())
	require.NoError(t, err)

	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	level.SetLevel(zapcore.DebugLevel)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNew_FileSink(t *testing.T) {
	cfg := DefaultConfig()
	cfg.File = filepath.Join(t.TempDir(), "logs", "linktrack.log")

	log, _, err := New(cfg)
	require.NoError(t, err)

	log.Info("file sink check")
	_ = log.Sync()

	data, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(data), "file sink check")
}

func TestNew_Development(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Development = true

	log, _, err := New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, log)
}
