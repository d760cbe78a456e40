package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/Carmen-Shannon/oxy-ecs/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level, format string
		want          zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel},
		{"warn", "json", zapcore.WarnLevel},
		{"nonsense", "console", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		log, err := New(config.LoggingConfig{Level: tt.level, Format: tt.format})
		require.NoError(t, err)
		assert.True(t, log.Core().Enabled(tt.want))
		if tt.want > zapcore.DebugLevel {
			assert.False(t, log.Core().Enabled(tt.want-1))
		}
	}
}
