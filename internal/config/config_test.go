package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadTOMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "oxy.toml", `
[logging]
level = "debug"

[clock]
fixed_delta_time = 0.01
max_fixed_sub_steps = 5

[window]
title = "test"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.InDelta(t, 0.01, cfg.Clock.FixedDeltaTime, 1e-9)
	assert.Equal(t, 5, cfg.Clock.MaxFixedSubSteps)
	assert.InDelta(t, 1.0, cfg.Clock.TimeScale, 1e-9)
	assert.Equal(t, "test", cfg.Window.Title)
	assert.Equal(t, 1280, cfg.Window.Width)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "oxy.yaml", `
logging:
  format: json
render:
  msaa: 1
  debug: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 1, cfg.Render.MSAA)
	assert.True(t, cfg.Render.Debug)
	assert.Equal(t, 3, cfg.Clock.MaxFixedSubSteps)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero fixed delta", "[clock]\nfixed_delta_time = 0.0\n"},
		{"no sub steps", "[clock]\nmax_fixed_sub_steps = 0\n"},
		{"bad level", "[logging]\nlevel = \"loud\"\n"},
		{"bad format", "[logging]\nformat = \"xml\"\n"},
		{"bad msaa", "[render]\nmsaa = 2\n"},
		{"negative frame rate", "[clock]\nframe_rate = -1.0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, "bad.toml", tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultsValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())
}
