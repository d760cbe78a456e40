package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Logging LoggingConfig `toml:"logging" yaml:"logging"`
	Clock   ClockConfig   `toml:"clock" yaml:"clock"`
	Window  WindowConfig  `toml:"window" yaml:"window"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Systems SystemsConfig `toml:"systems" yaml:"systems"`
}

type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"` // "console" or "json"
}

type ClockConfig struct {
	FixedDeltaTime   float64 `toml:"fixed_delta_time" yaml:"fixed_delta_time"` // seconds per fixed tick
	MaxFixedSubSteps int     `toml:"max_fixed_sub_steps" yaml:"max_fixed_sub_steps"`
	TimeScale        float64 `toml:"time_scale" yaml:"time_scale"`
	FrameRate        float64 `toml:"frame_rate" yaml:"frame_rate"` // 0 = uncapped
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
}

type RenderConfig struct {
	Debug          bool       `toml:"debug" yaml:"debug"`
	MSAA           int        `toml:"msaa" yaml:"msaa"`
	VSync          bool       `toml:"vsync" yaml:"vsync"`
	ClearColor     [4]float64 `toml:"clear_color" yaml:"clear_color"`
	PrewarmWorkers int        `toml:"prewarm_workers" yaml:"prewarm_workers"`
}

type SystemsConfig struct {
	Debug bool `toml:"debug" yaml:"debug"` // re-panic on system callback failures
}

// Load reads a TOML or YAML file (by extension) on top of Defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Clock: ClockConfig{
			FixedDeltaTime:   1.0 / 50.0,
			MaxFixedSubSteps: 3,
			TimeScale:        1.0,
			FrameRate:        0,
		},
		Window: WindowConfig{
			Title:  "Oxy ECS",
			Width:  1280,
			Height: 720,
		},
		Render: RenderConfig{
			Debug:          false,
			MSAA:           4,
			VSync:          true,
			ClearColor:     [4]float64{0.1, 0.1, 0.1, 1.0},
			PrewarmWorkers: 4,
		},
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.Clock.FixedDeltaTime <= 0 {
		errs = append(errs, fmt.Errorf("clock.fixed_delta_time must be > 0, got %v", c.Clock.FixedDeltaTime))
	}
	if c.Clock.MaxFixedSubSteps < 1 {
		errs = append(errs, fmt.Errorf("clock.max_fixed_sub_steps must be >= 1, got %d", c.Clock.MaxFixedSubSteps))
	}
	if c.Clock.TimeScale < 0 {
		errs = append(errs, fmt.Errorf("clock.time_scale must be >= 0, got %v", c.Clock.TimeScale))
	}
	if c.Clock.FrameRate < 0 {
		errs = append(errs, fmt.Errorf("clock.frame_rate must be >= 0, got %v", c.Clock.FrameRate))
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}
	switch c.Render.MSAA {
	case 1, 4:
	default:
		errs = append(errs, fmt.Errorf("render.msaa must be 1 or 4, got %d", c.Render.MSAA))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	return errors.Join(errs...)
}
