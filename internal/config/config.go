// Editor configuration loaded from an optional TOML file
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"
)

// Config holds every tunable of the editor.
type Config struct {
	Log     LogConfig    `toml:"log"`
	Window  WindowConfig `toml:"window"`
	Filters FilterConfig `toml:"filters"`
	Sliders SliderConfig `toml:"sliders"`
}

type LogConfig struct {
	Level string `toml:"level"`
	// Format is "json" or "text".
	Format string `toml:"format"`
}

type WindowConfig struct {
	Width  float32 `toml:"width"`
	Height float32 `toml:"height"`
}

// FilterConfig holds the parameters used by the one-click operations.
type FilterConfig struct {
	BlurIntensity int     `toml:"blur_intensity"`
	EdgeLow       float64 `toml:"edge_low"`
	EdgeHigh      float64 `toml:"edge_high"`
}

type Range struct {
	Min float64 `toml:"min"`
	Max float64 `toml:"max"`
}

// SliderConfig holds the ranges of the continuous preview sliders.
type SliderConfig struct {
	Scale      Range `toml:"scale"`
	Brightness Range `toml:"brightness"`
	Contrast   Range `toml:"contrast"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info", Format: "json"},
		Window: WindowConfig{Width: 1000, Height: 700},
		Filters: FilterConfig{
			BlurIntensity: 3,
			EdgeLow:       100,
			EdgeHigh:      200,
		},
		Sliders: SliderConfig{
			Scale:      Range{Min: 0.2, Max: 2.0},
			Brightness: Range{Min: -100, Max: 100},
			Contrast:   Range{Min: 0.5, Max: 2.0},
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("config %s: unknown key %s", path, undecoded[0].String())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, errors.New("window size must be positive"))
	}
	if c.Filters.BlurIntensity < 0 {
		errs = append(errs, errors.New("filters.blur_intensity must be non-negative"))
	}
	if c.Filters.EdgeLow < 0 || c.Filters.EdgeHigh < 0 {
		errs = append(errs, errors.New("filters edge thresholds must be non-negative"))
	}
	if c.Sliders.Scale.Min <= 0 {
		errs = append(errs, errors.New("sliders.scale.min must be positive"))
	}
	for name, r := range map[string]Range{
		"scale":      c.Sliders.Scale,
		"brightness": c.Sliders.Brightness,
		"contrast":   c.Sliders.Contrast,
	} {
		if r.Min >= r.Max {
			errs = append(errs, fmt.Errorf("sliders.%s: min %.2f must be below max %.2f", name, r.Min, r.Max))
		}
	}

	return errors.Join(errs...)
}

// NewLogger builds a logrus logger from the log section. Debug forces the
// debug level and the colored text formatter.
func (c Config) NewLogger(debug bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(c.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	if debug {
		logger.SetLevel(logrus.DebugLevel)
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
			ForceColors:   true,
		})
		return logger
	}

	logger.SetLevel(level)
	if c.Log.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return logger
}
