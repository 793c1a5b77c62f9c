// Package config handles viewer configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/minmap-viewer/internal/colormap"
	"github.com/ironsheep/minmap-viewer/internal/imaging"
)

// EnvLogLevel overrides Logging.Level when set.
const EnvLogLevel = "MINMAP_LOG_LEVEL"

// Palette names accepted in PaletteConfig.Kind.
const (
	PaletteRandom = "random"
	PaletteVivid  = "vivid"
)

// Config holds all viewer settings.
type Config struct {
	Ruler   imaging.Ruler `yaml:"ruler"`
	Export  ExportConfig  `yaml:"export"`
	Palette PaletteConfig `yaml:"palette"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig holds image output settings.
type ExportConfig struct {
	imaging.ExportOptions `yaml:",inline"`

	// DefaultFormat is the extension used by batch rendering.
	DefaultFormat string `yaml:"default_format"`
}

// PaletteConfig selects how initial mineral colors are drawn.
type PaletteConfig struct {
	Kind string `yaml:"kind"`

	// Seed makes draws reproducible. Zero means a fresh sequence per load.
	Seed uint64 `yaml:"seed"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Ruler: imaging.DefaultRuler(),
		Export: ExportConfig{
			ExportOptions: imaging.DefaultExportOptions(),
			DefaultFormat: "png",
		},
		Palette: PaletteConfig{Kind: PaletteRandom},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Generator returns the color generator described by the palette settings.
func (p PaletteConfig) Generator() colormap.Generator {
	switch {
	case p.Kind == PaletteVivid:
		return colormap.NewVivid(p.Seed)
	case p.Seed != 0:
		return colormap.NewSeededRandom(p.Seed)
	default:
		return colormap.NewRandom()
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Ruler.Length <= 0 || c.Ruler.Height <= 0 || c.Ruler.Thickness <= 0 {
		return fmt.Errorf("ruler length, height and thickness must be positive")
	}
	if c.Ruler.Margin < 0 {
		return fmt.Errorf("ruler margin must not be negative")
	}
	if c.Export.JPEGQuality < 1 || c.Export.JPEGQuality > 100 {
		return fmt.Errorf("jpeg_quality %d out of range 1-100", c.Export.JPEGQuality)
	}
	if c.Export.WebPQuality < 0 || c.Export.WebPQuality > 100 {
		return fmt.Errorf("webp_quality %v out of range 0-100", c.Export.WebPQuality)
	}
	if _, err := imaging.FormatFromPath("x." + c.Export.DefaultFormat); err != nil {
		return fmt.Errorf("default_format: %w", err)
	}
	switch c.Palette.Kind {
	case PaletteRandom, PaletteVivid:
	default:
		return fmt.Errorf("unknown palette %q", c.Palette.Kind)
	}
	return nil
}

// Load builds the configuration with priority defaults < file < environment.
// An empty path searches the standard locations; a missing file there is not
// an error, but an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.Logging.Level = lvl
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// findConfigFile looks for config in standard locations.
func findConfigFile() string {
	candidates := []string{"./minmap.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "minmap", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}
