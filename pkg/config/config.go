// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/happlay/pkg/adapters/osfilesystem"
	"github.com/user/happlay/pkg/player"
	"github.com/user/happlay/pkg/ports"
	"github.com/user/happlay/pkg/sheet"
	"github.com/user/happlay/pkg/stream"
)

// Config represents the full configuration for happlay.
type Config struct {
	// Resolution
	AssetRoot string `yaml:"asset_root"`
	PathMode  string `yaml:"path_mode"` // "streaming_assets" or "local"

	// Playback
	Loop            bool    `yaml:"loop"`
	Speed           float64 `yaml:"speed"`
	DecodeTimeoutMs int     `yaml:"decode_timeout_ms"`
	DecodeWorkers   int     `yaml:"decode_workers"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Metrics
	MetricsAddr string `yaml:"metrics_addr"`

	Sheet    SheetConfig    `yaml:"sheet"`
	Generate GenerateConfig `yaml:"generate"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// SheetConfig represents contact sheet settings.
type SheetConfig struct {
	Count       int         `yaml:"count"`
	Columns     int         `yaml:"columns"`
	ThumbWidth  int         `yaml:"thumb_width"`
	Gap         int         `yaml:"gap"`
	Padding     int         `yaml:"padding"`
	LabelHeight int         `yaml:"label_height"`
	FontPath    string      `yaml:"font_path"`
	Theme       ThemeConfig `yaml:"theme"`
}

// ThemeConfig represents theming options.
type ThemeConfig struct {
	BackgroundColor string `yaml:"background_color"`
	BorderColor     string `yaml:"border_color"`
	TextColor       string `yaml:"text_color"`
	FailedColor     string `yaml:"failed_color"`
}

// GenerateConfig holds the defaults of make-rgb-cycle.
type GenerateConfig struct {
	Width      int      `yaml:"width"`
	Height     int      `yaml:"height"`
	Duration   float64  `yaml:"duration"`
	Rates      []string `yaml:"rates"`
	Format     string   `yaml:"format"`
	Compressor string   `yaml:"compressor"`
	Chunks     int      `yaml:"chunks"`
	Layout     string   `yaml:"layout"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		AssetRoot: "StreamingAssets",
		PathMode:  "local",

		Loop:  true,
		Speed: 1,

		LogLevel: "info",

		Sheet: SheetConfig{
			Count:       12,
			Columns:     4,
			ThumbWidth:  160,
			Gap:         8,
			Padding:     16,
			LabelHeight: 18,
			Theme: ThemeConfig{
				BackgroundColor: "#1a1a2e",
				BorderColor:     "#333355",
				TextColor:       "#ffffff",
				FailedColor:     "#e53e3e",
			},
		},

		Generate: GenerateConfig{
			Width:      1920,
			Height:     1080,
			Duration:   3,
			Rates:      []string{"24", "24000/1001", "25", "30", "30000/1001", "50", "60", "60000/1001"},
			Format:     "hap",
			Compressor: "snappy",
			Chunks:     1,
			Layout:     "progressive",
		},

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Mode returns the configured path mode.
func (c Config) Mode() ports.PathMode {
	return ports.ParsePathMode(c.PathMode)
}

// Level returns the configured log level.
func (c Config) Level() ports.LogLevel {
	return ports.ParseLogLevel(c.LogLevel)
}

// DecodeTimeout returns the decode timeout, zero when unset.
func (c Config) DecodeTimeout() time.Duration {
	return time.Duration(c.DecodeTimeoutMs) * time.Millisecond
}

// ToPlayerOptions converts the playback settings to player options. The
// file system resolves StreamingAssets paths against AssetRoot.
func (c Config) ToPlayerOptions() []player.Option {
	opts := []player.Option{
		player.WithFileSystem(osfilesystem.NewWithAssetRoot(c.AssetRoot)),
		player.WithLoop(c.Loop),
		player.WithSpeed(c.Speed),
		player.WithDecodeWorkers(c.DecodeWorkers),
	}
	if d := c.DecodeTimeout(); d > 0 {
		opts = append(opts, player.WithDecodeTimeout(d))
	}
	return opts
}

// ToSheetOptions converts the sheet settings to sheet.Options.
func (c Config) ToSheetOptions() sheet.Options {
	s := c.Sheet
	return sheet.Options{
		Count:       s.Count,
		Columns:     s.Columns,
		ThumbWidth:  s.ThumbWidth,
		Gap:         s.Gap,
		Padding:     s.Padding,
		LabelHeight: s.LabelHeight,
		FontPath:    s.FontPath,
		Background:  ParseColor(s.Theme.BackgroundColor),
		BorderColor: ParseColor(s.Theme.BorderColor),
		LabelColor:  ParseColor(s.Theme.TextColor),
		FailedColor: ParseColor(s.Theme.FailedColor),
	}
}

// ToEncoderOptions converts the generate settings to encoder options.
func (c Config) ToEncoderOptions() (ports.EncoderOptions, error) {
	v, err := stream.ParseVariantName(c.Generate.Format)
	if err != nil {
		return ports.EncoderOptions{}, err
	}
	return ports.EncoderOptions{
		Variant:    v,
		Compressor: c.Generate.Compressor,
		Chunks:     c.Generate.Chunks,
		Layout:     c.Generate.Layout,
	}, nil
}

// GenerateRates parses the configured frame rates.
func (c Config) GenerateRates() ([]stream.Rational, error) {
	rates := make([]stream.Rational, 0, len(c.Generate.Rates))
	for _, s := range c.Generate.Rates {
		r, err := stream.ParseRational(s)
		if err != nil {
			return nil, err
		}
		if !r.Valid() {
			return nil, fmt.Errorf("invalid frame rate %q", s)
		}
		rates = append(rates, r)
	}
	return rates, nil
}

// ParseColor parses "#RRGGBB" or "#RRGGBBAA". Malformed input yields black.
func ParseColor(hex string) color.Color {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.Black
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.Black
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	// Alpha is straight, not premultiplied.
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}
