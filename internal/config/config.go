// Package config loads the framepace command configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/framepace"
	"github.com/gogpu/gputypes"
)

// Config is the complete command configuration.
type Config struct {
	Width       uint32    `yaml:"width"`
	Height      uint32    `yaml:"height"`
	Rate        float64   `yaml:"rate"`         // target redraws per second
	PresentMode string    `yaml:"present_mode"` // fifo, fifo-relaxed, mailbox, immediate
	Format      string    `yaml:"format"`       // bgra8unorm, rgba8unorm or empty for the first supported
	ClearColor  []float64 `yaml:"clear_color"`  // r, g, b, a in [0, 1]
	Backend     string    `yaml:"backend"`      // vulkan, noop
	Title       string    `yaml:"title"`
	Headless    Headless  `yaml:"headless"`
}

// Headless configures the headless command.
type Headless struct {
	Frames    uint64       `yaml:"frames"`     // close after this many rendered frames, 0 = unlimited
	DurationS float64      `yaml:"duration_s"` // close after this many seconds, 0 = unlimited
	Buffers   int          `yaml:"buffers"`    // offscreen ring size
	Resizes   []ResizeStep `yaml:"resizes"`
}

// ResizeStep is a scripted resize for the headless command.
type ResizeStep struct {
	AfterMs int    `yaml:"after_ms"`
	Width   uint32 `yaml:"width"`
	Height  uint32 `yaml:"height"`
}

// Default returns the built-in configuration: an 800x600 window capped at
// 30 redraws per second, cleared to opaque green.
func Default() *Config {
	return &Config{
		Width:       800,
		Height:      600,
		Rate:        framepace.DefaultTargetRate,
		PresentMode: framepace.PresentModeFifo.String(),
		ClearColor:  []float64{0, 1, 0, 1},
		Backend:     "vulkan",
		Title:       "framepace",
		Headless: Headless{
			Frames:  300,
			Buffers: 2,
		},
	}
}

// Load reads a YAML configuration file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// TextureFormat returns the preferred surface format, or
// TextureFormatUndefined to use the first supported one.
func (c *Config) TextureFormat() gputypes.TextureFormat {
	f, _ := parseFormat(c.Format)
	return f
}

// Clear returns the clear color.
func (c *Config) Clear() gputypes.Color {
	if len(c.ClearColor) != 4 {
		return framepace.DefaultClearColor
	}
	return gputypes.Color{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}
}

// Duration returns the headless run duration.
func (h Headless) Duration() time.Duration {
	return time.Duration(h.DurationS * float64(time.Second))
}

// Options translates the configuration into framepace options.
func (c *Config) Options() []framepace.Option {
	mode, _ := framepace.ParsePresentMode(c.PresentMode)
	return []framepace.Option{
		framepace.WithTargetRate(c.Rate),
		framepace.WithPresentMode(mode),
		framepace.WithPreferredFormat(c.TextureFormat()),
		framepace.WithClearColor(c.Clear()),
	}
}

func parseFormat(s string) (gputypes.TextureFormat, error) {
	switch s {
	case "":
		return gputypes.TextureFormatUndefined, nil
	case "bgra8unorm":
		return gputypes.TextureFormatBGRA8Unorm, nil
	case "rgba8unorm":
		return gputypes.TextureFormatRGBA8Unorm, nil
	default:
		return gputypes.TextureFormatUndefined, fmt.Errorf("unknown format %q", s)
	}
}
