package config

import (
	"fmt"

	"github.com/gogpu/framepace"
)

// Validate checks the configuration and fills in defaults for optional
// zero values.
func Validate(cfg *Config) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("width and height must be > 0, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("rate must be >= 0, got %v", cfg.Rate)
	}
	if cfg.Rate == 0 {
		cfg.Rate = framepace.DefaultTargetRate
	}

	if cfg.PresentMode == "" {
		cfg.PresentMode = framepace.PresentModeFifo.String()
	}
	if _, err := framepace.ParsePresentMode(cfg.PresentMode); err != nil {
		return fmt.Errorf("present_mode: %w", err)
	}

	if _, err := parseFormat(cfg.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	if err := validateColor(cfg.ClearColor); err != nil {
		return fmt.Errorf("clear_color: %w", err)
	}

	switch cfg.Backend {
	case "vulkan", "noop":
	case "":
		cfg.Backend = "vulkan"
	default:
		return fmt.Errorf("backend must be vulkan or noop, got %q", cfg.Backend)
	}

	if cfg.Title == "" {
		cfg.Title = "framepace"
	}

	return validateHeadless(&cfg.Headless)
}

func validateColor(c []float64) error {
	if len(c) != 4 {
		return fmt.Errorf("must have 4 components, got %d", len(c))
	}
	for i, v := range c {
		if v < 0 || v > 1 {
			return fmt.Errorf("component %d out of range [0, 1]: %v", i, v)
		}
	}
	return nil
}

func validateHeadless(h *Headless) error {
	if h.DurationS < 0 {
		return fmt.Errorf("headless.duration_s must be >= 0, got %v", h.DurationS)
	}
	if h.Buffers <= 0 {
		h.Buffers = 2 // default
	}
	last := -1
	for i, r := range h.Resizes {
		if r.AfterMs < 0 {
			return fmt.Errorf("headless.resizes[%d]: after_ms must be >= 0", i)
		}
		if r.AfterMs < last {
			return fmt.Errorf("headless.resizes[%d]: after_ms must not decrease (%d < %d)", i, r.AfterMs, last)
		}
		last = r.AfterMs
	}
	return nil
}
