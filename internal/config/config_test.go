package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/framepace"
	"github.com/gogpu/gputypes"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate(Default()) = %v", err)
	}
	if cfg.Clear() != framepace.DefaultClearColor {
		t.Errorf("Clear() = %+v, want %+v", cfg.Clear(), framepace.DefaultClearColor)
	}
	if cfg.TextureFormat() != gputypes.TextureFormatUndefined {
		t.Errorf("TextureFormat() = %v, want undefined", cfg.TextureFormat())
	}
}

func TestParse(t *testing.T) {
	data := []byte(`
width: 1280
height: 720
rate: 60
present_mode: mailbox
format: rgba8unorm
clear_color: [0.1, 0.2, 0.3, 1]
backend: noop
headless:
  frames: 10
  duration_s: 1.5
  resizes:
    - {after_ms: 0, width: 640, height: 360}
    - {after_ms: 100, width: 0, height: 0}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	if cfg.Width != 1280 || cfg.Height != 720 || cfg.Rate != 60 {
		t.Errorf("size/rate = %dx%d@%v", cfg.Width, cfg.Height, cfg.Rate)
	}
	if cfg.TextureFormat() != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("TextureFormat() = %v", cfg.TextureFormat())
	}
	if got := cfg.Clear(); got != (gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}) {
		t.Errorf("Clear() = %+v", got)
	}
	if cfg.Backend != "noop" {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	// Unset fields keep their defaults.
	if cfg.Title != "framepace" || cfg.Headless.Buffers != 2 {
		t.Errorf("defaults lost: title=%q buffers=%d", cfg.Title, cfg.Headless.Buffers)
	}
	if cfg.Headless.Duration() != 1500*time.Millisecond {
		t.Errorf("Duration() = %v", cfg.Headless.Duration())
	}
	if len(cfg.Headless.Resizes) != 2 || cfg.Headless.Resizes[1].AfterMs != 100 {
		t.Errorf("Resizes = %+v", cfg.Headless.Resizes)
	}
	if opts := cfg.Options(); len(opts) != 4 {
		t.Errorf("Options() returned %d options", len(opts))
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero width", "width: 0", "width and height"},
		{"negative rate", "rate: -1", "rate"},
		{"present mode", "present_mode: vsync", "present_mode"},
		{"format", "format: r16float", "format"},
		{"color length", "clear_color: [1, 0, 0]", "clear_color"},
		{"color range", "clear_color: [2, 0, 0, 1]", "clear_color"},
		{"backend", "backend: dx12", "backend"},
		{"duration", "headless: {duration_s: -1}", "duration_s"},
		{"resize order", "headless: {resizes: [{after_ms: 10}, {after_ms: 5}]}", "after_ms"},
		{"syntax", "width: [", "parse"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Parse() = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	cfg := Default()
	cfg.Rate = 0
	cfg.PresentMode = ""
	cfg.Backend = ""
	cfg.Title = ""
	cfg.Headless.Buffers = 0
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if cfg.Rate != framepace.DefaultTargetRate || cfg.PresentMode != "fifo" || cfg.Backend != "vulkan" ||
		cfg.Title != "framepace" || cfg.Headless.Buffers != 2 {
		t.Errorf("defaults not filled: %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "framepace.yaml")
	if err := os.WriteFile(path, []byte("rate: 15\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() = %v", err)
	}
	if cfg.Rate != 15 {
		t.Errorf("Rate = %v, want 15", cfg.Rate)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}
