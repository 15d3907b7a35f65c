package main

import (
	"github.com/urfave/cli"

	"github.com/gogpu/framepace/internal/config"
)

// loadConfig reads the --config file, or the defaults, and applies the
// command line flags that were set explicitly.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	if ctx.IsSet("backend") {
		cfg.Backend = ctx.String("backend")
	}
	if ctx.IsSet("rate") {
		cfg.Rate = ctx.Float64("rate")
	}
	if ctx.IsSet("present-mode") {
		cfg.PresentMode = ctx.String("present-mode")
	}
	if ctx.IsSet("format") {
		cfg.Format = ctx.String("format")
	}
	if ctx.IsSet("width") {
		cfg.Width = uint32(max(ctx.Int("width"), 0))
	}
	if ctx.IsSet("height") {
		cfg.Height = uint32(max(ctx.Int("height"), 0))
	}
	if ctx.IsSet("title") {
		cfg.Title = ctx.String("title")
	}
	if ctx.IsSet("frames") {
		cfg.Headless.Frames = ctx.Uint64("frames")
	}
	if ctx.IsSet("duration") {
		cfg.Headless.DurationS = ctx.Duration("duration").Seconds()
	}
	if ctx.IsSet("buffers") {
		cfg.Headless.Buffers = ctx.Int("buffers")
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// releaser collects cleanup functions during setup so a failure part way
// through can unwind what was already created.
type releaser []func()

func (r *releaser) add(fn func()) { *r = append(*r, fn) }

// run calls the collected functions in reverse order.
func (r *releaser) run() {
	for i := len(*r) - 1; i >= 0; i-- {
		(*r)[i]()
	}
	*r = nil
}
