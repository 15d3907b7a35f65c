package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/device"
	"github.com/gogpu/framepace/internal/headless"
	"github.com/gogpu/framepace/internal/offscreen"
	"github.com/gogpu/framepace/program"
)

// Headless runs the presentation loop against offscreen targets.
func Headless(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.Error("configuration", "err", err)
		return err
	}

	var cleanup releaser
	ok := false
	defer func() {
		if !ok {
			cleanup.run()
		}
	}()

	dev, err := device.Open(device.WithBackend(cfg.Backend), device.WithAdapter(ctx.Int("adapter")))
	if err != nil {
		return err
	}
	cleanup.add(dev.Destroy)

	surf := offscreen.New(dev.HalDevice(), dev.HalQueue(), offscreen.WithBuffers(cfg.Headless.Buffers))
	opts := cfg.Options()
	sm := framepace.NewSurfaceManager(surf, opts...)
	sc, err := sm.Initialize(surf.Capabilities(), cfg.Width, cfg.Height)
	if err != nil {
		return err
	}
	cleanup.add(sm.Release)

	prog, err := program.New(dev.HalDevice(), sc.Format)
	if err != nil {
		return err
	}
	cleanup.add(prog.Destroy)

	pres, err := framepace.NewPresenter(dev.HalDevice(), dev.HalQueue(), prog, opts...)
	if err != nil {
		return err
	}

	script := make([]headless.Resize, len(cfg.Headless.Resizes))
	for i, r := range cfg.Headless.Resizes {
		script[i] = headless.Resize{
			After:  time.Duration(r.AfterMs) * time.Millisecond,
			Width:  r.Width,
			Height: r.Height,
		}
	}
	src := headless.New(
		headless.WithFrames(cfg.Headless.Frames),
		headless.WithDuration(cfg.Headless.Duration()),
		headless.WithResizes(script...),
	)

	// From here on the scheduler owns teardown, in reverse acquisition order.
	ok = true
	sched := framepace.NewFrameScheduler(src, sm, pres, framepace.NewFrameCounter(opts...), opts...)
	sched.OnClose(dev.Destroy)
	sched.OnClose(sm.Release)
	sched.OnClose(prog.Destroy)
	sched.OnClose(pres.Destroy)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	if err := sched.Run(runCtx); err != nil {
		logger.Error("headless run failed", "err", err, "rendered", sched.Rendered())
		return err
	}

	stats := sched.Stats()
	logger.Info("headless run finished",
		"rendered", sched.Rendered(), "skipped", sched.Skipped(),
		"presented", surf.Presented(), "elapsed", time.Since(start).Round(time.Millisecond),
		"fps", stats.LastFPS, "frame_ms", stats.LastFrameTimeMs, "title", src.Title())
	return nil
}
