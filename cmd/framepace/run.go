package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"

	"github.com/gogpu/framepace"
	"github.com/gogpu/framepace/device"
	"github.com/gogpu/framepace/internal/halsurface"
	"github.com/gogpu/framepace/internal/window"
	"github.com/gogpu/framepace/program"
)

// Run opens a window and drives the presentation loop until it closes.
func Run(ctx *cli.Context) error {
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

	win, err := window.New(int(cfg.Width), int(cfg.Height), cfg.Title)
	if err != nil {
		return err
	}
	cleanup.add(win.Destroy)

	dev, err := device.Open(device.WithBackend(cfg.Backend), device.WithAdapter(ctx.Int("adapter")))
	if err != nil {
		return err
	}
	cleanup.add(dev.Destroy)

	display, handle := win.NativeHandles()
	surf, err := halsurface.New(dev.HalInstance(), dev.HalDevice(), dev.HalQueue(), display, handle)
	if err != nil {
		return fmt.Errorf("%w: %w", framepace.ErrNoAdapter, err)
	}
	cleanup.add(surf.Destroy)

	opts := cfg.Options()
	sm := framepace.NewSurfaceManager(surf, opts...)
	fbw, fbh := win.FramebufferSize()
	sc, err := sm.Initialize(surf.Capabilities(dev.HalAdapter()), fbw, fbh)
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
	cleanup.add(pres.Destroy)

	// From here on the scheduler owns teardown, in reverse acquisition order.
	ok = true
	sched := framepace.NewFrameScheduler(win, sm, pres, framepace.NewFrameCounter(opts...), opts...)
	sched.OnClose(win.Destroy)
	sched.OnClose(dev.Destroy)
	sched.OnClose(surf.Destroy)
	sched.OnClose(sm.Release)
	sched.OnClose(prog.Destroy)
	sched.OnClose(pres.Destroy)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("presentation loop started",
		"adapter", dev.Info().Name, "size", fmt.Sprintf("%dx%d", sc.Width, sc.Height),
		"format", sc.Format, "present_mode", sc.PresentMode.String(), "rate", cfg.Rate)

	if err := sched.Run(runCtx); err != nil {
		logger.Error("presentation loop failed", "err", err, "rendered", sched.Rendered())
		return err
	}
	logger.Info("presentation loop finished",
		"rendered", sched.Rendered(), "skipped", sched.Skipped(), "fps", sched.Stats().LastFPS)
	return nil
}
