// Package framepace renders a single frame's content to a window surface at
// a capped rate, adapting to resizes and reporting observed frame timing.
//
// # Overview
//
// The package is the frame scheduler and presentation loop. It is built from
// four components, leaves first:
//
//   - FrameCounter: counts completed cycles and commits averaged FPS and
//     frame time once per >= 1 s sample window.
//   - SurfaceManager: owns the surface configuration (format, size, present
//     mode), reconfigures it on resize and acquires one presentable target
//     per cycle.
//   - Presenter: acquire -> record one render pass (clear + 3-vertex draw)
//     -> submit -> present -> FrameCounter.Update.
//   - FrameScheduler: consumes window notifications, applies the fixed
//     interval TimingGate and requests continuous redraw.
//
// The window system, the device handshake and the renderable program are
// collaborators: see the device and program packages and the Surface and
// EventSource interfaces.
//
// # Quick Start
//
//	dev, err := device.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sm := framepace.NewSurfaceManager(surface)
//	cfg, err := sm.Initialize(caps, 800, 600)
//	prog, err := program.New(dev.HalDevice(), cfg.Format)
//	p, err := framepace.NewPresenter(dev.HalDevice(), dev.HalQueue(), prog)
//	fc := framepace.NewFrameCounter()
//
//	sched := framepace.NewFrameScheduler(events, sm, p, fc, framepace.WithTargetRate(30))
//	sched.OnClose(dev.Destroy)
//	sched.OnClose(sm.Release)
//	sched.OnClose(prog.Destroy)
//	sched.OnClose(p.Destroy)
//	err = sched.Run(ctx)
//
// # Pacing
//
// A redraw is rendered only when at least the target period has elapsed since
// the last rendered one. Early redraws are dropped, not queued, and the gate
// restarts from the actual firing time, so under overload the rate decays
// smoothly instead of bursting.
//
// # Errors
//
// ErrSurfaceLost is recovered by reconfiguring with the last known size and
// retrying once; a second failure is escalated to ErrDeviceLost, which ends
// the loop. No presentable target stays acquired on any error path.
//
// # Thread Safety
//
// The loop runs on one goroutine. Only FrameCounter statistics and the
// package logger may be read from other goroutines.
package framepace
