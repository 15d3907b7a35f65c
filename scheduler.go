package framepace

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// State is the scheduler's position in the event loop.
type State uint8

const (
	// StateIdle waits for the next notification.
	StateIdle State = iota

	// StateResizing applies a new surface size.
	StateResizing

	// StateRendering evaluates the gate and runs a render cycle.
	StateRendering

	// StateClosing is terminal; resources have been released.
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResizing:
		return "resizing"
	case StateRendering:
		return "rendering"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// CycleRenderer executes one render cycle against a surface manager.
// *Presenter implements it.
type CycleRenderer interface {
	RenderCycle(sm *SurfaceManager, fc *FrameCounter) error
}

// FrameScheduler drives the presentation loop: it consumes window
// notifications, reconfigures the surface on resize, gates redraws to the
// target period and triggers render cycles.
//
// A FrameScheduler is owned by the goroutine that calls Run or Handle.
type FrameScheduler struct {
	source   EventSource
	surfaces *SurfaceManager
	renderer CycleRenderer
	counter  *FrameCounter

	gate  TimingGate
	now   func() time.Time
	state State

	releases []func()
	rendered uint64
	skipped  uint64
}

// NewFrameScheduler creates a scheduler. The surface manager must already
// be initialized.
func NewFrameScheduler(source EventSource, surfaces *SurfaceManager, renderer CycleRenderer, counter *FrameCounter, opts ...Option) *FrameScheduler {
	o := applyOptions(opts)
	return &FrameScheduler{
		source:   source,
		surfaces: surfaces,
		renderer: renderer,
		counter:  counter,
		gate:     TimingGate{Period: o.period},
		now:      o.now,
		state:    StateIdle,
	}
}

// OnClose registers fn to run when the scheduler closes. Registered
// functions run in reverse registration order, so owners should register
// resources in acquisition order, including SurfaceManager.Release right
// after the surface is created. That way the presenter drains before the
// surface is unconfigured and the device is destroyed last.
func (s *FrameScheduler) OnClose(fn func()) {
	s.releases = append(s.releases, fn)
}

// Run requests the first redraw and processes notifications until a close
// notification arrives, the source is closed, ctx is done or a fatal error
// occurs. Resources are released before Run returns in every case.
func (s *FrameScheduler) Run(ctx context.Context) error {
	defer s.Close()

	if s.state == StateClosing {
		return nil
	}
	s.source.RequestRedraw()
	for {
		ev, err := s.source.Next(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				return nil
			}
			return err
		}
		closed, err := s.Handle(ev)
		if err != nil {
			return err
		}
		if closed {
			return nil
		}
	}
}

// Handle processes a single notification and reports whether the
// scheduler has reached StateClosing. A returned error is fatal; the
// caller should Close the scheduler.
func (s *FrameScheduler) Handle(ev Event) (closed bool, err error) {
	if s.state == StateClosing {
		return true, nil
	}

	switch ev.Kind {
	case EventClose:
		Logger().Info("close requested", "rendered", s.rendered, "skipped", s.skipped)
		s.Close()
		return true, nil

	case EventResize:
		s.state = StateResizing
		defer s.idle()
		if err := s.surfaces.Reconfigure(ev.Width, ev.Height); err != nil {
			if IsFatal(err) {
				return false, err
			}
			// A stale configuration surfaces as ErrSurfaceLost on the next
			// acquire and is recovered there.
			Logger().Warn("surface reconfigure failed", "width", ev.Width, "height", ev.Height, "err", err)
		}
		s.source.RequestRedraw()
		return false, nil

	case EventRedraw:
		s.state = StateRendering
		defer s.idle()
		if !s.gate.TryFire(s.now()) {
			s.skipped++
			s.source.RequestRedraw()
			return false, nil
		}
		ok, err := s.renderCycle()
		if err != nil {
			return false, err
		}
		if !ok {
			s.skipped++
			s.source.RequestRedraw()
			return false, nil
		}
		s.rendered++
		s.source.SetTitle(fmt.Sprintf("FPS: %.1f", s.counter.LastFPS()))
		s.source.RequestRedraw()
		return false, nil

	default:
		return false, nil
	}
}

func (s *FrameScheduler) idle() {
	if s.state != StateClosing {
		s.state = StateIdle
	}
}

// renderCycle runs one cycle and reports whether a frame was presented.
// A texture that is not ready yet skips the cycle without error. On a
// recoverable surface loss the surface is reconfigured with the last known
// size and the cycle is retried once; a second loss is escalated to
// ErrDeviceLost.
func (s *FrameScheduler) renderCycle() (bool, error) {
	err := s.renderer.RenderCycle(s.surfaces, s.counter)
	switch {
	case err == nil:
		return true, nil
	case IsThrottled(err):
		Logger().Debug("surface texture not ready, skipping cycle", "err", err)
		return false, nil
	case !IsRecoverable(err):
		return false, fmt.Errorf("render cycle: %w", err)
	}

	Logger().Warn("surface lost, reconfiguring", "err", err)
	if rerr := s.surfaces.Refresh(); rerr != nil {
		return false, fmt.Errorf("%w: reconfigure after surface loss: %w", ErrDeviceLost, rerr)
	}
	err = s.renderer.RenderCycle(s.surfaces, s.counter)
	switch {
	case err == nil:
		return true, nil
	case IsThrottled(err):
		Logger().Debug("surface texture not ready after reconfigure, skipping cycle", "err", err)
		return false, nil
	case IsFatal(err):
		return false, fmt.Errorf("render cycle retry: %w", err)
	}
	return false, fmt.Errorf("%w: render cycle retry: %w", ErrDeviceLost, err)
}

// Close moves the scheduler to StateClosing, discards any outstanding
// target and runs the OnClose functions in reverse order. The surface is
// released last if no OnClose function already did. Safe to call more
// than once.
func (s *FrameScheduler) Close() {
	if s.state == StateClosing {
		return
	}
	s.state = StateClosing
	if t := s.surfaces.Outstanding(); t != nil {
		Logger().Info("discarding outstanding target on close")
		s.surfaces.Discard(t)
	}
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
	s.releases = nil
	s.surfaces.Release()
}

// State returns the current scheduler state.
func (s *FrameScheduler) State() State { return s.state }

// Stats returns the last committed frame statistics.
func (s *FrameScheduler) Stats() FrameStats { return s.counter.Stats() }

// Rendered returns the number of completed render cycles.
func (s *FrameScheduler) Rendered() uint64 { return s.rendered }

// Skipped returns the number of redraws rejected by the gate or skipped
// because no surface texture was ready.
func (s *FrameScheduler) Skipped() uint64 { return s.skipped }
