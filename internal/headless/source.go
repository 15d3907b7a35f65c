// Package headless provides a synthetic framepace.EventSource for running
// the presentation loop without a window.
//
// The source delivers a redraw for every RequestRedraw, replays an optional
// resize script, and delivers a close notification once a frame budget or
// a wall-clock duration is exhausted. Rendered frames are counted through
// SetTitle, which the scheduler calls once per completed cycle.
package headless

import (
	"context"
	"time"

	"github.com/gogpu/framepace"
)

// DefaultPollInterval is the minimum spacing between delivered redraws.
const DefaultPollInterval = time.Millisecond

// Resize is a scripted resize delivered once After has elapsed since the
// source was created.
type Resize struct {
	After  time.Duration
	Width  uint32
	Height uint32
}

// Source is a scripted event source. It is owned by the loop goroutine.
type Source struct {
	now      func() time.Time
	start    time.Time
	interval time.Duration

	maxFrames uint64
	duration  time.Duration
	script    []Resize

	redraw     bool
	lastRedraw time.Time
	closed     bool

	rendered  uint64
	lastTitle string
}

var _ framepace.EventSource = (*Source)(nil)

// Option configures New.
type Option func(*Source)

// WithFrames closes the source after n rendered frames. 0 means unlimited.
func WithFrames(n uint64) Option {
	return func(s *Source) { s.maxFrames = n }
}

// WithDuration closes the source once d has elapsed. 0 means unlimited.
func WithDuration(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.duration = d
		}
	}
}

// WithResizes sets the resize script. Entries must be ordered by After.
func WithResizes(script ...Resize) Option {
	return func(s *Source) { s.script = append([]Resize(nil), script...) }
}

// WithPollInterval sets the minimum spacing between redraws. 0 delivers
// redraws as fast as they are requested.
func WithPollInterval(d time.Duration) Option {
	return func(s *Source) {
		if d >= 0 {
			s.interval = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Source) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a source whose clock starts now.
func New(opts ...Option) *Source {
	s := &Source{now: time.Now, interval: DefaultPollInterval}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.start = s.now()
	return s
}

// Next returns the next notification. Once a close has been delivered, or
// when nothing further can happen, it returns framepace.ErrClosed.
func (s *Source) Next(ctx context.Context) (framepace.Event, error) {
	for {
		if s.closed {
			return framepace.Event{}, framepace.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return framepace.Event{}, err
		}

		elapsed := s.now().Sub(s.start)
		if s.exhausted(elapsed) {
			s.closed = true
			return framepace.CloseEvent(), nil
		}

		if len(s.script) > 0 && elapsed >= s.script[0].After {
			r := s.script[0]
			s.script = s.script[1:]
			return framepace.ResizeEvent(r.Width, r.Height), nil
		}

		if s.redraw {
			if err := sleep(ctx, s.lastRedraw.Add(s.interval).Sub(s.now())); err != nil {
				return framepace.Event{}, err
			}
			s.redraw = false
			s.lastRedraw = s.now()
			return framepace.RedrawEvent(), nil
		}

		// Nothing requested: wait for the next scripted event or the deadline.
		var wait time.Duration
		switch {
		case len(s.script) > 0:
			wait = s.script[0].After - elapsed
		case s.duration > 0:
			wait = s.duration - elapsed
		default:
			s.closed = true
			return framepace.Event{}, framepace.ErrClosed
		}
		if err := sleep(ctx, wait); err != nil {
			return framepace.Event{}, err
		}
	}
}

func (s *Source) exhausted(elapsed time.Duration) bool {
	if s.maxFrames > 0 && s.rendered >= s.maxFrames {
		return true
	}
	return s.duration > 0 && elapsed >= s.duration
}

// RequestRedraw schedules one redraw notification. Repeated requests
// before it is delivered coalesce.
func (s *Source) RequestRedraw() { s.redraw = true }

// SetTitle records the title and counts one rendered frame.
func (s *Source) SetTitle(title string) {
	s.rendered++
	if title != s.lastTitle {
		framepace.Logger().Debug("headless: title", "title", title, "frames", s.rendered)
		s.lastTitle = title
	}
}

// Rendered returns the number of frames reported through SetTitle.
func (s *Source) Rendered() uint64 { return s.rendered }

// Title returns the last title set.
func (s *Source) Title() string { return s.lastTitle }

// Close makes the next Next return framepace.ErrClosed.
func (s *Source) Close() { s.closed = true }

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
