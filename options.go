package framepace

import (
	"time"

	"github.com/gogpu/gputypes"
)

// DefaultTargetRate is the default redraw cap in frames per second.
const DefaultTargetRate = 30

// DefaultTargetPeriod is the gate period for DefaultTargetRate (1000/30 ms).
const DefaultTargetPeriod = time.Second / DefaultTargetRate

// DefaultClearColor is the color the render pass clears to.
var DefaultClearColor = gputypes.Color{R: 0, G: 1, B: 0, A: 1}

// Option configures framepace components during creation.
//
// The same option set is accepted by NewFrameCounter, NewSurfaceManager,
// NewPresenter and NewFrameScheduler; each reads the fields it needs.
//
// Example:
//
//	sched := framepace.NewFrameScheduler(src, sm, p, fc,
//	    framepace.WithTargetRate(60),
//	)
type Option func(*options)

type options struct {
	period          time.Duration
	now             func() time.Time
	clearColor      gputypes.Color
	preferredFormat gputypes.TextureFormat
	presentMode     PresentMode
}

func defaultOptions() options {
	return options{
		period:          DefaultTargetPeriod,
		now:             time.Now,
		clearColor:      DefaultClearColor,
		preferredFormat: gputypes.TextureFormatUndefined, // first supported
		presentMode:     PresentModeFifo,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithTargetRate caps rendering at hz cycles per second.
// Values <= 0 are ignored.
func WithTargetRate(hz float64) Option {
	return func(o *options) {
		if hz > 0 {
			o.period = time.Duration(float64(time.Second) / hz)
		}
	}
}

// WithTargetPeriod sets the minimum interval between two render cycles.
// A zero period disables throttling; negative values are ignored.
func WithTargetPeriod(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.period = d
		}
	}
}

// WithClock replaces time.Now as the time source for the gate and the
// frame counter. Intended for tests and replay.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithClearColor sets the color the render pass clears the target to.
func WithClearColor(c gputypes.Color) Option {
	return func(o *options) {
		o.clearColor = c
	}
}

// WithPreferredFormat selects the surface format to use when the surface
// supports it. Otherwise the first supported format is used.
func WithPreferredFormat(f gputypes.TextureFormat) Option {
	return func(o *options) {
		o.preferredFormat = f
	}
}

// WithPresentMode selects the present mode to use when the surface
// supports it. Otherwise PresentModeFifo is used.
func WithPresentMode(m PresentMode) Option {
	return func(o *options) {
		o.presentMode = m
	}
}
