package framepace

import (
	"sync/atomic"
	"time"
)

// sampleWindow is the minimum accumulation interval before FrameCounter
// commits new statistics.
const sampleWindow = time.Second

// FrameStats is the last committed frame timing sample.
type FrameStats struct {
	// LastFPS is the average frames per second over the last sample window.
	LastFPS float64

	// LastFrameTimeMs is the average frame duration in milliseconds over the
	// last sample window.
	LastFrameTimeMs float64
}

// FrameCounter accumulates completed render cycles and periodically
// commits averaged statistics.
//
// Update must be called from a single goroutine. The committed FrameStats
// are published atomically and may be read from any goroutine.
type FrameCounter struct {
	now         func() time.Time
	windowStart time.Time
	frames      int
	stats       atomic.Pointer[FrameStats]
}

// NewFrameCounter creates a counter whose first sample window starts now.
func NewFrameCounter(opts ...Option) *FrameCounter {
	o := applyOptions(opts)
	fc := &FrameCounter{now: o.now}
	fc.windowStart = fc.now()
	fc.stats.Store(&FrameStats{})
	return fc
}

// Update records one completed render cycle. Once at least one second has
// elapsed since the window started, it commits the averaged statistics and
// starts a new window. Shorter windows leave the stats untouched.
func (fc *FrameCounter) Update() {
	fc.frames++
	now := fc.now()
	elapsed := now.Sub(fc.windowStart)
	if elapsed < sampleWindow {
		return
	}

	secs := elapsed.Seconds()
	s := &FrameStats{
		LastFPS:         float64(fc.frames) / secs,
		LastFrameTimeMs: secs * 1000 / float64(fc.frames),
	}
	fc.stats.Store(s)
	Logger().Debug("frame stats", "frame_time_ms", s.LastFrameTimeMs, "fps", s.LastFPS, "frames", fc.frames)

	fc.frames = 0
	fc.windowStart = now
}

// Stats returns the last committed sample. Before the first full window
// both fields are zero.
func (fc *FrameCounter) Stats() FrameStats {
	return *fc.stats.Load()
}

// LastFPS returns the frames per second of the last committed sample.
func (fc *FrameCounter) LastFPS() float64 { return fc.stats.Load().LastFPS }

// LastFrameTime returns the frame duration in milliseconds of the last
// committed sample.
func (fc *FrameCounter) LastFrameTime() float64 { return fc.stats.Load().LastFrameTimeMs }

// Pending returns the number of cycles counted in the current window.
func (fc *FrameCounter) Pending() int { return fc.frames }
