package framepace

import (
	"math"
	"testing"
	"time"
)

func TestFrameCounterZeroBeforeFirstWindow(t *testing.T) {
	clock := newManualClock()
	fc := NewFrameCounter(WithClock(clock.Now))

	for range 10 {
		clock.Advance(50 * time.Millisecond)
		fc.Update()
	}

	if fc.LastFPS() != 0 || fc.LastFrameTime() != 0 {
		t.Errorf("stats before 1s = (%v, %v), want zero", fc.LastFPS(), fc.LastFrameTime())
	}
	if fc.Pending() != 10 {
		t.Errorf("Pending() = %d, want 10", fc.Pending())
	}
}

func TestFrameCounterCommitsAtOneSecond(t *testing.T) {
	clock := newManualClock()
	fc := NewFrameCounter(WithClock(clock.Now))

	for range 4 {
		clock.Advance(250 * time.Millisecond)
		fc.Update()
	}

	// Exactly 1.0 s elapsed over 4 frames.
	if got := fc.LastFPS(); got != 4 {
		t.Errorf("LastFPS() = %v, want 4", got)
	}
	if got := fc.LastFrameTime(); got != 250 {
		t.Errorf("LastFrameTime() = %v, want 250", got)
	}
	if fc.Pending() != 0 {
		t.Errorf("Pending() after commit = %d, want 0", fc.Pending())
	}
}

func TestFrameCounterAverages(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		frames   int
	}{
		{"30hz", time.Second / 30, 45},
		{"60hz", time.Second / 60, 100},
		{"uneven", 37 * time.Millisecond, 80},
		{"slow", 1500 * time.Millisecond, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newManualClock()
			fc := NewFrameCounter(WithClock(clock.Now))
			start := clock.Now()
			count := 0
			for range tt.frames {
				clock.Advance(tt.interval)
				fc.Update()
				count++
				if fc.Pending() != 0 {
					continue
				}
				// Committed: stats describe the window that just closed.
				elapsed := clock.Now().Sub(start).Seconds()
				wantFPS := float64(count) / elapsed
				if math.Abs(fc.LastFPS()-wantFPS) > 1e-9 {
					t.Fatalf("LastFPS() = %v, want %v", fc.LastFPS(), wantFPS)
				}
				wantMs := elapsed * 1000 / float64(count)
				if math.Abs(fc.LastFrameTime()-wantMs) > 1e-9 {
					t.Fatalf("LastFrameTime() = %v, want %v", fc.LastFrameTime(), wantMs)
				}
				start = clock.Now()
				count = 0
			}
		})
	}
}

func TestFrameCounterNoUpdateWithinWindow(t *testing.T) {
	clock := newManualClock()
	fc := NewFrameCounter(WithClock(clock.Now))

	clock.Advance(time.Second)
	fc.Update()
	first := fc.Stats()

	for range 5 {
		clock.Advance(100 * time.Millisecond)
		fc.Update()
	}
	if fc.Stats() != first {
		t.Errorf("stats changed within sample window: %+v -> %+v", first, fc.Stats())
	}
}

func BenchmarkFrameCounterUpdate(b *testing.B) {
	fc := NewFrameCounter()
	b.ReportAllocs()
	for b.Loop() {
		fc.Update()
	}
}
