package framepace

import "time"

// TimingGate rejects render attempts that arrive sooner than Period after
// the last accepted one.
//
// Fire records the actual firing instant, not the ideal next tick. Under
// sustained overload the effective rate therefore decays smoothly below the
// target instead of bursting to catch up, and late frames are dropped rather
// than queued.
type TimingGate struct {
	Period    time.Duration
	LastFired time.Time
}

// Open reports whether a render cycle may run at now. A gate that has never
// fired is always open.
func (g *TimingGate) Open(now time.Time) bool {
	if g.LastFired.IsZero() {
		return true
	}
	return now.Sub(g.LastFired) >= g.Period
}

// Fire records now as the last firing instant.
func (g *TimingGate) Fire(now time.Time) {
	g.LastFired = now
}

// TryFire fires the gate if it is open at now and reports whether it did.
func (g *TimingGate) TryFire(now time.Time) bool {
	if !g.Open(now) {
		return false
	}
	g.Fire(now)
	return true
}
