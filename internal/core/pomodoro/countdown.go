package pomodoro

import "time"

// countdown turns wall-clock ticks into whole-interval decrements. Each arm
// starts a fresh anchor, so ticks belonging to an earlier arm never count.
type countdown struct {
	interval time.Duration
	armed    bool
	anchor   time.Time
	applied  int
}

func (counter *countdown) arm(now time.Time) {
	counter.armed = true
	counter.anchor = now
	counter.applied = 0
}

func (counter *countdown) disarm() {
	counter.armed = false
	counter.applied = 0
}

// due returns the number of intervals elapsed since the last call that have
// not been applied yet. Delayed ticks catch up; stale or repeated ticks yield 0.
func (counter *countdown) due(now time.Time) int {
	if !counter.armed || now.Before(counter.anchor) {
		return 0
	}
	elapsed := int(now.Sub(counter.anchor) / counter.interval)
	steps := elapsed - counter.applied
	if steps <= 0 {
		return 0
	}
	counter.applied = elapsed
	return steps
}
