package headingsources

import "time"

// MinSensorInterval is the minimum wall-clock spacing between accepted
// sensor updates. Platform and orientation sensors can emit at well over
// 60 Hz; anything inside this window is dropped before it reaches the
// engine. Pointer-drag input is user-paced and is never throttled.
const MinSensorInterval = 15 * time.Millisecond

// Throttle drops events that arrive within Interval of the last accepted
// one. The caller supplies timestamps so tests stay deterministic.
type Throttle struct {
	Interval time.Duration
	last     time.Time
}

// NewThrottle returns a throttle with the standard sensor interval.
func NewThrottle() *Throttle {
	return &Throttle{Interval: MinSensorInterval}
}

// Allow reports whether an event at now should be accepted, and marks it
// as the last accepted event if so.
func (t *Throttle) Allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	return true
}
