package render

import "time"

// DefaultFrameInterval caps redraws at roughly 60 per second.
const DefaultFrameInterval = 16 * time.Millisecond

// Throttle coalesces redraw requests to at most one draw per interval.
//
// It never starts goroutines: draw runs inside Request or Flush, on the
// goroutine of the caller. A Throttle belongs to one UI loop and is not safe
// for concurrent use. The loop calls Flush once Due has elapsed so the last
// request of a burst is always drawn.
type Throttle struct {
	interval time.Duration
	draw     func()
	now      func() time.Time

	last    time.Time
	pending bool
	stopped bool
}

// NewThrottle returns a throttle that calls draw at most once per interval.
// A non-positive interval uses DefaultFrameInterval.
func NewThrottle(interval time.Duration, draw func()) *Throttle {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Throttle{interval: interval, draw: draw, now: time.Now}
}

// Request asks for a redraw. It draws right away when the previous draw is at
// least one interval old and otherwise leaves the request pending. It reports
// whether it drew.
func (t *Throttle) Request() bool {
	if t.stopped {
		return false
	}
	t.pending = true
	return t.Flush()
}

// Flush draws a pending request once the interval since the last draw has
// passed. It reports whether it drew.
func (t *Throttle) Flush() bool {
	if !t.pending || t.stopped || t.Due() > 0 {
		return false
	}
	t.pending = false
	t.last = t.now()
	t.draw()
	return true
}

// Pending reports whether a request is waiting for Flush.
func (t *Throttle) Pending() bool { return t.pending && !t.stopped }

// Due returns how long until a pending request may be drawn.
func (t *Throttle) Due() time.Duration {
	if t.last.IsZero() {
		return 0
	}
	return max(0, t.interval-t.now().Sub(t.last))
}

// Stop drops any pending request and ignores further ones.
func (t *Throttle) Stop() {
	t.stopped = true
	t.pending = false
}
