package connection

import (
	"errors"
	"time"
)

// ErrTimerNotStarted is returned by Timer.IsElapsed when the timer was never
// started or was started with a non-positive duration.
var ErrTimerNotStarted = errors.New("timer not started")

// Timer is a single-shot elapsed check with no recurring tick.
// It is not safe for concurrent use.
type Timer struct {
	start    time.Time
	duration time.Duration

	// now is the clock; tests replace it.
	now func() time.Time
}

// NewTimer creates an unarmed timer.
func NewTimer() *Timer {
	return &Timer{now: time.Now}
}

// Start arms the timer for d, discarding any previous state.
func (t *Timer) Start(d time.Duration) {
	if t.now == nil {
		t.now = time.Now
	}
	t.start = t.now()
	t.duration = d
}

// IsElapsed returns true once strictly more than the armed duration has
// passed since Start.
func (t *Timer) IsElapsed() (bool, error) {
	if !t.armed() {
		return false, ErrTimerNotStarted
	}
	return t.now().Sub(t.start) > t.duration, nil
}

// Remaining returns the time left until the timer elapses, or zero.
func (t *Timer) Remaining() (time.Duration, error) {
	if !t.armed() {
		return 0, ErrTimerNotStarted
	}
	left := t.duration - t.now().Sub(t.start)
	if left < 0 {
		return 0, nil
	}
	return left, nil
}

func (t *Timer) armed() bool {
	return !t.start.IsZero() && t.duration > 0
}
