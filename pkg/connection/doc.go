// Package connection provides the retry primitives of a device session and
// the reconnect manager built on them.
//
// # Backoff
//
// Backoff keeps a ceiling that starts at the base delay and doubles after
// every call to Next, capped at the maximum:
//
//	ceiling: base, 2*base, 4*base, ... , max, max
//
// Without jitter Next returns the ceiling itself. With jitter it draws the
// delay uniformly from [0, ceiling), which spreads reconnection storms of
// many devices without ever exceeding the maximum. Reset restores the
// ceiling to base.
//
// The returned value is not unit-converted: it has the unit of base and max.
// The manager configures both in seconds and converts with Seconds.
//
// # Timer
//
// Timer is a single-shot elapsed check. Start arms it; IsElapsed reports
// whether strictly more than the armed duration has passed. Calling
// IsElapsed on a timer that was never armed, or armed with a non-positive
// duration, returns ErrTimerNotStarted.
//
// Backoff and Timer are single-writer values owned by one retry loop.
//
// # Reconnect Manager
//
// Manager runs the reconnect loop: on connection loss it takes one delay
// from the Backoff, arms the Timer, waits until it elapses (or the manager
// is closed), then retries. A successful connection resets the Backoff and
// starts a new session with a fresh UUID.
package connection
