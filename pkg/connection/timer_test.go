package connection

import (
	"errors"
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeTimer() (*Timer, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	return &Timer{now: clock.Now}, clock
}

func TestTimer(t *testing.T) {
	t.Run("NotStarted", func(t *testing.T) {
		tm := NewTimer()
		if _, err := tm.IsElapsed(); !errors.Is(err, ErrTimerNotStarted) {
			t.Errorf("IsElapsed() error = %v, want ErrTimerNotStarted", err)
		}
		if _, err := tm.Remaining(); !errors.Is(err, ErrTimerNotStarted) {
			t.Errorf("Remaining() error = %v, want ErrTimerNotStarted", err)
		}
	})

	t.Run("NonPositiveDuration", func(t *testing.T) {
		for _, d := range []time.Duration{0, -time.Second} {
			tm := NewTimer()
			tm.Start(d)
			if _, err := tm.IsElapsed(); !errors.Is(err, ErrTimerNotStarted) {
				t.Errorf("Start(%v): IsElapsed() error = %v, want ErrTimerNotStarted", d, err)
			}
		}
	})

	t.Run("ElapsedLaw", func(t *testing.T) {
		tm, clock := newFakeTimer()
		tm.Start(time.Second)

		elapsed, err := tm.IsElapsed()
		if err != nil || elapsed {
			t.Fatalf("IsElapsed() immediately = %v, %v, want false", elapsed, err)
		}

		clock.Advance(time.Second)
		if elapsed, _ := tm.IsElapsed(); elapsed {
			t.Error("IsElapsed() at exactly the duration = true, want false (strict)")
		}

		clock.Advance(time.Nanosecond)
		if elapsed, _ := tm.IsElapsed(); !elapsed {
			t.Error("IsElapsed() past the duration = false, want true")
		}
	})

	t.Run("RestartDiscardsState", func(t *testing.T) {
		tm, clock := newFakeTimer()
		tm.Start(time.Second)
		clock.Advance(2 * time.Second)

		tm.Start(time.Minute)
		if elapsed, _ := tm.IsElapsed(); elapsed {
			t.Error("re-armed timer reports elapsed")
		}
		if left, _ := tm.Remaining(); left != time.Minute {
			t.Errorf("Remaining() = %v, want 1m", left)
		}
	})

	t.Run("Remaining", func(t *testing.T) {
		tm, clock := newFakeTimer()
		tm.Start(10 * time.Second)
		clock.Advance(4 * time.Second)

		if left, _ := tm.Remaining(); left != 6*time.Second {
			t.Errorf("Remaining() = %v, want 6s", left)
		}
		clock.Advance(time.Hour)
		if left, _ := tm.Remaining(); left != 0 {
			t.Errorf("Remaining() = %v, want 0", left)
		}
	})

	t.Run("RealClock", func(t *testing.T) {
		tm := NewTimer()
		tm.Start(20 * time.Millisecond)
		if elapsed, _ := tm.IsElapsed(); elapsed {
			t.Error("IsElapsed() right after Start = true")
		}
		time.Sleep(40 * time.Millisecond)
		if elapsed, _ := tm.IsElapsed(); !elapsed {
			t.Error("IsElapsed() after sleeping = false")
		}
	})

	t.Run("ZeroValueUsable", func(t *testing.T) {
		var tm Timer
		tm.Start(time.Hour)
		if elapsed, err := tm.IsElapsed(); err != nil || elapsed {
			t.Errorf("IsElapsed() = %v, %v", elapsed, err)
		}
	})
}
