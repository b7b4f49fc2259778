package connection

import (
	"math"
	"math/rand"
	"time"
)

// Backoff defaults. Values are in seconds.
const (
	// DefaultBaseBackoff is the first ceiling after construction or Reset.
	DefaultBaseBackoff = 1.0

	// DefaultMaxBackoff caps the ceiling.
	DefaultMaxBackoff = 60.0

	// BackoffMultiplier is the factor by which the ceiling grows per attempt.
	BackoffMultiplier = 2.0
)

// RandSource supplies uniform draws in [0, 1). *math/rand.Rand satisfies it.
type RandSource interface {
	Float64() float64
}

// BackoffConfig allows customizing backoff parameters.
type BackoffConfig struct {
	// Base is the initial ceiling. Values <= 0 select DefaultBaseBackoff.
	Base float64 `yaml:"base"`

	// Max is the upper bound of the ceiling. Values below Base are raised to Base.
	Max float64 `yaml:"max"`

	// Jitter draws each delay uniformly from [0, ceiling) instead of
	// returning the ceiling itself.
	Jitter bool `yaml:"jitter"`

	// Rand is the source for jitter draws. Nil selects a time-seeded source.
	Rand RandSource `yaml:"-"`
}

// Backoff generates exponentially growing retry delays.
//
// The returned delay has the unit of Base and Max; no conversion is applied.
// Backoff is not safe for concurrent use; it belongs to a single retry loop.
type Backoff struct {
	base   float64
	max    float64
	jitter bool
	rng    RandSource

	// ceiling is the bound for the next draw. It never decreases between
	// resets and never exceeds max.
	ceiling float64

	attempts int
}

// NewBackoff creates a backoff with the default base and max and jitter enabled.
func NewBackoff() *Backoff {
	return NewBackoffWithConfig(BackoffConfig{Jitter: true})
}

// NewBackoffWithConfig creates a backoff with custom settings.
func NewBackoffWithConfig(cfg BackoffConfig) *Backoff {
	if cfg.Base <= 0 || math.IsNaN(cfg.Base) || math.IsInf(cfg.Base, 0) {
		cfg.Base = DefaultBaseBackoff
	}
	if cfg.Max <= 0 || math.IsNaN(cfg.Max) {
		cfg.Max = DefaultMaxBackoff
	}
	if cfg.Max < cfg.Base {
		cfg.Max = cfg.Base
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Backoff{
		base:    cfg.Base,
		max:     cfg.Max,
		jitter:  cfg.Jitter,
		rng:     cfg.Rand,
		ceiling: cfg.Base,
	}
}

// Next returns the delay before the next retry and advances the ceiling.
//
// With jitter the delay is drawn from [0, ceiling), otherwise it is the
// ceiling. The ceiling then doubles, capped at max.
func (b *Backoff) Next() float64 {
	delay := b.ceiling
	if b.jitter {
		delay = b.ceiling * b.rng.Float64()
	}

	b.attempts++
	b.ceiling = math.Min(b.ceiling*BackoffMultiplier, b.max)

	return delay
}

// Reset restores the ceiling to base.
// Call this after a successful connection.
func (b *Backoff) Reset() {
	b.ceiling = b.base
	b.attempts = 0
}

// Ceiling returns the bound that the next call to Next will use.
func (b *Backoff) Ceiling() float64 {
	return b.ceiling
}

// Attempts returns the number of calls to Next since the last reset.
func (b *Backoff) Attempts() int {
	return b.attempts
}

// Base returns the initial ceiling.
func (b *Backoff) Base() float64 { return b.base }

// Max returns the cap of the ceiling.
func (b *Backoff) Max() float64 { return b.max }

// Jitter reports whether delays are randomized.
func (b *Backoff) Jitter() bool { return b.jitter }

// BackoffSequence returns the first n ceilings for base and max, that is
// the delays Next returns without jitter.
func BackoffSequence(base, max float64, n int) []float64 {
	b := NewBackoffWithConfig(BackoffConfig{Base: base, Max: max})
	seq := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		seq = append(seq, b.Next())
	}
	return seq
}

// Seconds converts a delay expressed in seconds into a time.Duration.
func Seconds(delay float64) time.Duration {
	return time.Duration(delay * float64(time.Second))
}
