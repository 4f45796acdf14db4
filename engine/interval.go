package engine

import (
	"math/rand/v2"
	"time"
)

// IntervalSource picks the delay until the next reminder
type IntervalSource interface {
	Next(min, max time.Duration) time.Duration
}

// UniformInterval draws uniformly from [min, max]
type UniformInterval struct {
	rng *rand.Rand
}

// NewUniformInterval creates a source backed by the global generator
func NewUniformInterval() *UniformInterval {
	return &UniformInterval{}
}

// NewSeededInterval creates a reproducible source
func NewSeededInterval(seed uint64) *UniformInterval {
	return &UniformInterval{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Next returns a duration in [min, max]
func (u *UniformInterval) Next(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	span := int64(max-min) + 1
	if u.rng != nil {
		return min + time.Duration(u.rng.Int64N(span))
	}
	return min + time.Duration(rand.Int64N(span))
}

// FixedInterval always returns the same duration, subject to clamping by the scheduler
type FixedInterval time.Duration

// Next ignores the window
func (f FixedInterval) Next(_, _ time.Duration) time.Duration {
	return time.Duration(f)
}

// IntervalFunc adapts a function to IntervalSource
type IntervalFunc func(min, max time.Duration) time.Duration

// Next calls f
func (f IntervalFunc) Next(min, max time.Duration) time.Duration {
	return f(min, max)
}

func clampInterval(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
