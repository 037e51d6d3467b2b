// Package tracer implements the random-process interface of spec.md §6:
// one-way iteration over a realization of a stochastic process, with a
// monotonically increasing current time and a current value. Grounded
// on original_source/src/process/RealizationTracer.hpp, narrowed to
// the deterministic case (current_time/current_value/advance) since
// RNG-backed processes are out of scope per spec.md §1's "Random-number
// engine details" non-goal.
package tracer

import "github.com/Rconybea/kalman-sub000/pkg/vtime"

// Tracer exposes a sampled path over a stochastic process of value
// type T: a current time, a current value, and the ability to advance
// to a later time. Implementations need not be thread-safe (spec.md
// §5).
type Tracer[T any] interface {
	// CurrentTime reports the time associated with the tracer's
	// current value.
	CurrentTime() vtime.Time
	// CurrentValue reports the value of this path at CurrentTime.
	CurrentValue() T
	// Advance moves the tracer forward by dt, recomputing
	// CurrentValue for the new time. dt must be >= 0.
	Advance(dt vtime.Duration)
	// AdvanceUntil moves the tracer forward to t without replaying
	// intermediate values; a no-op if t <= CurrentTime.
	AdvanceUntil(t vtime.Time)
}

// ConstantTracer is a Tracer whose value never changes; only its clock
// advances. Useful for scenarios that only need deterministic timing
// (spec.md §8 scenario 2).
type ConstantTracer[T any] struct {
	t   vtime.Time
	val T
}

// NewConstantTracer returns a ConstantTracer starting at t0 with value val.
func NewConstantTracer[T any](t0 vtime.Time, val T) *ConstantTracer[T] {
	return &ConstantTracer[T]{t: t0, val: val}
}

func (c *ConstantTracer[T]) CurrentTime() vtime.Time   { return c.t }
func (c *ConstantTracer[T]) CurrentValue() T           { return c.val }
func (c *ConstantTracer[T]) Advance(dt vtime.Duration) { c.t = c.t.Add(dt) }
func (c *ConstantTracer[T]) AdvanceUntil(t vtime.Time) {
	if t.After(c.t) {
		c.t = t
	}
}

// LinearTracer is a Tracer over float64 whose value grows at a fixed
// rate per unit time: value(t) = val0 + slope*(t-t0). Supplements the
// constant case with a deterministic, non-trivial path for tests and
// examples that want to see the Kalman engine track a moving target.
type LinearTracer struct {
	t0, t     vtime.Time
	val0      float64
	slopePerS float64
}

// NewLinearTracer returns a LinearTracer starting at t0 with value
// val0, growing by slopePerS units per second of virtual time.
func NewLinearTracer(t0 vtime.Time, val0, slopePerS float64) *LinearTracer {
	return &LinearTracer{t0: t0, t: t0, val0: val0, slopePerS: slopePerS}
}

func (l *LinearTracer) CurrentTime() vtime.Time { return l.t }

func (l *LinearTracer) CurrentValue() float64 {
	elapsedSec := float64(l.t.Sub(l.t0)) / 1e9
	return l.val0 + l.slopePerS*elapsedSec
}

func (l *LinearTracer) Advance(dt vtime.Duration) {
	l.t = l.t.Add(dt)
}

func (l *LinearTracer) AdvanceUntil(t vtime.Time) {
	if t.After(l.t) {
		l.t = t
	}
}
