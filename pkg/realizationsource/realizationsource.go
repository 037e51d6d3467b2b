// Package realizationsource implements the fixed-Δt sampler of spec.md
// §4.5: a simqueue.Source that lazily samples a tracer.Tracer at a
// fixed interval and publishes (time, value) pairs to its subscribers.
// Grounded on original_source/src/process/RealizationSource.hpp
// (RealizationSourceBase's always-primed/never-exhausted contract and
// its deliver_one/sim_advance_until shape), translated from the
// C++ template's refcounted callback set onto pkg/simqueue.SinkSet.
package realizationsource

import (
	"reflect"

	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/tracer"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
)

// Sample is the event payload published by a Source[T]: the tracer's
// time and value at the moment of sampling.
type Sample[T any] struct {
	Time  vtime.Time
	Value T
}

// EventTime implements simqueue.Event.
func (s Sample[T]) EventTime() vtime.Time { return s.Time }

// Source wraps a tracer.Tracer[T] as a simulation source: always
// primed, never exhausted in isolation (the reactor imposes a terminal
// time via run_until), discretized at a fixed sampling interval.
type Source[T any] struct {
	simqueue.ReactorAttachment
	name  string
	tr    tracer.Tracer[T]
	dt    vtime.Duration
	sinks *simqueue.SinkSet
}

// New returns a Source sampling tr every dt, publishing Sample[T]
// events. dt must be > 0.
func New[T any](name string, tr tracer.Tracer[T], dt vtime.Duration) *Source[T] {
	var zero Sample[T]
	return &Source[T]{
		name:  name,
		tr:    tr,
		dt:    dt,
		sinks: simqueue.NewSinkSet(name, reflect.TypeOf(zero)),
	}
}

// Name implements simqueue.Source.
func (s *Source[T]) Name() string { return s.name }

// AttachSink implements simqueue.Source.
func (s *Source[T]) AttachSink(sink simqueue.Sink) error {
	return s.sinks.AttachSink(sink)
}

// DetachSink implements simqueue.Source.
func (s *Source[T]) DetachSink(sink simqueue.Sink) {
	s.sinks.DetachSink(sink)
}

// IsEmpty implements simqueue.Source: process realizations are always
// primed, at least in isolation (spec.md §4.5).
func (s *Source[T]) IsEmpty() bool { return false }

// IsExhausted implements simqueue.Source: the stochastic-process API
// has no end time; a reactor's run_until imposes one externally.
func (s *Source[T]) IsExhausted() bool { return false }

// CurrentTime implements simqueue.Source.
func (s *Source[T]) CurrentTime() vtime.Time { return s.tr.CurrentTime() }

// DeliverOne implements simqueue.Source: publishes the current sample,
// then advances the tracer by dt.
func (s *Source[T]) DeliverOne() uint64 {
	s.sinks.Publish(Sample[T]{Time: s.tr.CurrentTime(), Value: s.tr.CurrentValue()})
	s.tr.Advance(s.dt)
	return 1
}

// AdvanceUntil implements simqueue.Source. With replay=true, treats t
// as a lower bound and repeatedly delivers (fanning out each
// intermediate sample) until CurrentTime() >= t. With replay=false, it
// silently fast-forwards the tracer without emitting any events.
func (s *Source[T]) AdvanceUntil(t vtime.Time, replay bool) {
	if replay {
		for s.CurrentTime().Before(t) {
			s.DeliverOne()
		}
		return
	}
	s.tr.AdvanceUntil(t)
}
