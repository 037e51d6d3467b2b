// Package secondarysource implements the external-push source of
// spec.md §4.4: a simqueue.Source whose events are produced outside
// the scheduler and injected via Publish, ordered by an internal
// min-heap keyed on event timestamp. Grounded on
// original_source/src/queue/SecondarySource.hpp (the
// notify_event/deliver_one_aux/sim_advance_until priming protocol),
// translated from a CallbackSet<Callback, member_fn> template
// parameterization onto pkg/simqueue.SinkSet's runtime type check.
package secondarysource

import (
	"container/heap"
	"errors"
	"reflect"

	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
)

// ErrUpstreamExhausted is returned by Publish once
// MarkUpstreamExhausted has been called (spec.md §4.4).
var ErrUpstreamExhausted = errors.New("secondarysource: publish after upstream exhausted")

// eventHeap is a min-heap of simqueue.Event ordered by EventTime.
type eventHeap[T simqueue.Event] []T

func (h eventHeap[T]) Len() int           { return len(h) }
func (h eventHeap[T]) Less(i, j int) bool { return h[i].EventTime().Before(h[j].EventTime()) }
func (h eventHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *eventHeap[T]) Push(x any)        { *h = append(*h, x.(T)) }
func (h *eventHeap[T]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Source collects events produced elsewhere (e.g. by a callback
// reacting to a realization source) and forwards them to its own
// subscribers in timestamp order once scheduled by a reactor.
type Source[T simqueue.Event] struct {
	simqueue.ReactorAttachment
	name              string
	heap              eventHeap[T]
	upstreamExhausted bool
	currentTm         vtime.Time
	sinks             *simqueue.SinkSet
}

// New returns an empty Source publishing events of type T, with
// current time initialized to t0 until the first event arrives.
func New[T simqueue.Event](name string, t0 vtime.Time) *Source[T] {
	var zero T
	return &Source[T]{
		name:      name,
		currentTm: t0,
		sinks:     simqueue.NewSinkSet(name, reflect.TypeOf(zero)),
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

// MarkUpstreamExhausted announces that no further events will ever be
// published. Idempotent.
func (s *Source[T]) MarkUpstreamExhausted() {
	s.upstreamExhausted = true
}

// Publish makes ev available for delivery, inserting it into the
// internal min-heap. If this is the first event since the heap was
// last empty, it notifies the owning reactor (if any) that this source
// has transitioned not-primed -> primed. Fails with
// ErrUpstreamExhausted if MarkUpstreamExhausted has already been
// called.
func (s *Source[T]) Publish(ev T) error {
	if s.upstreamExhausted {
		return ErrUpstreamExhausted
	}

	if ev.EventTime().After(s.currentTm) {
		s.currentTm = ev.EventTime()
	}

	isPriming := len(s.heap) == 0
	heap.Push(&s.heap, ev)

	if isPriming {
		s.NotifyPrimed(s)
	}
	return nil
}

// IsEmpty implements simqueue.Source.
func (s *Source[T]) IsEmpty() bool {
	return len(s.heap) == 0
}

// IsExhausted implements simqueue.Source: true once upstream has
// announced exhaustion and every published event has been delivered.
func (s *Source[T]) IsExhausted() bool {
	return s.upstreamExhausted && s.IsEmpty()
}

// CurrentTime implements simqueue.Source: the pending heap root's
// timestamp, or the latest timestamp among all published events (or
// construction-time t0, if later) when the heap is currently empty. The empty case
// is not useful for establishing priority against other sources;
// control should reach the reactor only via the priming callback in
// that state.
func (s *Source[T]) CurrentTime() vtime.Time {
	if len(s.heap) == 0 {
		return s.currentTm
	}
	return s.heap[0].EventTime()
}

// DeliverOne implements simqueue.Source: pops the earliest-timestamped
// pending event and fans it out to subscribers.
func (s *Source[T]) DeliverOne() uint64 {
	return s.deliverOneAux(true)
}

// deliverOneAux pops the heap root, publishing it to subscribers only
// if replay is true. The event is removed from the heap before
// publishing so that a reentrant Publish triggered by a subscriber
// observes a consistent heap.
func (s *Source[T]) deliverOneAux(replay bool) uint64 {
	if len(s.heap) == 0 {
		return 0
	}

	ev := heap.Pop(&s.heap).(T)

	if replay {
		s.sinks.Publish(ev)
	}
	return 1
}

// AdvanceUntil implements simqueue.Source: while the heap root's
// timestamp is before t, either delivers (replay=true) or silently
// drops (replay=false) each pending event.
func (s *Source[T]) AdvanceUntil(t vtime.Time, replay bool) {
	for len(s.heap) > 0 && s.CurrentTime().Before(t) {
		s.deliverOneAux(replay)
	}
}
