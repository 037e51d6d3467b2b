// Package simqueue implements the typed source/sink wiring of spec.md
// §4.2: late-bound, runtime-type-checked attachment between event
// sources and sinks, built on top of pkg/callbackset's reentrant fan-out.
// Grounded on original_source/src/queue/{Source,Sink,EventSource}.hpp
// for the Source/Sink contract shape, translated from virtual-dispatch
// refcounted handles to plain interfaces plus a reflect.Type descriptor
// check (Go has no runtime Refcount base to inherit from, and the
// spec's "expected vs offered type descriptor" diagnosis maps directly
// onto reflect.Type).
package simqueue

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/Rconybea/kalman-sub000/pkg/callbackset"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
)

// Event is the minimal contract a payload must satisfy to flow through
// the scheduler: a timestamp consistent with the reactor's total order
// (spec.md §3).
type Event interface {
	EventTime() vtime.Time
}

// Sink receives events of one concrete payload type, identified at
// attach time by PayloadType (spec.md §4.2).
type Sink interface {
	Name() string
	PayloadType() reflect.Type
	Notify(ev any)
}

// TypedSink adapts a strongly-typed callback to the runtime-checked
// Sink interface every Source attaches against.
type TypedSink[T any] struct {
	name string
	fn   func(ev T)
}

// NewTypedSink returns a Sink that only ever receives payloads of type T.
func NewTypedSink[T any](name string, fn func(ev T)) *TypedSink[T] {
	return &TypedSink[T]{name: name, fn: fn}
}

// Name implements Sink.
func (s *TypedSink[T]) Name() string { return s.name }

// PayloadType implements Sink.
func (s *TypedSink[T]) PayloadType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Notify implements Sink; it panics if ev is not a T, which should be
// unreachable once AttachSink's type check has succeeded.
func (s *TypedSink[T]) Notify(ev any) {
	typed, ok := ev.(T)
	if !ok {
		panic(fmt.Sprintf("simqueue: sink %q received payload of unexpected type %T", s.name, ev))
	}
	s.fn(typed)
}

// RequireNative returns sink as a *TypedSink[T], or panics — the
// spec's "require_native" convenience for a caller that already knows
// the concrete payload type it expects (spec.md §4.2).
func RequireNative[T any](sink Sink) *TypedSink[T] {
	typed, ok := sink.(*TypedSink[T])
	if !ok {
		var zero T
		panic(fmt.Sprintf("simqueue: RequireNative: sink %q is not a TypedSink[%T]", sink.Name(), zero))
	}
	return typed
}

// TypeMismatchError reports an AttachSink failure with both the
// expected and offered type descriptors (spec.md §4.2/§7).
type TypeMismatchError struct {
	SourceName string
	SinkName   string
	Expected   reflect.Type
	Offered    reflect.Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("simqueue: type mismatch attaching sink %q to source %q: expected %s, offered %s",
		e.SinkName, e.SourceName, e.Expected, e.Offered)
}

// ErrAlreadyAttached is returned when a source already attached to one
// reactor is attached to a second (spec.md §5/§7).
var ErrAlreadyAttached = errors.New("simqueue: source already attached to a reactor")

// Source is the contract every event producer exposes to a reactor
// (spec.md §4.2/§4.3): readiness/time queries, one-event delivery, and
// typed sink attachment.
type Source interface {
	Name() string
	AttachSink(sink Sink) error
	DetachSink(sink Sink)
	DeliverOne() uint64
	IsEmpty() bool
	IsExhausted() bool
	CurrentTime() vtime.Time
	AdvanceUntil(t vtime.Time, replay bool)
}

// ReactorHandle is the non-owning callback surface a source uses to
// notify its reactor of a not-primed→primed transition, without the
// source keeping the reactor alive — the cyclic-graph resolution
// spec.md §9 asks for.
type ReactorHandle interface {
	NotifySourcePrimed(s Source)
}

// SinkSet manages the sinks attached to one source: the runtime type
// check at attach time and reentrant-safe fan-out, delegated to a
// pkg/callbackset.Set so a sink may add/remove sinks of its own kind
// mid-delivery without corrupting iteration.
type SinkSet struct {
	sourceName  string
	payloadType reflect.Type
	cbset       *callbackset.Set[any]
	entries     []sinkEntry
}

type sinkEntry struct {
	sink   Sink
	handle callbackset.Handle
}

// NewSinkSet returns an empty SinkSet that only accepts sinks whose
// PayloadType equals payloadType.
func NewSinkSet(sourceName string, payloadType reflect.Type) *SinkSet {
	return &SinkSet{sourceName: sourceName, payloadType: payloadType, cbset: callbackset.New[any]()}
}

// AttachSink registers sink, failing with *TypeMismatchError if its
// payload type does not match this source's.
func (s *SinkSet) AttachSink(sink Sink) error {
	if sink.PayloadType() != s.payloadType {
		return &TypeMismatchError{
			SourceName: s.sourceName,
			SinkName:   sink.Name(),
			Expected:   s.payloadType,
			Offered:    sink.PayloadType(),
		}
	}
	h := s.cbset.Add(callbackset.Func[any](sink.Notify))
	s.entries = append(s.entries, sinkEntry{sink: sink, handle: h})
	return nil
}

// DetachSink removes sink if attached; a no-op otherwise.
func (s *SinkSet) DetachSink(sink Sink) {
	for i, e := range s.entries {
		if e.sink == sink {
			s.cbset.Remove(e.handle)
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

// Publish fans ev out to every attached sink.
func (s *SinkSet) Publish(ev any) {
	s.cbset.Invoke(ev)
}

// Len returns the number of attached sinks.
func (s *SinkSet) Len() int {
	return len(s.entries)
}

// ReactorAttachment tracks the single reactor (if any) a source is
// attached to, enforcing the at-most-one-reactor rule and providing the
// priming callback a source uses to re-enter its reactor's heap.
type ReactorAttachment struct {
	reactor ReactorHandle
}

// Attach records r as this source's owning reactor, failing with
// ErrAlreadyAttached if one is already recorded.
func (a *ReactorAttachment) Attach(r ReactorHandle) error {
	if a.reactor != nil {
		return ErrAlreadyAttached
	}
	a.reactor = r
	return nil
}

// Detach clears the owning reactor, if any.
func (a *ReactorAttachment) Detach() {
	a.reactor = nil
}

// Attached reports whether a reactor is currently recorded.
func (a *ReactorAttachment) Attached() bool {
	return a.reactor != nil
}

// NotifyPrimed signals a not-primed→primed transition to the owning
// reactor, if attached; a no-op for a detached source.
func (a *ReactorAttachment) NotifyPrimed(s Source) {
	if a.reactor != nil {
		a.reactor.NotifySourcePrimed(s)
	}
}
