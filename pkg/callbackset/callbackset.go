// Package callbackset implements the reentrant-safe subscriber fan-out
// of spec.md §4.1: add/remove requests that arrive while an Invoke is in
// progress are queued and applied atomically once iteration ends,
// whether it ends normally or via panic. Grounded on the subscriber-set
// shape of pkg/events.Broker (subscriber registration, broadcast-to-all)
// adapted from goroutine/channel fan-out to single-threaded synchronous
// dispatch with a deferred-operation log, per spec.md §9's "callbacks
// mutating their own list" guidance.
package callbackset

// Subscriber receives events of type T fanned out by a Set.
type Subscriber[T any] interface {
	Invoke(ev T)
}

// AttachNotifiee is an optional extension a Subscriber may implement to
// learn when its attachment to a Set actually takes effect.
type AttachNotifiee interface {
	OnAttach()
	OnDetach()
}

// Handle identifies one Add call's registration, independent of the
// subscriber's own identity, so the same subscriber value can be
// registered more than once.
type Handle uint64

type entry[T any] struct {
	handle Handle
	sub    Subscriber[T]
}

type opKind uint8

const (
	opAdd opKind = iota
	opRemove
)

type deferredOp[T any] struct {
	kind   opKind
	handle Handle
	sub    Subscriber[T]
}

// Set is a mutable, ordered collection of subscribers supporting
// reentrant add/remove during Invoke. Not safe for concurrent use
// (spec.md §5): the contract assumes a single calling thread.
type Set[T any] struct {
	next      Handle
	active    []entry[T]
	iterating bool
	deferred  []deferredOp[T]
}

// New returns an empty Set.
func New[T any]() *Set[T] {
	return &Set[T]{}
}

// Len returns the number of subscribers currently active (not counting
// adds still queued in a deferred log).
func (s *Set[T]) Len() int {
	return len(s.active)
}

// Add registers sub and returns a Handle identifying the registration.
// If called during Invoke, the registration is deferred until the
// current fan-out completes; the subscriber does not see the event
// currently being delivered.
func (s *Set[T]) Add(sub Subscriber[T]) Handle {
	s.next++
	h := s.next
	if s.iterating {
		s.deferred = append(s.deferred, deferredOp[T]{kind: opAdd, handle: h, sub: sub})
		return h
	}
	s.active = append(s.active, entry[T]{handle: h, sub: sub})
	notifyAttach(sub)
	return h
}

// Remove deregisters the subscriber identified by h. If called during
// Invoke, the removal is deferred; the subscriber still receives the
// event currently being delivered (it was already in the iteration
// snapshot) but is absent from every subsequent Invoke.
func (s *Set[T]) Remove(h Handle) {
	if s.iterating {
		s.deferred = append(s.deferred, deferredOp[T]{kind: opRemove, handle: h})
		return
	}
	s.removeActive(h)
}

func (s *Set[T]) removeActive(h Handle) {
	for i, e := range s.active {
		if e.handle == h {
			notifyDetach(e.sub)
			s.active = append(s.active[:i], s.active[i+1:]...)
			return
		}
	}
}

// Invoke delivers ev to a consistent snapshot of the current subscriber
// list. Add/Remove calls made by a subscriber's own Invoke method are
// deferred and applied once every subscriber in the snapshot has been
// visited, including when a subscriber's Invoke panics.
func (s *Set[T]) Invoke(ev T) {
	s.iterating = true
	defer func() {
		s.iterating = false
		s.applyDeferred()
	}()

	snapshot := s.active
	for _, e := range snapshot {
		e.sub.Invoke(ev)
	}
}

func (s *Set[T]) applyDeferred() {
	ops := s.deferred
	s.deferred = nil
	for _, op := range ops {
		switch op.kind {
		case opAdd:
			s.active = append(s.active, entry[T]{handle: op.handle, sub: op.sub})
			notifyAttach(op.sub)
		case opRemove:
			s.removeActive(op.handle)
		}
	}
}

func notifyAttach[T any](sub Subscriber[T]) {
	if n, ok := sub.(AttachNotifiee); ok {
		n.OnAttach()
	}
}

func notifyDetach[T any](sub Subscriber[T]) {
	if n, ok := sub.(AttachNotifiee); ok {
		n.OnDetach()
	}
}

// Func adapts a plain function to the Subscriber interface.
type Func[T any] func(ev T)

// Invoke implements Subscriber.
func (f Func[T]) Invoke(ev T) { f(ev) }
