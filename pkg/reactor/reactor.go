// Package reactor implements the virtual-time scheduler of spec.md
// §4.3: a minimum-heap merge of attached sources under a priming
// protocol, delivering events across sources in nondecreasing timestamp
// order. Grounded on original_source/src/simulator/Simulator.hpp (the
// sim_heap_ invariant and advance_one_event/run_until shape) and
// src/reactor/Reactor.hpp (the notify_source_primed/add_source/
// remove_source/run_one contract); logging and metrics idiom follow
// the teacher's pkg/scheduler (component logger, per-cycle timer).
package reactor

import (
	"container/heap"

	"github.com/Rconybea/kalman-sub000/internal/klog"
	"github.com/Rconybea/kalman-sub000/internal/simmetrics"
	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/rs/zerolog"
)

type heapEntry struct {
	t      vtime.Time
	seq    uint64
	source simqueue.Source
	index  int
}

type sourceHeap []*heapEntry

func (h sourceHeap) Len() int { return len(h) }

func (h sourceHeap) Less(i, j int) bool {
	if h[i].t != h[j].t {
		return h[i].t < h[j].t
	}
	// Stable tie-break by attach order (spec.md §4.3's "stable source
	// identity").
	return h[i].seq < h[j].seq
}

func (h sourceHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *sourceHeap) Push(x any) {
	e := x.(*heapEntry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *sourceHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}

// Reactor multiplexes a set of simqueue.Source instances under virtual
// time. Not safe for concurrent use (spec.md §5).
type Reactor struct {
	tNow    vtime.Time
	heap    sourceHeap
	entries map[simqueue.Source]*heapEntry
	nextSeq uint64
	logger  zerolog.Logger
}

// New constructs a Reactor whose virtual clock starts at t0.
func New(t0 vtime.Time) *Reactor {
	return &Reactor{
		tNow:    t0,
		entries: make(map[simqueue.Source]*heapEntry),
		logger:  klog.WithComponent("reactor"),
	}
}

// TNow returns the reactor's virtual clock: the timestamp of the last
// event delivered, or its construction-time epoch if none.
func (r *Reactor) TNow() vtime.Time {
	return r.tNow
}

// NextTime returns the heap root's timestamp, or TNow if the heap is
// empty (spec.md §4.3).
func (r *Reactor) NextTime() vtime.Time {
	if len(r.heap) == 0 {
		return r.tNow
	}
	return r.heap[0].t
}

// SourceCount returns the number of currently attached sources,
// primed or not.
func (r *Reactor) SourceCount() int {
	return len(r.entries)
}

// attachable is satisfied by sources embedding simqueue.ReactorAttachment.
type attachable interface {
	Attach(simqueue.ReactorHandle) error
}

// detachable is satisfied by sources embedding simqueue.ReactorAttachment.
type detachable interface {
	Detach()
}

// AddSource records src, fast-forwards it past any stale events via
// AdvanceUntil(t_now, replay=false), then inserts it into the heap if
// it is primed. Fails with simqueue.ErrAlreadyAttached if src already
// belongs to a reactor.
func (r *Reactor) AddSource(src simqueue.Source) error {
	if a, ok := src.(attachable); ok {
		if err := a.Attach(r); err != nil {
			return err
		}
	}

	src.AdvanceUntil(r.tNow, false)

	r.nextSeq++
	e := &heapEntry{t: src.CurrentTime(), seq: r.nextSeq, source: src, index: -1}
	r.entries[src] = e
	if !src.IsEmpty() {
		heap.Push(&r.heap, e)
	}

	r.logger.Debug().Str("source", src.Name()).Msg("source attached")
	return nil
}

// RemoveSource detaches src, removing it from the heap if present. A
// no-op if src was never attached.
func (r *Reactor) RemoveSource(src simqueue.Source) {
	e, ok := r.entries[src]
	if !ok {
		return
	}
	delete(r.entries, src)
	if e.index >= 0 {
		heap.Remove(&r.heap, e.index)
	}
	if d, ok := src.(detachable); ok {
		d.Detach()
	}
	r.logger.Debug().Str("source", src.Name()).Msg("source detached")
}

// NotifySourcePrimed implements simqueue.ReactorHandle: called by a
// previously not-primed attached source when it first obtains an
// event, re-inserting it into the heap. Tolerates calls that arrive
// outside a RunOne (spec.md §4.3).
func (r *Reactor) NotifySourcePrimed(src simqueue.Source) {
	e, ok := r.entries[src]
	if !ok || e.index >= 0 {
		return
	}
	e.t = src.CurrentTime()
	heap.Push(&r.heap, e)
}

// RunOne pops the earliest-timestamped source, delivers exactly one
// event from it, and restores the heap invariant — re-inserting the
// source with its updated head timestamp unless it is now exhausted or
// not-primed. Returns 1 if an event was delivered, else 0. If a
// source's delivery panics, the reactor restores heap invariants before
// the panic propagates (spec.md §4.3's failure semantics).
func (r *Reactor) RunOne() uint64 {
	if len(r.heap) == 0 {
		return 0
	}

	timer := simmetrics.NewTimer()
	defer timer.ObserveDuration(simmetrics.RunOneLatency)

	e := heap.Pop(&r.heap).(*heapEntry)
	src := e.source

	reheap := func() {
		if !src.IsExhausted() && !src.IsEmpty() {
			e.t = src.CurrentTime()
			heap.Push(&r.heap, e)
		}
	}

	defer func() {
		if p := recover(); p != nil {
			reheap()
			panic(p)
		}
	}()

	n := src.DeliverOne()
	if n > 0 && e.t.After(r.tNow) {
		r.tNow = e.t
	}

	reheap()

	simmetrics.EventsDelivered.Add(float64(n))
	simmetrics.HeapDepth.Set(float64(len(r.heap)))

	return n
}

// RunUntil repeatedly calls RunOne while the heap root's timestamp is
// <= t1.
func (r *Reactor) RunUntil(t1 vtime.Time) {
	for len(r.heap) > 0 && !r.heap[0].t.After(t1) {
		r.RunOne()
	}
}

// PollOne drains up to budget events in a single call, letting an
// embedder chunk reactor work without issuing RunOne individually —
// supplementing spec.md §5's chunking guidance in the shape of
// original_source/src/queue/PollingReactor.hpp's bounded poll loop.
// Returns the number of events actually delivered.
func (r *Reactor) PollOne(budget int) uint64 {
	var total uint64
	for i := 0; i < budget && len(r.heap) > 0; i++ {
		total += r.RunOne()
	}
	return total
}
