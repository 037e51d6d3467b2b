// Package simmetrics exposes prometheus instrumentation for the reactor
// and Kalman engine, following the same Timer/ObserveDuration pattern the
// teacher's scheduler uses for scheduling-latency histograms.
package simmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsDelivered counts events delivered by the reactor across all sources.
	EventsDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kalmansub_events_delivered_total",
			Help: "Total number of events delivered by the reactor.",
		},
	)

	// RunOneLatency measures wall-clock time spent servicing one run_one() call.
	RunOneLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kalmansub_run_one_latency_seconds",
			Help:    "Latency of a single reactor run_one() call.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// HeapDepth reports the number of primed sources currently in the reactor's heap.
	HeapDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kalmansub_reactor_heap_depth",
			Help: "Number of primed sources currently queued in the reactor heap.",
		},
	)

	// FilterSteps counts Kalman engine step (extrapolate+correct) invocations.
	FilterSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kalmansub_filter_steps_total",
			Help: "Total number of Kalman filter steps, partitioned by correction kind.",
		},
		[]string{"kind"}, // "full" or "scalar"
	)
)

// Timer is a helper for timing operations, observed into a histogram.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer started at the current time.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed duration to a histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	histogram.Observe(time.Since(t.start).Seconds())
}

// Duration returns the elapsed time since the timer started.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// MustRegister registers all simulation metrics with the given registerer.
// Called once by the cmd/ example driver; library code never registers
// metrics on import.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(EventsDelivered, RunOneLatency, HeapDepth, FilterSteps)
}
