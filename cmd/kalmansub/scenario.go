package main

import (
	"fmt"

	"github.com/Rconybea/kalman-sub000/internal/klog"
	"github.com/Rconybea/kalman-sub000/internal/linalg"
	"github.com/Rconybea/kalman-sub000/internal/simconfig"
	"github.com/Rconybea/kalman-sub000/internal/simmetrics"
	"github.com/Rconybea/kalman-sub000/pkg/kalman"
	"github.com/Rconybea/kalman-sub000/pkg/reactor"
	"github.com/Rconybea/kalman-sub000/pkg/realizationsource"
	"github.com/Rconybea/kalman-sub000/pkg/secondarysource"
	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/tracer"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/google/uuid"
)

// FilteredSample is republished, one per processed observation, through
// the scenario's secondary source so downstream sinks see filtered
// estimates in the same event-driven style as raw process samples.
type FilteredSample struct {
	Time vtime.Time
	X    float64
	P    float64
}

// EventTime implements simqueue.Event.
func (f FilteredSample) EventTime() vtime.Time { return f.Time }

// Summary reports the outcome of one scenario run.
type Summary struct {
	RunID       string
	SampleCount int
	FinalX      float64
	FinalP      float64
}

const nanosPerSecond = 1e9

// RunScenario wires a tracer, a realization source, a scalar Kalman
// filter, and a secondary source of filtered estimates through one
// reactor, then drains it until the scenario's horizon.
func RunScenario(sc *simconfig.Scenario) (Summary, error) {
	runID := uuid.New().String()
	log := klog.WithComponent("kalmansub").With().Str("run_id", runID).Str("scenario", sc.Name).Logger()
	log.Info().Msg("scenario starting")

	dt := vtime.Duration(sc.SampleIntervalSeconds * nanosPerSecond)
	horizon := vtime.Duration(sc.HorizonSeconds * nanosPerSecond)

	var proc tracer.Tracer[float64]
	switch sc.Process.Kind {
	case "constant":
		proc = tracer.NewConstantTracer(vtime.Epoch, sc.Process.Value0)
	case "linear":
		proc = tracer.NewLinearTracer(vtime.Epoch, sc.Process.Value0, sc.Process.SlopePerS)
	default:
		return Summary{}, fmt.Errorf("kalmansub: unknown process kind %q", sc.Process.Kind)
	}

	r := reactor.New(vtime.Epoch)

	src := realizationsource.New("process", proc, dt)
	if err := r.AddSource(src); err != nil {
		return Summary{}, err
	}

	filtered := secondarysource.New[FilteredSample]("filtered", vtime.Epoch)
	if err := r.AddSource(filtered); err != nil {
		return Summary{}, err
	}

	var results []FilteredSample
	collector := simqueue.NewTypedSink[FilteredSample]("collector", func(ev FilteredSample) {
		results = append(results, ev)
	})
	if err := filtered.AttachSink(collector); err != nil {
		return Summary{}, err
	}

	stepSpec := func(kalman.State, kalman.Input) (kalman.Transition, kalman.Observable) {
		f := linalg.Identity(1)
		q := linalg.Zeros(1, 1)
		q.Set(0, 0, sc.Filter.ProcessNoise)

		h := linalg.Identity(1)
		rr := linalg.Zeros(1, 1)
		rr.Set(0, 0, sc.Filter.ObservationNoise)

		return kalman.Transition{F: f, Q: q}, kalman.Observable{H: h, R: rr}
	}

	state := kalman.State{
		K:  0,
		Tk: vtime.Epoch,
		X:  linalg.FromVector([]float64{0}),
		P:  linalg.Scale(sc.Filter.InitialVariance, linalg.Identity(1)),
	}

	var stepErr error
	sampleSink := simqueue.NewTypedSink[realizationsource.Sample[float64]]("kalman-update", func(ev realizationsource.Sample[float64]) {
		if stepErr != nil {
			return
		}
		in := kalman.Input{Tkp1: ev.Time, Z: linalg.FromVector([]float64{ev.Value})}

		ext, err := kalman.RunStep(stepSpec, state, in)
		if err != nil {
			stepErr = err
			return
		}
		simmetrics.FilterSteps.WithLabelValues("full").Inc()
		state = ext.State

		if err := filtered.Publish(FilteredSample{Time: ev.Time, X: state.X.At(0, 0), P: state.P.At(0, 0)}); err != nil {
			stepErr = err
		}
	})
	if err := src.AttachSink(sampleSink); err != nil {
		return Summary{}, err
	}

	r.RunUntil(vtime.Epoch.Add(horizon))

	if stepErr != nil {
		return Summary{}, stepErr
	}

	log.Info().Int("sample_count", len(results)).Msg("scenario complete")

	return Summary{
		RunID:       runID,
		SampleCount: len(results),
		FinalX:      state.X.At(0, 0),
		FinalP:      state.P.At(0, 0),
	}, nil
}
