package realizationsource

import (
	"testing"

	"github.com/Rconybea/kalman-sub000/pkg/reactor"
	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/tracer"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneSecond = vtime.Duration(1_000_000_000)

func TestAlwaysPrimedAndNeverExhausted(t *testing.T) {
	src := New("const", tracer.NewConstantTracer(vtime.Epoch, 0.0), oneSecond)
	assert.False(t, src.IsEmpty())
	assert.False(t, src.IsExhausted())
}

func TestDeliverOnePublishesThenAdvances(t *testing.T) {
	src := New("const", tracer.NewConstantTracer(vtime.Epoch, 7.0), oneSecond)

	var got []Sample[float64]
	sink := simqueue.NewTypedSink[Sample[float64]]("sink", func(ev Sample[float64]) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	assert.Equal(t, vtime.Epoch, src.CurrentTime())
	n := src.DeliverOne()
	assert.Equal(t, uint64(1), n)
	assert.Equal(t, []Sample[float64]{{Time: vtime.Epoch, Value: 7.0}}, got)
	assert.Equal(t, vtime.Epoch.Add(oneSecond), src.CurrentTime())
}

// TestSixtySecondsOfOneSecondSamples is the spec's scenario 2 analog:
// a single realization source over a constant-zero process, Δt = 1s,
// run_until(t0 + 60s) must yield exactly 61 events at t0, t0+1s, ..., t0+60s.
func TestSixtySecondsOfOneSecondSamples(t *testing.T) {
	r := reactor.New(vtime.Epoch)
	src := New("const-zero", tracer.NewConstantTracer(vtime.Epoch, 0.0), oneSecond)
	require.NoError(t, r.AddSource(src))

	var got []Sample[float64]
	sink := simqueue.NewTypedSink[Sample[float64]]("sink", func(ev Sample[float64]) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	r.RunUntil(vtime.Epoch.Add(60 * oneSecond))

	require.Len(t, got, 61)
	for i, ev := range got {
		assert.Equal(t, vtime.Epoch.Add(vtime.Duration(i)*oneSecond), ev.Time)
		assert.Equal(t, 0.0, ev.Value)
	}
}

func TestAdvanceUntilReplayDeliversIntermediateSamples(t *testing.T) {
	src := New("const", tracer.NewConstantTracer(vtime.Epoch, 1.0), oneSecond)

	var got []Sample[float64]
	sink := simqueue.NewTypedSink[Sample[float64]]("sink", func(ev Sample[float64]) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	src.AdvanceUntil(vtime.Epoch.Add(3*oneSecond), true)

	assert.Len(t, got, 3)
	assert.Equal(t, vtime.Epoch.Add(3*oneSecond), src.CurrentTime())
}

func TestAdvanceUntilNoReplaySkipsSilently(t *testing.T) {
	src := New("const", tracer.NewConstantTracer(vtime.Epoch, 1.0), oneSecond)

	var got []Sample[float64]
	sink := simqueue.NewTypedSink[Sample[float64]]("sink", func(ev Sample[float64]) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	src.AdvanceUntil(vtime.Epoch.Add(10*oneSecond), false)

	assert.Empty(t, got)
	assert.Equal(t, vtime.Epoch.Add(10*oneSecond), src.CurrentTime())
}
