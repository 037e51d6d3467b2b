package secondarysource

import (
	"testing"

	"github.com/Rconybea/kalman-sub000/pkg/reactor"
	"github.com/Rconybea/kalman-sub000/pkg/realizationsource"
	"github.com/Rconybea/kalman-sub000/pkg/simqueue"
	"github.com/Rconybea/kalman-sub000/pkg/tracer"
	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickEvent struct {
	t vtime.Time
	v int
}

func (e tickEvent) EventTime() vtime.Time { return e.t }

func TestEmptySourceIsEmptyNotExhausted(t *testing.T) {
	src := New[tickEvent]("secondary", vtime.Epoch)
	assert.True(t, src.IsEmpty())
	assert.False(t, src.IsExhausted())
	assert.Equal(t, vtime.Epoch, src.CurrentTime())
}

func TestPublishThenDeliverOneInTimestampOrder(t *testing.T) {
	src := New[tickEvent]("secondary", vtime.Epoch)

	var got []tickEvent
	sink := simqueue.NewTypedSink[tickEvent]("sink", func(ev tickEvent) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(3), v: 3}))
	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(1), v: 1}))
	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(2), v: 2}))

	assert.Equal(t, vtime.Epoch.Add(1), src.CurrentTime())

	for i := 0; i < 3; i++ {
		n := src.DeliverOne()
		require.Equal(t, uint64(1), n)
	}
	assert.Equal(t, []tickEvent{{vtime.Epoch.Add(1), 1}, {vtime.Epoch.Add(2), 2}, {vtime.Epoch.Add(3), 3}}, got)
	assert.True(t, src.IsEmpty())
}

func TestPublishAfterUpstreamExhaustedFails(t *testing.T) {
	src := New[tickEvent]("secondary", vtime.Epoch)
	src.MarkUpstreamExhausted()

	err := src.Publish(tickEvent{t: vtime.Epoch.Add(1), v: 1})
	assert.ErrorIs(t, err, ErrUpstreamExhausted)
}

func TestIsExhaustedRequiresBothUpstreamExhaustedAndEmpty(t *testing.T) {
	src := New[tickEvent]("secondary", vtime.Epoch)
	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(1), v: 1}))

	src.MarkUpstreamExhausted()
	assert.False(t, src.IsExhausted(), "still has a pending event")

	src.DeliverOne()
	assert.True(t, src.IsExhausted())
}

func TestAdvanceUntilReplayFalseDropsSilently(t *testing.T) {
	src := New[tickEvent]("secondary", vtime.Epoch)

	var got []tickEvent
	sink := simqueue.NewTypedSink[tickEvent]("sink", func(ev tickEvent) { got = append(got, ev) })
	require.NoError(t, src.AttachSink(sink))

	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(1), v: 1}))
	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(2), v: 2}))
	require.NoError(t, src.Publish(tickEvent{t: vtime.Epoch.Add(10), v: 10}))

	src.AdvanceUntil(vtime.Epoch.Add(5), false)

	assert.Empty(t, got)
	assert.Equal(t, vtime.Epoch.Add(10), src.CurrentTime())
}

// TestSecondarySourcePriming is the spec's scenario 6 analog: attach an
// empty secondary source to a reactor, start run_until; from a
// realization-source callback, publish an event earlier than the run
// horizon and assert that it is delivered exactly once within that
// run_until and that the secondary source is empty (not primed) again
// afterwards.
func TestSecondarySourcePriming(t *testing.T) {
	r := reactor.New(vtime.Epoch)

	secondary := New[tickEvent]("secondary", vtime.Epoch)
	require.NoError(t, r.AddSource(secondary))

	var secondaryEvents []tickEvent
	sink := simqueue.NewTypedSink[tickEvent]("collector", func(ev tickEvent) { secondaryEvents = append(secondaryEvents, ev) })
	require.NoError(t, secondary.AttachSink(sink))

	oneSecond := vtime.Duration(1_000_000_000)
	realization := realizationsource.New("driver", tracer.NewConstantTracer(vtime.Epoch, 0.0), oneSecond)
	require.NoError(t, r.AddSource(realization))

	published := false
	driverSink := simqueue.NewTypedSink[realizationsource.Sample[float64]]("driver-sink", func(ev realizationsource.Sample[float64]) {
		if !published && ev.Time == vtime.Epoch.Add(2*oneSecond) {
			published = true
			require.NoError(t, secondary.Publish(tickEvent{t: vtime.Epoch.Add(2*oneSecond) + 1, v: 99}))
		}
	})
	require.NoError(t, realization.AttachSink(driverSink))

	r.RunUntil(vtime.Epoch.Add(5 * oneSecond))

	require.Len(t, secondaryEvents, 1)
	assert.Equal(t, 99, secondaryEvents[0].v)
	assert.True(t, secondary.IsEmpty(), "secondary source returns to not-primed after its single event drains")
}
