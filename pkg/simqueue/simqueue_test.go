package simqueue

import (
	"reflect"
	"testing"

	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intEvent int

func (intEvent) EventTime() vtime.Time { return vtime.Epoch }

func TestAttachSinkAcceptsMatchingPayloadType(t *testing.T) {
	set := NewSinkSet("src", reflect.TypeOf(intEvent(0)))
	var got []intEvent
	sink := NewTypedSink[intEvent]("sink", func(ev intEvent) { got = append(got, ev) })

	require.NoError(t, set.AttachSink(sink))
	set.Publish(intEvent(7))
	assert.Equal(t, []intEvent{7}, got)
}

func TestAttachSinkRejectsMismatchedPayloadType(t *testing.T) {
	set := NewSinkSet("src", reflect.TypeOf(intEvent(0)))
	sink := NewTypedSink[string]("sink", func(ev string) {})

	err := set.AttachSink(sink)
	require.Error(t, err)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "src", mismatch.SourceName)
	assert.Equal(t, "sink", mismatch.SinkName)
	assert.Equal(t, reflect.TypeOf(intEvent(0)), mismatch.Expected)
	assert.Equal(t, reflect.TypeOf(""), mismatch.Offered)
}

func TestDetachSinkStopsDelivery(t *testing.T) {
	set := NewSinkSet("src", reflect.TypeOf(intEvent(0)))
	var count int
	sink := NewTypedSink[intEvent]("sink", func(ev intEvent) { count++ })

	require.NoError(t, set.AttachSink(sink))
	set.Publish(intEvent(1))
	set.DetachSink(sink)
	set.Publish(intEvent(2))

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, set.Len())
}

func TestRequireNativeRoundTrips(t *testing.T) {
	sink := NewTypedSink[intEvent]("sink", func(ev intEvent) {})
	var asSink Sink = sink
	native := RequireNative[intEvent](asSink)
	assert.Same(t, sink, native)
}

func TestRequireNativePanicsOnWrongType(t *testing.T) {
	sink := NewTypedSink[intEvent]("sink", func(ev intEvent) {})
	var asSink Sink = sink
	assert.Panics(t, func() { RequireNative[string](asSink) })
}

type fakeReactor struct {
	primed []Source
}

func (r *fakeReactor) NotifySourcePrimed(s Source) { r.primed = append(r.primed, s) }

type fakeSource struct {
	ReactorAttachment
}

func (fakeSource) Name() string                           { return "fake" }
func (fakeSource) AttachSink(sink Sink) error             { return nil }
func (fakeSource) DetachSink(sink Sink)                   {}
func (fakeSource) DeliverOne() uint64                     { return 0 }
func (fakeSource) IsEmpty() bool                          { return true }
func (fakeSource) IsExhausted() bool                      { return false }
func (fakeSource) CurrentTime() vtime.Time                { return vtime.Epoch }
func (fakeSource) AdvanceUntil(t vtime.Time, replay bool) {}

func TestReactorAttachmentEnforcesAtMostOneReactor(t *testing.T) {
	src := &fakeSource{}
	r1 := &fakeReactor{}
	r2 := &fakeReactor{}

	require.NoError(t, src.Attach(r1))
	assert.True(t, src.Attached())

	err := src.Attach(r2)
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	src.NotifyPrimed(src)
	assert.Len(t, r1.primed, 1)
	assert.Empty(t, r2.primed)

	src.Detach()
	assert.False(t, src.Attached())
	src.NotifyPrimed(src)
	assert.Len(t, r1.primed, 1, "detached source must not notify its former reactor")
}
