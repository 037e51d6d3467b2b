package quote

import (
	"testing"

	"github.com/Rconybea/kalman-sub000/pkg/vtime"
	"github.com/stretchr/testify/assert"
)

func TestPriceRoundTripAndCompare(t *testing.T) {
	p1 := PriceFromDouble(1.00)
	p2 := PriceFromDouble(0.10)

	assert.InDelta(t, 1.00, p1.ToDouble(), 1e-9)
	assert.InDelta(t, 0.10, p2.ToDouble(), 1e-9)
	assert.Greater(t, p1.Compare(p2), int64(0))
	assert.Equal(t, int64(0), p1.Compare(PriceFromDouble(1.00)))
}

func TestSizeValidity(t *testing.T) {
	assert.False(t, InvalidSize().IsValid())
	assert.True(t, SizeFromInt(0).IsValid())
	assert.True(t, SizeFromInt(100).IsValid())
}

func TestSideComparePxBidVsAsk(t *testing.T) {
	high := PriceFromDouble(10.0)
	low := PriceFromDouble(9.0)

	assert.Greater(t, SideComparePx(Bid, high, low), int64(0), "bid improves as price rises")
	assert.Less(t, SideComparePx(Ask, high, low), int64(0), "ask improves as price falls")
}

func TestSideMatchesOrImprovesPx(t *testing.T) {
	px := PriceFromDouble(5.0)
	assert.True(t, SideMatchesOrImprovesPx(Bid, px, px))
	assert.False(t, SideMatchesOrImprovesPx(Bid, PriceFromDouble(4.0), px))
}

func TestPxSize2Presence(t *testing.T) {
	bidOnly := NewPxSize2(SizeFromInt(10), PriceFromDouble(1.0), PriceFromDouble(0), InvalidSize())
	assert.True(t, bidOnly.IsBidPresent())
	assert.False(t, bidOnly.IsAskPresent())
	assert.True(t, bidOnly.IsSidePresent(Bid))
	assert.False(t, bidOnly.IsSidePresent(Ask))
}

func TestBboTickCompareOrdersByTimeThenId(t *testing.T) {
	pxz2 := NewPxSize2(SizeFromInt(1), PriceFromDouble(1), PriceFromDouble(2), SizeFromInt(1))
	early := NewBboTick(vtime.Epoch, OptionIdFromUint(1), pxz2)
	late := NewBboTick(vtime.Epoch.Add(1), OptionIdFromUint(0), pxz2)

	assert.Less(t, Compare(early, late), int64(0))
	assert.Equal(t, vtime.Epoch, early.EventTime())

	sameTime1 := NewBboTick(vtime.Epoch, OptionIdFromUint(1), pxz2)
	sameTime2 := NewBboTick(vtime.Epoch, OptionIdFromUint(2), pxz2)
	assert.Less(t, Compare(sameTime1, sameTime2), int64(0))
}
