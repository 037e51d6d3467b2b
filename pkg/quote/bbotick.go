package quote

import "github.com/Rconybea/kalman-sub000/pkg/vtime"

// BboTick reports a best-bid-offer update for one option: timestamp,
// instrument, and a bid/ask price-size pair which may report bid-only,
// ask-only, or both sides present. Satisfies simqueue.Event so it can
// flow through a secondarysource.Source as a market-model output.
type BboTick struct {
	Tm   vtime.Time
	Id   OptionId
	Pxz2 PxSize2
}

// NewBboTick constructs a BboTick.
func NewBboTick(tm vtime.Time, id OptionId, pxz2 PxSize2) BboTick {
	return BboTick{Tm: tm, Id: id, Pxz2: pxz2}
}

// EventTime implements simqueue.Event.
func (t BboTick) EventTime() vtime.Time { return t.Tm }

// IsSidePresent reports whether side s is present on this tick.
func (t BboTick) IsSidePresent(s Side) bool { return t.Pxz2.IsSidePresent(s) }

// IsBidPresent reports whether the bid side is present on this tick.
func (t BboTick) IsBidPresent() bool { return t.Pxz2.IsBidPresent() }

// IsAskPresent reports whether the ask side is present on this tick.
func (t BboTick) IsAskPresent() bool { return t.Pxz2.IsAskPresent() }

// Compare orders ticks by timestamp, then by instrument identifier —
// the ordering a secondarysource min-heap relies on.
func Compare(x, y BboTick) int64 {
	if d := x.Tm.Sub(y.Tm); d != 0 {
		return int64(d)
	}
	return x.Id.Compare(y.Id)
}
