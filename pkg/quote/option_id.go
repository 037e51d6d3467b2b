package quote

// OptionId uniquely identifies an option instrument within a scenario.
type OptionId struct {
	num uint32
}

// InvalidOptionId is the sentinel "no instrument" identifier.
func InvalidOptionId() OptionId { return OptionId{num: ^uint32(0)} }

// OptionIdFromUint wraps num as an OptionId.
func OptionIdFromUint(num uint32) OptionId { return OptionId{num: num} }

// Num returns the raw identifier.
func (id OptionId) Num() uint32 { return id.num }

// Compare returns negative/zero/positive as x is less than, equal to,
// or greater than y.
func (x OptionId) Compare(y OptionId) int64 {
	return int64(x.num) - int64(y.num)
}
