package dsp

import "fmt"

// Side distinguishes the input and output halves of the processor. The
// wire representation is the lowercase string used verbatim in control
// messages and persisted parameter keys.
type Side string

const (
	SideInput  Side = "input"
	SideOutput Side = "output"
)

// Address identifies one channel: a (side, 1-based index) pair. Every
// effect instance (Equalizer, Gain, Mute) owns exactly one Address and
// ignores any mutation not addressed to it — this is how a single bus
// event fans out to every subscriber without per-subscriber filtering
// (spec invariant 4).
type Address struct {
	Side  Side
	Index int // 1-based
}

func (a Address) String() string {
	return fmt.Sprintf("%s[%d]", a.Side, a.Index)
}

// Matches reports whether a mutation addressed to (side, index) belongs
// to this address.
func (a Address) Matches(side Side, index int) bool {
	return a.Side == side && a.Index == index
}
