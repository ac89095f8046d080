package domain

type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// Position is an open position. A nil *Position means flat.
//
// EntryPrice is re-based after partial closes so that the unrealized cost
// basis stays consistent. StopLossPrice 0 means unset. ExtremePrice tracks
// the running maximum close since entry for a long (minimum for a short)
// and drives the trailing stop ratchet.
type Position struct {
	Side          Side
	EntryPrice    float64
	Size          float64
	StopLossPrice float64
	ExtremePrice  float64
}
