package core

// Side is the direction of a position
type Side string

const (
	SideFlat  Side = "FLAT"
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// ParseSide converts an action string (LONG, SHORT) into a Side
func ParseSide(value string) (Side, bool) {
	switch Side(value) {
	case SideLong:
		return SideLong, true
	case SideShort:
		return SideShort, true
	default:
		return SideFlat, false
	}
}

// Signal is the per-bar output of a signal generator
type Signal string

const (
	SignalHold  Signal = "HOLD"
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
)

// SignalFor maps a configured action to the signal it emits
func SignalFor(side Side) Signal {
	switch side {
	case SideLong:
		return SignalLong
	case SideShort:
		return SignalShort
	default:
		return SignalHold
	}
}

// Side returns the position direction requested by the signal
func (s Signal) Side() Side {
	switch s {
	case SignalLong:
		return SideLong
	case SignalShort:
		return SideShort
	default:
		return SideFlat
	}
}
