package events

import (
	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/core/steel"
)

// TechnologyChosenEvent is published when a plant settles its technology for
// the year, whether or not the decision changed it.
type TechnologyChosenEvent struct {
	Year       int
	Plant      string
	Region     string
	From       steel.Technology
	To         steel.Technology
	SwitchType cycle.SwitchType
}

// SwitchDeferredEvent is published when the capacity turnover budget pushes
// a plant's investment decision into the next year.
type SwitchDeferredEvent struct {
	Year     int
	Plant    string
	Capacity float64
}
