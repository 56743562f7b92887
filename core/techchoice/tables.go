package techchoice

import (
	"github.com/steelpath/engine/core/steel"
)

// SwitchKey addresses one potential switch in the cost and abatement
// reference tables.
type SwitchKey struct {
	Year    int
	Country string
	Base    steel.Technology
	Switch  steel.Technology
}

// TCORow holds both total-cost-of-ownership variants of a switch: the
// regular capex figure used at main cycles and the greenfield capex figure
// used for off-cycle switches.
type TCORow struct {
	RegularCapex float64
	GFCapex      float64
}

// TCOTable is the total-cost-of-ownership reference, keyed by switch.
type TCOTable map[SwitchKey]TCORow

// AbatementTable holds the abated combined emissivity of each switch.
type AbatementTable map[SwitchKey]float64

// CostKey addresses the levelized cost of running a technology in a region.
type CostKey struct {
	Year   int
	Region string
	Tech   steel.Technology
}

// LevelizedCostTable is the levelized cost reference used to pick the
// technology of newly opened plants.
type LevelizedCostTable map[CostKey]float64
