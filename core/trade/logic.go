package trade

import (
	"math"

	"github.com/steelpath/engine/core/market"
)

// Result is the per-region outcome of one year of balancing.
type Result struct {
	Year                    int     `json:"year"`
	Region                  string  `json:"region"`
	Capacity                float64 `json:"capacity"`
	InitialUtilizedCapacity float64 `json:"initial_utilized_capacity"`
	Demand                  float64 `json:"demand"`
	InitialBalance          float64 `json:"initial_balance"`
	InitialUtilization      float64 `json:"initial_utilization"`
	AvgPlantCapacity        float64 `json:"avg_plant_capacity"`
	NewCapacityRequired     float64 `json:"new_capacity_required"`
	PlantsRequired          int     `json:"plants_required"`
	PlantsToClose           int     `json:"plants_to_close"`
	NewTotalCapacity        float64 `json:"new_total_capacity"`
	NewUtilizedCapacity     float64 `json:"new_utilized_capacity"`
	NewBalance              float64 `json:"new_balance"`
	NewUtilization          float64 `json:"new_utilization"`
	Status                  Status  `json:"initial_trade_status"`

	// Cases is the ordered list of balancing steps applied to the region.
	Cases []string `json:"cases"`
}

// Balancing step labels; round 2 and 3 steps stack on top of a round 1 case.
const (
	caseBalanced      = "R1: balanced, no action"
	caseCheapExport   = "R1: cheap excess supply, export"
	caseClosePlant    = "R1: expensive excess supply, close plant"
	caseAdjustUtil    = "R1: adjust utilization to meet demand"
	caseOpenPlant     = "R1: cheap region, open plant"
	caseImport        = "R1: insufficient supply at max utilization, import"
	caseLowerUtil     = "R2-A: lower utilization to curb surplus"
	caseExporterClose = "R2-B: close exporter plants to curb surplus"
	caseAllImports    = "R3-A: absorb all import demand"
	casePartImports   = "R3-B: absorb partial import demand"
	caseCheapestOpen  = "R3-C: open plants in cheapest region"
)

// boundUtilization clamps a rate into the operating band.
func boundUtilization(rate, utilMin, utilMax float64) float64 {
	return math.Max(math.Min(rate, utilMax), utilMin)
}

// mktBalance splits production against demand into the market entry posted
// to the trade accounts and the signed balance.
func mktBalance(production, demand float64) (market.Entry, float64) {
	balance := production - demand
	imports, exports := 0.0, 0.0
	if balance < 0 {
		imports = -balance
	} else {
		exports = balance
	}
	return market.Entry{
		DemandMinusImports: demand - imports,
		Imports:            imports,
		Exports:            exports,
	}, balance
}

// closePlantsPlan sizes the closures needed to shed excess capacity in
// whole average-plant units.
type closePlantsPlan struct {
	plantsToClose       int
	newTotalCapacity    float64
	newUtilization      float64
	newUtilizedCapacity float64
}

// planPlantClosures sheds excessCapacity in whole average-plant units. The
// excess is the surplus production at the utilization floor, so whole-plant
// rounding can leave the region at the floor with a small surplus behind.
func planPlantClosures(capacity, excessCapacity, avgPlantCapacity, production, utilMin, utilMax float64) closePlantsPlan {
	n := int(math.Ceil(excessCapacity / avgPlantCapacity))
	if n < 0 {
		n = 0
	}
	newCapacity := capacity - float64(n)*avgPlantCapacity
	rate := boundUtilization(production/newCapacity, utilMin, utilMax)
	return closePlantsPlan{
		plantsToClose:       n,
		newTotalCapacity:    newCapacity,
		newUtilization:      rate,
		newUtilizedCapacity: rate * newCapacity,
	}
}

// openPlantsPlan sizes the openings needed to add capacity in whole
// average-plant units, counted at max-production size.
type openPlantsPlan struct {
	plantsRequired      int
	newTotalCapacity    float64
	newUtilization      float64
	newUtilizedCapacity float64
}

func planPlantOpenings(capacity, capacityRequired, avgPlantCapacity, avgPlantCapacityAtMax, production, utilMin, utilMax float64) openPlantsPlan {
	n := int(math.Ceil(capacityRequired / avgPlantCapacityAtMax))
	newCapacity := capacity + float64(n)*avgPlantCapacity
	rate := boundUtilization(production/newCapacity, utilMin, utilMax)
	return openPlantsPlan{
		plantsRequired:      n,
		newTotalCapacity:    newCapacity,
		newUtilization:      rate,
		newUtilizedCapacity: rate * newCapacity,
	}
}
