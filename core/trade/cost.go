package trade

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/steel"
)

// Status classifies a region's posture for the year's first round.
type Status string

const (
	StatusDomestic Status = "Domestic"
	StatusExporter Status = "Exporter"
	StatusImporter Status = "Importer"
)

// StatusOf classifies a region from its cost competitiveness and initial
// balance. Competitive overproducers export; uncompetitive underproducers
// import; everyone else resolves domestically.
func StatusOf(closeToMean bool, balance float64) Status {
	over := balance > 0
	switch {
	case closeToMean && over:
		return StatusExporter
	case !closeToMean && !over:
		return StatusImporter
	default:
		return StatusDomestic
	}
}

// PlantCost carries the per-plant inputs of the cost-of-steelmaking
// aggregation.
type PlantCost struct {
	Name     string
	Region   string
	Country  string
	Capacity float64
}

// CostInputs resolves the price components of the cost of steelmaking.
type CostInputs struct {
	VariableCost func(country string, year int, tech steel.Technology) float64
	OtherOpex    func(tech steel.Technology, year int) float64
	TechChoice   func(year int, plant string) steel.Technology
}

// RegionalCost computes the unit cost of steelmaking per region. Costs
// reference the prior year's choices and utilization so trade reacts to the
// state plants actually operated in; the start year references itself.
func RegionalCost(year, startYear int, plants []PlantCost, in CostInputs, util *market.UtilizationState, regionalCapacity map[string]float64) map[string]float64 {
	refYear := year - 1
	if year == startYear {
		refYear = year
	}
	totals := make(map[string]float64)
	for _, p := range plants {
		rate := util.Value(refYear, p.Region)
		if rate == 0 {
			continue
		}
		tech := in.TechChoice(refYear, p.Name)
		cost := in.VariableCost(p.Country, refYear, tech) + in.OtherOpex(tech, refYear)
		totals[p.Region] += p.Capacity * rate * cost
	}
	out := make(map[string]float64, len(totals))
	for region, total := range totals {
		utilized := regionalCapacity[region] * util.Value(refYear, region)
		if utilized != 0 {
			out[region] = total / utilized
		}
	}
	return out
}

// Assessment is a region's cost competitiveness for the year.
type Assessment struct {
	Region                string  `json:"region"`
	CostOfSteelmaking     float64 `json:"cost_of_steelmaking"`
	UpperBoundary         float64 `json:"upper_boundary"`
	BelowAverage          bool    `json:"relative_cost_below_avg"`
	CloseToMean           bool    `json:"relative_cost_close_to_mean"`
	Status                Status  `json:"initial_trade_status,omitempty"`
	InitialOverproduction bool    `json:"initial_overproduction"`
}

// AssessRelativeCost marks each region's cost of steelmaking against the
// population: below average, and within the region's boundary above the
// mean. The boundary is the mean plus the cost range scaled by the region's
// boundary factor.
func AssessRelativeCost(cos map[string]float64, pctBoundary map[string]float64, defaultBoundary float64) map[string]*Assessment {
	regions := make([]string, 0, len(cos))
	vals := make([]float64, 0, len(cos))
	for region := range cos {
		regions = append(regions, region)
	}
	sort.Strings(regions)
	for _, region := range regions {
		vals = append(vals, cos[region])
	}
	mean := stat.Mean(vals, nil)
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	valueRange := hi - lo

	out := make(map[string]*Assessment, len(cos))
	for _, region := range regions {
		boundary, ok := pctBoundary[region]
		if !ok {
			boundary = defaultBoundary
		}
		upper := mean + valueRange*boundary
		out[region] = &Assessment{
			Region:            region,
			CostOfSteelmaking: cos[region],
			UpperBoundary:     upper,
			BelowAverage:      cos[region] <= mean,
			CloseToMean:       cos[region] < upper,
		}
	}
	return out
}
