package sim

import (
	"fmt"

	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/plant"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/techchoice"
)

// DemandTable is crude steel demand per (year, region), in Mt. World rows
// are keyed under market.WorldRegion.
type DemandTable map[market.YearRegion]float64

// Get returns the demand for a (year, region).
func (d DemandTable) Get(year int, region string) float64 {
	return d[market.YearRegion{Year: year, Region: region}]
}

// Regional returns the demand of every listed region for the year.
func (d DemandTable) Regional(year int, regions []string) map[string]float64 {
	out := make(map[string]float64, len(regions))
	for _, region := range regions {
		out[region] = d.Get(year, region)
	}
	return out
}

// Inputs bundles every reference table the simulation loop consumes. All
// tables are loaded before the run; the loop never touches the filesystem.
type Inputs struct {
	Roster *plant.Roster

	Demand        DemandTable
	TCO           techchoice.TCOTable
	Abatement     techchoice.AbatementTable
	LevelizedCost techchoice.LevelizedCostTable
	Availability  *techchoice.Availability
	Intensity     ledger.IntensityRef

	// ResourceConstraints are the annual ceilings per non-scrap resource;
	// ScrapConstraint is the per-year, per-region scrap ceiling.
	ResourceConstraints map[steel.Resource]map[int]float64
	ScrapConstraint     map[int]map[string]float64

	// InitialUtilization seeds the start year's regional rates.
	InitialUtilization map[string]float64

	// Regions fixes the region universe and its iteration order.
	Regions []string

	VariableCost func(country string, year int, tech steel.Technology) float64
	OtherOpex    func(tech steel.Technology, year int) float64

	// Boundary widens the trade competitiveness band per region.
	Boundary map[string]float64
}

// Validate rejects incomplete inputs.
func (in *Inputs) Validate() error {
	switch {
	case in.Roster == nil || in.Roster.Len() == 0:
		return fmt.Errorf("plant roster is empty")
	case len(in.Demand) == 0:
		return fmt.Errorf("demand table is empty")
	case in.Availability == nil:
		return fmt.Errorf("technology availability table is missing")
	case len(in.Regions) == 0:
		return fmt.Errorf("region list is empty")
	case in.VariableCost == nil || in.OtherOpex == nil:
		return fmt.Errorf("cost functions are missing")
	}
	return nil
}
