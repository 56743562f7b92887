package trade

import (
	"github.com/steelpath/engine/core/market"
)

// GapInputs is one year's input to the non-trading balancing flow.
type GapInputs struct {
	Year      int
	StartYear int
	Regions   []string
	// Demand is crude steel demand per region.
	Demand           map[string]float64
	AvgPlantCapacity float64
	Utilization      *market.UtilizationState
	// Capacity is the regional capacity entering the year.
	Capacity map[string]float64
}

// ProductionDemandGap resolves each region against its own demand, with no
// trade between regions. A region whose demand fits the utilization band
// adjusts its rate; below the floor it closes plants, above the ceiling it
// opens them.
func (f *Flow) ProductionDemandGap(in GapInputs) (*Outcome, error) {
	refYear := in.Year - 1
	if in.Year == in.StartYear {
		refYear = in.Year
	}

	results := make(map[string]*Result, len(in.Regions))
	capacity := make(map[string]float64, len(in.Regions))

	for _, region := range in.Regions {
		initial := in.Utilization.Value(refYear, region)
		bounded := boundUtilization(initial, f.cfg.UtilMin, f.cfg.UtilMax)
		regionCapacity := in.Capacity[region]
		demand := in.Demand[region]
		res := &Result{
			Year:                    in.Year,
			Region:                  region,
			Capacity:                regionCapacity,
			InitialUtilizedCapacity: regionCapacity * initial,
			Demand:                  demand,
			InitialBalance:          regionCapacity*bounded - demand,
			InitialUtilization:      initial,
			AvgPlantCapacity:        in.AvgPlantCapacity,
			Status:                  StatusDomestic,
		}
		results[region] = res

		minRequired := market.RoundTo(demand/regionCapacity, f.cfg.Rounding)
		switch {
		case minRequired < f.cfg.UtilMin:
			res.Cases = append(res.Cases, caseClosePlant)
			// Excess is the surplus production at the utilization floor.
			excess := regionCapacity*f.cfg.UtilMin - demand
			plan := planPlantClosures(regionCapacity, excess, in.AvgPlantCapacity, demand, f.cfg.UtilMin, f.cfg.UtilMax)
			res.PlantsToClose = plan.plantsToClose
			res.NewTotalCapacity = plan.newTotalCapacity
			res.NewCapacityRequired = -(regionCapacity - plan.newTotalCapacity)
			res.NewUtilization = plan.newUtilization
		case minRequired > f.cfg.UtilMax:
			res.Cases = append(res.Cases, caseOpenPlant)
			capacityRequired := demand - regionCapacity*f.cfg.UtilMax
			plan := planPlantOpenings(regionCapacity, capacityRequired, in.AvgPlantCapacity, in.AvgPlantCapacity*f.cfg.UtilMax, demand, f.cfg.UtilMin, f.cfg.UtilMax)
			res.PlantsRequired = plan.plantsRequired
			res.NewCapacityRequired = capacityRequired
			res.NewTotalCapacity = plan.newTotalCapacity
			res.NewUtilization = plan.newUtilization
		default:
			res.Cases = append(res.Cases, caseAdjustUtil)
			res.NewTotalCapacity = regionCapacity
			res.NewUtilization = demand / regionCapacity
		}

		res.NewUtilizedCapacity = res.NewTotalCapacity * res.NewUtilization
		res.NewBalance = res.NewUtilizedCapacity - demand
		capacity[region] = res.NewTotalCapacity
		in.Utilization.UpdateRegion(in.Year, region, res.NewUtilization)

		rate := market.RoundTo(res.NewUtilization, f.cfg.Rounding)
		if rate < f.cfg.UtilMin || rate > f.cfg.UtilMax {
			return nil, market.Inconsistent("gap utilization",
				"region %s at %.4f outside [%.2f, %.2f] (%v)", region, res.NewUtilization, f.cfg.UtilMin, f.cfg.UtilMax, res.Cases)
		}
	}

	f.log.Infof("production demand gap resolved for %d regions in %d", len(in.Regions), in.Year)
	return &Outcome{Results: results, RegionalCapacity: capacity}, nil
}
