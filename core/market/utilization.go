package market

import "gonum.org/v1/gonum/stat"

// WorldRegion is the synthetic region holding world-level aggregates.
const WorldRegion = "World"

// UtilizationState maintains the capacity utilization rate of every region
// per year.
type UtilizationState struct {
	values  map[YearRegion]float64
	regions []string
}

// NewUtilizationState returns a UtilizationState covering the given years
// and regions, all rates zeroed.
func NewUtilizationState(years []int, regions []string) *UtilizationState {
	u := &UtilizationState{
		values:  make(map[YearRegion]float64, len(years)*len(regions)),
		regions: append([]string(nil), regions...),
	}
	for _, year := range years {
		for _, region := range regions {
			u.values[YearRegion{Year: year, Region: region}] = 0
		}
	}
	return u
}

// AssignYear sets every region's rate for the year at once.
func (u *UtilizationState) AssignYear(year int, rates map[string]float64) {
	for region, rate := range rates {
		u.values[YearRegion{Year: year, Region: region}] = rate
	}
}

// UpdateRegion sets one region's rate for the year.
func (u *UtilizationState) UpdateRegion(year int, region string, rate float64) {
	u.values[YearRegion{Year: year, Region: region}] = rate
}

// Value returns a region's rate for the year.
func (u *UtilizationState) Value(year int, region string) float64 {
	return u.values[YearRegion{Year: year, Region: region}]
}

// ValuesFor returns every real region's rate for the year.
func (u *UtilizationState) ValuesFor(year int) map[string]float64 {
	out := make(map[string]float64, len(u.regions))
	for _, region := range u.regions {
		if region == WorldRegion {
			continue
		}
		out[region] = u.Value(year, region)
	}
	return out
}

// Average returns the unweighted mean rate across regions for the year.
func (u *UtilizationState) Average(year int) float64 {
	var rates []float64
	for _, region := range u.regions {
		if region == WorldRegion {
			continue
		}
		rates = append(rates, u.Value(year, region))
	}
	return stat.Mean(rates, nil)
}

// CalculateWorld derives the world rate as demand over total capacity and
// stores it under the World region.
func (u *UtilizationState) CalculateWorld(year int, totalCapacity, demand float64) {
	u.values[YearRegion{Year: year, Region: WorldRegion}] = demand / totalCapacity
}
