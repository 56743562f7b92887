package market

// YearRegion is the flat key for regional time series.
type YearRegion struct {
	Year   int
	Region string
}

// CapacityState maintains plant and regional capacities per year, in Mt.
type CapacityState struct {
	plantCapacity    map[int]map[string]float64
	regionCapacity   map[YearRegion]float64
	regions          map[int][]string
	averagePlantSize float64
}

// NewCapacityState returns an empty CapacityState.
func NewCapacityState() *CapacityState {
	return &CapacityState{
		plantCapacity:  make(map[int]map[string]float64),
		regionCapacity: make(map[YearRegion]float64),
		regions:        make(map[int][]string),
	}
}

// MapCapacities snapshots the active plants for the year: per-plant
// capacities plus the per-region aggregates.
func (c *CapacityState) MapCapacities(year int, capacities map[string]float64, plantRegions map[string]string) {
	plants := make(map[string]float64, len(capacities))
	regionSeen := make(map[string]bool)
	var regions []string
	for name, capacity := range capacities {
		plants[name] = capacity
		region := plantRegions[name]
		key := YearRegion{Year: year, Region: region}
		if !regionSeen[region] {
			regionSeen[region] = true
			regions = append(regions, region)
			c.regionCapacity[key] = 0
		}
		c.regionCapacity[key] += capacity
	}
	c.plantCapacity[year] = plants
	c.regions[year] = regions
}

// SetAveragePlantSize fixes the nameplate capacity used for plants opened
// during the run.
func (c *CapacityState) SetAveragePlantSize(avg float64) { c.averagePlantSize = avg }

// AveragePlantSize returns the capacity assigned to newly opened plants.
func (c *CapacityState) AveragePlantSize() float64 { return c.averagePlantSize }

// Region returns the aggregate capacity of a region for the year.
func (c *CapacityState) Region(year int, region string) float64 {
	return c.regionCapacity[YearRegion{Year: year, Region: region}]
}

// SetRegion overrides a region's aggregate capacity for the year.
func (c *CapacityState) SetRegion(year int, region string, value float64) {
	c.regionCapacity[YearRegion{Year: year, Region: region}] = value
}

// RegionsFor returns the regions with capacity mapped for the year.
func (c *CapacityState) RegionsFor(year int) []string { return c.regions[year] }

// World returns the summed capacity of all regions for the year.
func (c *CapacityState) World(year int) float64 {
	total := 0.0
	for _, region := range c.regions[year] {
		total += c.Region(year, region)
	}
	return total
}

// Plant returns a plant's capacity for the year, zero if unmapped.
func (c *CapacityState) Plant(year int, name string) float64 {
	return c.plantCapacity[year][name]
}

// PlantsFor returns the per-plant capacities mapped for the year.
func (c *CapacityState) PlantsFor(year int) map[string]float64 {
	return c.plantCapacity[year]
}
