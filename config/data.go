package config

import (
	"fmt"
	"path/filepath"
)

// DataConfig lists the input data files of a run. Paths are resolved
// relative to the working directory unless absolute; yaml and json are both
// accepted.
type DataConfig struct {
	// Roster is the initial plant list.
	Roster string `json:"roster"`
	// Demand is crude steel demand per (year, region).
	Demand string `json:"demand"`
	// TCO holds the switch cost rows per (year, country, base, switch).
	TCO string `json:"tco"`
	// Abatement holds emissions abatement per (year, country, base, switch).
	Abatement string `json:"abatement"`
	// LevelizedCost holds cost per (year, region, technology) for new plants.
	LevelizedCost string `json:"levelized_cost"`
	// Availability maps each technology to its first available year.
	Availability string `json:"availability"`
	// Intensity maps (technology, material) to tonnes per tonne of steel.
	Intensity string `json:"intensity"`
	// Constraints holds the annual resource ceilings, scrap per region.
	Constraints string `json:"constraints"`
	// Utilization seeds the start year's regional rates.
	Utilization string `json:"utilization"`
	// VariableCost holds variable opex per (country, year, technology).
	VariableCost string `json:"variable_cost"`
	// OtherOpex holds fixed opex per (technology, year).
	OtherOpex string `json:"other_opex"`
	// Boundary holds the per-region trade competitiveness factors.
	Boundary string `json:"boundary"`
}

// ResolveDir re-bases every relative path onto dir. Absolute paths and
// empty entries are left alone.
func (c *DataConfig) ResolveDir(dir string) {
	if dir == "" {
		return
	}
	for _, p := range []*string{
		&c.Roster, &c.Demand, &c.TCO, &c.Abatement, &c.LevelizedCost,
		&c.Availability, &c.Intensity, &c.Constraints, &c.Utilization,
		&c.VariableCost, &c.OtherOpex, &c.Boundary,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}

// Validate checks that the files a run cannot start without are configured.
func (c DataConfig) Validate() error {
	required := map[string]string{
		"roster":       c.Roster,
		"demand":       c.Demand,
		"availability": c.Availability,
	}
	for name, path := range required {
		if path == "" {
			return fmt.Errorf("data file %s is required", name)
		}
	}
	return nil
}
