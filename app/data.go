package app

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/steelpath/engine/config"
	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/plant"
	"github.com/steelpath/engine/core/sim"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/techchoice"
)

// Wire formats of the input data files. All files are row-oriented yaml or
// json; loaders fold the rows into the lookup structures the loop consumes.

type plantRow struct {
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	Country    string  `json:"country"`
	CapacityMt float64 `json:"capacity_mt"`
	StartYear  int     `json:"start_year"`
	Technology string  `json:"technology"`
	Primary    bool    `json:"primary"`
}

type demandRow struct {
	Year     int     `json:"year"`
	Region   string  `json:"region"`
	DemandMt float64 `json:"demand_mt"`
}

type tcoRow struct {
	Year         int     `json:"year"`
	Country      string  `json:"country"`
	Base         string  `json:"base"`
	Switch       string  `json:"switch"`
	RegularCapex float64 `json:"regular_capex"`
	GFCapex      float64 `json:"gf_capex"`
	Abatement    float64 `json:"abatement"`
}

type costRow struct {
	Year       int     `json:"year"`
	Region     string  `json:"region"`
	Technology string  `json:"technology"`
	Cost       float64 `json:"cost"`
}

type intensityRow struct {
	Technology string  `json:"technology"`
	Material   string  `json:"material"`
	Value      float64 `json:"value"`
}

type opexRow struct {
	Year       int     `json:"year"`
	Country    string  `json:"country"`
	Technology string  `json:"technology"`
	Cost       float64 `json:"cost"`
}

type constraintsFile struct {
	// Resources maps resource -> year -> ceiling.
	Resources map[string]map[int]float64 `json:"resources"`
	// Scrap maps year -> region -> ceiling.
	Scrap map[int]map[string]float64 `json:"scrap"`
}

// LoadInputs reads every configured data file into the simulation inputs.
func LoadInputs(cfg config.DataConfig) (sim.Inputs, error) {
	var in sim.Inputs

	var plants struct {
		Plants []plantRow `json:"plants"`
	}
	if err := loadFile(cfg.Roster, &plants); err != nil {
		return in, fmt.Errorf("roster: %w", err)
	}
	roster := plant.NewRoster()
	regions := map[string]bool{}
	for _, row := range plants.Plants {
		if err := roster.Add(&plant.Plant{
			Name:        row.Name,
			Region:      row.Region,
			Country:     row.Country,
			Capacity:    row.CapacityMt,
			Status:      plant.StatusOperating,
			StartYear:   row.StartYear,
			InitialTech: steel.Technology(row.Technology),
			Primary:     row.Primary,
		}); err != nil {
			return in, fmt.Errorf("roster: %w", err)
		}
		regions[row.Region] = true
	}
	in.Roster = roster
	for region := range regions {
		in.Regions = append(in.Regions, region)
	}
	sort.Strings(in.Regions)

	var demand struct {
		Rows []demandRow `json:"rows"`
	}
	if err := loadFile(cfg.Demand, &demand); err != nil {
		return in, fmt.Errorf("demand: %w", err)
	}
	in.Demand = sim.DemandTable{}
	for _, row := range demand.Rows {
		in.Demand[market.YearRegion{Year: row.Year, Region: row.Region}] = row.DemandMt
	}

	if cfg.TCO != "" {
		var rows struct {
			Rows []tcoRow `json:"rows"`
		}
		if err := loadFile(cfg.TCO, &rows); err != nil {
			return in, fmt.Errorf("tco: %w", err)
		}
		in.TCO = techchoice.TCOTable{}
		for _, row := range rows.Rows {
			key := techchoice.SwitchKey{
				Year:    row.Year,
				Country: row.Country,
				Base:    steel.Technology(row.Base),
				Switch:  steel.Technology(row.Switch),
			}
			in.TCO[key] = techchoice.TCORow{RegularCapex: row.RegularCapex, GFCapex: row.GFCapex}
		}
	}
	if cfg.Abatement != "" {
		var rows struct {
			Rows []tcoRow `json:"rows"`
		}
		if err := loadFile(cfg.Abatement, &rows); err != nil {
			return in, fmt.Errorf("abatement: %w", err)
		}
		in.Abatement = techchoice.AbatementTable{}
		for _, row := range rows.Rows {
			key := techchoice.SwitchKey{
				Year:    row.Year,
				Country: row.Country,
				Base:    steel.Technology(row.Base),
				Switch:  steel.Technology(row.Switch),
			}
			in.Abatement[key] = row.Abatement
		}
	}
	if cfg.LevelizedCost != "" {
		var rows struct {
			Rows []costRow `json:"rows"`
		}
		if err := loadFile(cfg.LevelizedCost, &rows); err != nil {
			return in, fmt.Errorf("levelized cost: %w", err)
		}
		in.LevelizedCost = techchoice.LevelizedCostTable{}
		for _, row := range rows.Rows {
			in.LevelizedCost[techchoice.CostKey{
				Year:   row.Year,
				Region: row.Region,
				Tech:   steel.Technology(row.Technology),
			}] = row.Cost
		}
	}

	availability := map[string]int{}
	if err := loadFile(cfg.Availability, &availability); err != nil {
		return in, fmt.Errorf("availability: %w", err)
	}
	from := make(map[steel.Technology]int, len(availability))
	for tech, year := range availability {
		from[steel.Technology(tech)] = year
	}
	in.Availability = techchoice.NewAvailability(from)

	if cfg.Intensity != "" {
		var rows struct {
			Rows []intensityRow `json:"rows"`
		}
		if err := loadFile(cfg.Intensity, &rows); err != nil {
			return in, fmt.Errorf("intensity: %w", err)
		}
		in.Intensity = ledger.IntensityRef{}
		for _, row := range rows.Rows {
			in.Intensity[ledger.IntensityKey{
				Tech:     steel.Technology(row.Technology),
				Material: steel.Material(row.Material),
			}] = row.Value
		}
	}

	if cfg.Constraints != "" {
		var file constraintsFile
		if err := loadFile(cfg.Constraints, &file); err != nil {
			return in, fmt.Errorf("constraints: %w", err)
		}
		in.ResourceConstraints = map[steel.Resource]map[int]float64{}
		for res, ceilings := range file.Resources {
			in.ResourceConstraints[steel.Resource(res)] = ceilings
		}
		in.ScrapConstraint = file.Scrap
	}

	if cfg.Utilization != "" {
		in.InitialUtilization = map[string]float64{}
		if err := loadFile(cfg.Utilization, &in.InitialUtilization); err != nil {
			return in, fmt.Errorf("utilization: %w", err)
		}
	}
	if cfg.Boundary != "" {
		in.Boundary = map[string]float64{}
		if err := loadFile(cfg.Boundary, &in.Boundary); err != nil {
			return in, fmt.Errorf("boundary: %w", err)
		}
	}

	variable, err := loadOpex(cfg.VariableCost)
	if err != nil {
		return in, fmt.Errorf("variable cost: %w", err)
	}
	in.VariableCost = func(country string, year int, tech steel.Technology) float64 {
		return variable[opexKey{country, year, tech}]
	}
	other, err := loadOpex(cfg.OtherOpex)
	if err != nil {
		return in, fmt.Errorf("other opex: %w", err)
	}
	in.OtherOpex = func(tech steel.Technology, year int) float64 {
		return other[opexKey{"", year, tech}]
	}

	return in, in.Validate()
}

type opexKey struct {
	country string
	year    int
	tech    steel.Technology
}

func loadOpex(path string) (map[opexKey]float64, error) {
	out := map[opexKey]float64{}
	if path == "" {
		return out, nil
	}
	var rows struct {
		Rows []opexRow `json:"rows"`
	}
	if err := loadFile(path, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows.Rows {
		out[opexKey{row.Country, row.Year, steel.Technology(row.Technology)}] = row.Cost
	}
	return out, nil
}

// loadFile parses one yaml or json data file into out.
func loadFile(path string, out any) error {
	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return fmt.Errorf("unsupported data format: %s", path)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return err
	}
	return k.UnmarshalWithConf("", out, koanf.UnmarshalConf{Tag: "json"})
}
