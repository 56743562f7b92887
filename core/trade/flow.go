package trade

import (
	"sort"

	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/infra/logger"
)

// Config shapes the balancing flow.
type Config struct {
	// UtilMin and UtilMax bound regional capacity utilization. A region
	// below the floor closes plants; above the ceiling it opens them.
	UtilMin float64 `json:"util_min"`
	UtilMax float64 `json:"util_max"`
	// Rounding is the decimal precision for zero-checks on balances.
	Rounding int `json:"rounding"`
	// PctBoundary widens the competitive band per region; regions not
	// listed use DefaultBoundary.
	PctBoundary     map[string]float64 `json:"pct_boundary"`
	DefaultBoundary float64            `json:"default_boundary"`
}

// SetDefaults fills the zero values.
func (c *Config) SetDefaults() {
	if c.UtilMin == 0 {
		c.UtilMin = 0.6
	}
	if c.UtilMax == 0 {
		c.UtilMax = 0.95
	}
	if c.Rounding == 0 {
		c.Rounding = 3
	}
	if c.DefaultBoundary == 0 {
		c.DefaultBoundary = 0.1
	}
}

// RunInputs is one year's balancing input.
type RunInputs struct {
	Year      int
	StartYear int
	Regions   []string
	// Demand is crude steel demand per region.
	Demand map[string]float64
	// CostOfSteelmaking is the unit cost per region, see RegionalCost.
	CostOfSteelmaking map[string]float64
	AvgPlantCapacity  float64
	Accounts          *market.Accounts
	Utilization       *market.UtilizationState
	// Capacity is the regional capacity entering the year; the flow
	// mutates its own copy as plants open and close.
	Capacity map[string]float64
}

// Outcome is the balanced year.
type Outcome struct {
	Results     map[string]*Result
	Assessments map[string]*Assessment
	// RegionalCapacity is the post-balancing capacity per region.
	RegionalCapacity map[string]float64
}

// Flow runs the annual trade balancing.
type Flow struct {
	cfg Config
	log logger.Logger
}

// NewFlow returns a balancing flow with defaults applied.
func NewFlow(cfg Config, log logger.Logger) *Flow {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Flow{cfg: cfg, log: log}
}

type runState struct {
	f        *Flow
	year     int
	accounts *market.Accounts
	util     *market.UtilizationState
	capacity map[string]float64
	results  map[string]*Result
	avgCap   float64
	avgAtMax float64
}

func (s *runState) round(v float64) float64 { return market.RoundTo(v, s.f.cfg.Rounding) }

// Run balances one year. It returns a ConsistencyError when any invariant
// breaks: a region outside its utilization band, regional production
// diverging from the trade accounts, or a non-zero final global balance.
func (f *Flow) Run(in RunInputs) (*Outcome, error) {
	assessments := AssessRelativeCost(in.CostOfSteelmaking, f.cfg.PctBoundary, f.cfg.DefaultBoundary)

	s := &runState{
		f:        f,
		year:     in.Year,
		accounts: in.Accounts,
		util:     in.Utilization,
		capacity: make(map[string]float64, len(in.Regions)),
		results:  make(map[string]*Result, len(in.Regions)),
		avgCap:   in.AvgPlantCapacity,
		avgAtMax: in.AvgPlantCapacity * f.cfg.UtilMax,
	}

	refYear := in.Year - 1
	if in.Year == in.StartYear {
		refYear = in.Year
	}
	for _, region := range in.Regions {
		if in.Utilization.Value(refYear, region) == 0 {
			return nil, market.Inconsistent("initial utilization",
				"region %s enters %d with zero utilization", region, in.Year)
		}
	}

	// Round 1: resolve each region on its own.
	for _, region := range in.Regions {
		initial := boundUtilization(in.Utilization.Value(refYear, region), f.cfg.UtilMin, f.cfg.UtilMax)
		capacity := in.Capacity[region]
		demand := in.Demand[region]
		res := &Result{
			Year:                    in.Year,
			Region:                  region,
			Capacity:                capacity,
			InitialUtilizedCapacity: capacity * initial,
			Demand:                  demand,
			InitialBalance:          capacity*initial - demand,
			InitialUtilization:      initial,
			AvgPlantCapacity:        in.AvgPlantCapacity,
		}
		s.results[region] = res

		a := assessments[region]
		a.InitialOverproduction = res.InitialBalance > 0
		res.Status = StatusOf(a.CloseToMean, res.InitialBalance)
		a.Status = res.Status

		minRequired := demand / capacity
		var err error
		switch {
		case res.Status == StatusExporter:
			err = s.exportSurplus(res)
		case res.Status == StatusImporter:
			err = s.importDeficit(res)
		case res.InitialBalance == 0:
			err = s.balanced(res)
		case minRequired < f.cfg.UtilMin:
			err = s.closePlants(res)
		case minRequired <= f.cfg.UtilMax:
			err = s.adjustUtilization(res)
		default:
			err = s.openPlants(res)
		}
		if err != nil {
			return nil, err
		}

		produced := s.round(in.Accounts.Balance(in.Year, region, market.AccountProduction))
		if produced != s.round(res.NewUtilizedCapacity) {
			return nil, market.Inconsistent("regional production",
				"round 1, region %s: result %.4f, accounts %.4f", region, res.NewUtilizedCapacity, produced)
		}
	}

	f.logRoundOne(s, in)

	global := in.Accounts.Aggregate(in.Year, market.AccountTrade)
	switch {
	case s.round(global) == 0:
		f.log.Infof("trade balance already settled at %.2f Mt in %d", global, in.Year)
	case s.round(global) > 0:
		if err := f.reduceSurplus(s, in, assessments, global); err != nil {
			return nil, err
		}
	default:
		if err := f.coverDeficit(s, in, assessments, global); err != nil {
			return nil, err
		}
	}

	if err := f.finalChecks(s, in); err != nil {
		return nil, err
	}
	return &Outcome{
		Results:          s.results,
		Assessments:      assessments,
		RegionalCapacity: s.capacity,
	}, nil
}

// reduceSurplus first lowers exporter utilization toward the floor, then
// closes exporter plants. Both walks take the exporters cheapest first.
func (f *Flow) reduceSurplus(s *runState, in RunInputs, assessments map[string]*Assessment, global float64) error {
	f.log.Infof("trade surplus of %.2f Mt in %d, lowering exporter utilization", global, in.Year)
	exporters := s.regionsByEntry(in, func(e market.Entry) bool { return e.Exports > 0 })
	sortByCostAsc(exporters, in.CostOfSteelmaking)
	for _, region := range exporters {
		if s.round(global) <= 0 {
			break
		}
		if s.util.Value(in.Year, region) <= f.cfg.UtilMin {
			continue
		}
		if s.accounts.Balance(in.Year, region, market.AccountTrade) <= 0 {
			continue
		}
		global = s.lowerUtilization(region, global)
	}
	if s.round(global) <= 0 {
		return nil
	}

	f.log.Infof("remaining surplus of %.2f Mt in %d, closing exporter plants", global, in.Year)
	exporters = s.regionsByEntry(in, func(e market.Entry) bool { return e.Exports > 0 })
	sortByCostAsc(exporters, in.CostOfSteelmaking)
	for _, region := range exporters {
		if s.round(global) <= 0 {
			break
		}
		if s.accounts.Balance(in.Year, region, market.AccountTrade) <= 0 {
			continue
		}
		var err error
		global, err = s.closeForExporter(region, global)
		if err != nil {
			return err
		}
	}
	return nil
}

// coverDeficit raises utilization in cost competitive regions, cheapest
// first, then sends the residual to the cheapest competitive region by
// opening plants there.
func (f *Flow) coverDeficit(s *runState, in RunInputs, assessments map[string]*Assessment, global float64) error {
	f.log.Infof("trade deficit of %.2f Mt in %d, raising utilization", global, in.Year)
	var eligible []string
	for _, region := range in.Regions {
		if !assessments[region].CloseToMean {
			continue
		}
		eligible = append(eligible, region)
	}
	sortByCostAsc(eligible, in.CostOfSteelmaking)

	for _, region := range eligible {
		if s.round(global) >= 0 {
			break
		}
		production := s.accounts.Balance(in.Year, region, market.AccountProduction)
		headroom := s.capacity[region]*f.cfg.UtilMax - production
		switch {
		case s.round(headroom) <= 0:
		case s.round(headroom) >= -global:
			f.log.Infof("region %s absorbs the full import demand of %.2f Mt", region, -global)
			var err error
			global, err = s.absorbAllImports(region, global)
			if err != nil {
				return err
			}
		default:
			f.log.Infof("region %s absorbs %.2f Mt of the %.2f Mt import demand", region, headroom, -global)
			var err error
			global, err = s.absorbPartialImports(region, global, headroom)
			if err != nil {
				return err
			}
		}
	}

	if s.round(global) < 0 {
		cheapest := ""
		for region, a := range assessments {
			if !a.CloseToMean {
				continue
			}
			if cheapest == "" || a.CostOfSteelmaking < assessments[cheapest].CostOfSteelmaking ||
				(a.CostOfSteelmaking == assessments[cheapest].CostOfSteelmaking && region < cheapest) {
				cheapest = region
			}
		}
		if cheapest == "" {
			return market.Inconsistent("deficit openings", "no cost competitive region in %d", in.Year)
		}
		f.log.Infof("residual deficit of %.2f Mt in %d goes to cheapest region %s", global, in.Year, cheapest)
		if err := s.openCheapest(cheapest, global); err != nil {
			return err
		}
	}
	return nil
}

func (f *Flow) finalChecks(s *runState, in RunInputs) error {
	global := in.Accounts.Aggregate(in.Year, market.AccountTrade)
	if s.round(global) != 0 {
		return market.Inconsistent("final trade balance",
			"%.4f Mt left after all rounds in %d", global, in.Year)
	}

	production := in.Accounts.Aggregate(in.Year, market.AccountProduction)
	demand := 0.0
	for _, region := range in.Regions {
		demand += in.Demand[region]
	}
	if s.round(production) != s.round(demand) {
		return market.Inconsistent("production equals demand",
			"production %.4f vs demand %.4f in %d", production, demand, in.Year)
	}

	for _, region := range in.Regions {
		res := s.results[region]
		if s.round(res.NewUtilizedCapacity) <= 0 {
			return market.Inconsistent("regional production", "region %s produces nothing: %v", region, res.Cases)
		}
		if s.round(res.NewTotalCapacity) != s.round(s.capacity[region]) {
			return market.Inconsistent("regional capacity",
				"region %s: result %.4f vs tracked %.4f (%v)", region, res.NewTotalCapacity, s.capacity[region], res.Cases)
		}
		accProduction := in.Accounts.Balance(in.Year, region, market.AccountProduction)
		if s.round(res.NewUtilizedCapacity) != s.round(accProduction) {
			return market.Inconsistent("regional production",
				"region %s: result %.4f vs accounts %.4f (%v)", region, res.NewUtilizedCapacity, accProduction, res.Cases)
		}
		if res.PlantsRequired < 0 || res.PlantsToClose < 0 {
			return market.Inconsistent("plant counts",
				"region %s: required %d, to close %d", region, res.PlantsRequired, res.PlantsToClose)
		}
		rate := s.round(s.util.Value(in.Year, region))
		if rate < f.cfg.UtilMin || rate > f.cfg.UtilMax {
			return market.Inconsistent("utilization band",
				"region %s at %.4f outside [%.2f, %.2f] (%v)", region, rate, f.cfg.UtilMin, f.cfg.UtilMax, res.Cases)
		}
	}
	f.log.Infof("final trade balance settled at %.2f Mt in %d", global, in.Year)
	return nil
}

func (f *Flow) logRoundOne(s *runState, in RunInputs) {
	importing := s.regionsByEntry(in, func(e market.Entry) bool { return e.Imports > 0 })
	exporting := s.regionsByEntry(in, func(e market.Entry) bool { return e.Exports > 0 })
	f.log.Infof("round 1 complete in %d: importing %v, exporting %v", in.Year, importing, exporting)
}

func (s *runState) regionsByEntry(in RunInputs, match func(market.Entry) bool) []string {
	var out []string
	for _, region := range in.Regions {
		if match(s.accounts.EntryFor(s.year, region)) {
			out = append(out, region)
		}
	}
	return out
}

func sortByCostAsc(regions []string, cos map[string]float64) {
	sort.Slice(regions, func(i, j int) bool {
		if cos[regions[i]] != cos[regions[j]] {
			return cos[regions[i]] < cos[regions[j]]
		}
		return regions[i] < regions[j]
	})
}
