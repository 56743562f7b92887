package sim

import (
	"context"
	"math/rand"
	"time"

	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/core/events"
	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/plant"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/techchoice"
	"github.com/steelpath/engine/core/trade"
	"github.com/steelpath/engine/core/turnover"
	"github.com/steelpath/engine/infra/logger"
	"github.com/steelpath/engine/internal/eventbus"
)

// Simulation owns the full annual loop state. Build one with New, run it
// once with Run.
type Simulation struct {
	scenario Scenario
	in       Inputs
	log      logger.Logger
	bus      eventbus.EventBus

	rng        *rand.Rand
	led        *ledger.Ledger
	capacity   *market.CapacityState
	util       *market.UtilizationState
	accounts   *market.Accounts
	constraint *turnover.Constraint
	sched      *cycle.Scheduler
	choices    *Choices
	engine     *techchoice.Engine
	flow       *trade.Flow
	lifecycle  *plant.Lifecycle

	opened      map[int]int
	closed      map[int]int
	trades      map[int]map[string]*trade.Result
	assessments map[int]map[string]*trade.Assessment
}

// New validates the scenario and inputs and wires every container the loop
// needs. The bus may be nil when no observer cares about events.
func New(scenario Scenario, in Inputs, bus eventbus.EventBus, log logger.Logger) (*Simulation, error) {
	scenario.SetDefaults()
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	years := scenario.Years()
	rng := rand.New(rand.NewSource(scenario.Seed))

	led := ledger.New(scenario.RegionalScrap, log)
	led.InitYears(years, in.Regions)
	for res, ceilings := range in.ResourceConstraints {
		led.LoadConstraint(res, ceilings)
	}
	led.LoadScrapConstraint(in.ScrapConstraint)

	capacity := market.NewCapacityState()
	capacity.SetAveragePlantSize(in.Roster.AverageActiveCapacity(scenario.StartYear))
	util := market.NewUtilizationState(years, append(append([]string(nil), in.Regions...), market.WorldRegion))
	accounts := market.NewAccounts(years, in.Regions)
	constraint := turnover.New(scenario.Turnover, years, log)

	bounds := cycle.Bounds{
		StartYear:       scenario.StartYear,
		EndYear:         scenario.EndYear,
		NetZeroYear:     scenario.NetZeroYear,
		NetZeroVariance: scenario.NetZeroVariance,
		CycleDuration:   scenario.CycleDuration,
		CycleVariance:   scenario.CycleVariance,
		BufferTop:       scenario.BufferTop,
		BufferTail:      scenario.BufferTail,
	}
	sched := cycle.NewScheduler(bounds, scenario.CycleRandomness, rng, log)
	startYears := make(map[string]int, in.Roster.Len())
	for _, p := range in.Roster.Snapshot() {
		startYears[p.Name] = p.StartYear
	}
	sched.InstantiatePlants(startYears)

	choices := NewChoices(years)
	engine := techchoice.NewEngine(in.TCO, in.Abatement, in.LevelizedCost, in.Availability, in.Intensity, led, techchoice.Options{
		Logic:                  scenario.Logic,
		Weights:                scenario.Weights,
		Moratorium:             scenario.TechMoratorium,
		EnforceConstraints:     scenario.EnforceConstraints,
		EnforceCapacityBalance: scenario.EnforceCapacityBalance,
		RegionalScrap:          scenario.RegionalScrap,
		BufferTop:              scenario.BufferTop,
		BufferTail:             scenario.BufferTail,
	}, log)
	tradeCfg := scenario.Trade
	if tradeCfg.PctBoundary == nil {
		tradeCfg.PctBoundary = in.Boundary
	}
	flow := trade.NewFlow(tradeCfg, log)

	s := &Simulation{
		scenario:   scenario,
		in:         in,
		log:        log,
		bus:        bus,
		rng:        rng,
		led:        led,
		capacity:   capacity,
		util:       util,
		accounts:   accounts,
		constraint: constraint,
		sched:      sched,
		choices:    choices,
		engine:     engine,
		flow:       flow,
		opened:     make(map[int]int),
		closed:     make(map[int]int),
	}
	s.lifecycle = plant.NewLifecycle(plant.LifecycleConfig{
		UtilMin:  scenario.Trade.UtilMin,
		UtilMax:  scenario.Trade.UtilMax,
		Rounding: scenario.Trade.Rounding,
	}, in.Roster, sched, constraint, util, choices, engine, s, rng, log)
	return s, nil
}

// ChargeUsage settles (or refunds) a plant's projected resource draw with
// the constraint overridden: committed plants always get their materials.
func (s *Simulation) ChargeUsage(year int, tech steel.Technology, region string, capacity float64, negative bool) {
	s.led.UsageChecks(s.in.Intensity, year, tech, region, capacity, true, true, negative)
}

// Run executes the loop over every scenario year and assembles the results.
func (s *Simulation) Run(ctx context.Context) (*Results, error) {
	started := time.Now()
	s.log.Infof("starting run %q: %d-%d, %d plants, %d regions",
		s.scenario.Name, s.scenario.StartYear, s.scenario.EndYear, s.in.Roster.Len(), len(s.in.Regions))

	for _, year := range s.scenario.Years() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if err := s.runYear(year); err != nil {
			return nil, err
		}
	}
	s.constraint.WarnLongWaiters()
	return s.collectResults(started), nil
}

func (s *Simulation) runYear(year int) error {
	active := s.in.Roster.ActiveNames(year)
	// Plant sizing for openings and closures follows the prior year's
	// roster; the start year references itself.
	refYear := year - 1
	if year == s.scenario.StartYear {
		refYear = year
	}
	s.capacity.SetAveragePlantSize(s.in.Roster.AverageActiveCapacity(refYear))
	s.capacity.MapCapacities(year, s.in.Roster.Capacities(year), s.in.Roster.Regions(year))
	world := s.capacity.World(year)
	s.constraint.UpdateLimit(year, world)
	s.constraint.ResetBalance(year)
	for _, res := range steel.Resources {
		s.led.SetYearBalance(year, res)
	}
	s.log.Infof("running investment decisions for %d: %d active plants, %.1f Mt world capacity",
		year, len(active), world)

	// Plants scheduled to open next year carry their initial technology as
	// their prior choice, so the cost references can resolve them.
	for _, p := range s.in.Roster.Snapshot() {
		if p.StartYear == year+1 {
			s.choices.SetChoice(year, p.Name, p.InitialTech)
		}
	}

	if year == s.scenario.StartYear {
		return s.seedStartYear(year, active, world)
	}

	switchers := s.sched.PlantSwitchers(active, year)
	s.chargeNonSwitchers(year, switchers)

	if err := s.openClosePlants(year); err != nil {
		return err
	}

	// The roster changed; re-derive the switcher partition.
	active = s.in.Roster.ActiveNames(year)
	switchers = s.sched.PlantSwitchers(active, year)
	if err := s.decideSwitchers(year, switchers); err != nil {
		return err
	}

	return s.finalizeYear(year, len(active))
}

// seedStartYear loads the initial technologies and utilization; the first
// year never opens, closes or switches plants.
func (s *Simulation) seedStartYear(year int, active []string, world float64) error {
	s.log.Infof("loading initial technology choices for %d", year)
	for _, name := range active {
		p, _ := s.in.Roster.Get(name)
		s.choices.SetChoice(year, name, p.InitialTech)
	}
	s.util.AssignYear(year, s.in.InitialUtilization)
	s.util.CalculateWorld(year, world, s.worldDemand(year))
	return s.finalizeYear(year, len(active))
}

// chargeNonSwitchers settles the resource draw of plants that keep their
// technology this year, and pins secondary capacity to EAF. What remains of
// each constraint is left for the switching plants.
func (s *Simulation) chargeNonSwitchers(year int, switchers cycle.Switchers) {
	for _, name := range switchers.NonSwitchers {
		p, _ := s.in.Roster.Get(name)
		current := s.choices.Current(year, s.scenario.StartYear, s.sched.StartYearOf(name), name, p.InitialTech)
		s.choices.RecordEntry(year, name, current, current, switchNotAYear, true)
		s.ChargeUsage(year, current, p.Region, p.Capacity, false)
	}
	scrap := ledger.CurrentUsage(s.in.Intensity, s.choicesOf(year, switchers.NonSwitchers), s.capacity.PlantsFor(year), steel.ResourceMaterials[steel.ResourceScrap])
	s.log.Infof("scrap usage | non-switchers: %.2f Mt | count: %d", scrap, len(switchers.NonSwitchers))

	var secondary []string
	for _, name := range switchers.Combined {
		p, _ := s.in.Roster.Get(name)
		if p.Primary {
			continue
		}
		secondary = append(secondary, name)
		s.choices.RecordEntry(year, name, steel.EAF, steel.EAF, switchSecondaryEAF, true)
		s.ChargeUsage(year, steel.EAF, p.Region, p.Capacity, false)
	}
	scrap = ledger.CurrentUsage(s.in.Intensity, s.choicesOf(year, secondary), s.capacity.PlantsFor(year), steel.ResourceMaterials[steel.ResourceScrap])
	s.log.Infof("scrap usage | secondary EAF: %.2f Mt | count: %d | remaining balance: %.2f Mt",
		scrap, len(secondary), s.led.Balance(year, steel.ResourceScrap, ""))
}

// openClosePlants balances every region against its demand, with trade when
// the scenario allows it, then applies the resulting openings and closures
// to the roster.
func (s *Simulation) openClosePlants(year int) error {
	regions := s.in.Regions
	demand := s.in.Demand.Regional(year, regions)
	caps := make(map[string]float64, len(regions))
	for _, region := range regions {
		caps[region] = s.capacity.Region(year, region)
	}

	var outcome *trade.Outcome
	var err error
	if s.scenario.TradeActive {
		s.log.Infof("starting the trade flow for %d", year)
		cos := trade.RegionalCost(year, s.scenario.StartYear, s.plantCosts(year), trade.CostInputs{
			VariableCost: s.in.VariableCost,
			OtherOpex:    s.in.OtherOpex,
			TechChoice:   s.techChoiceAt,
		}, s.util, s.refCapacities(year))
		outcome, err = s.flow.Run(trade.RunInputs{
			Year:              year,
			StartYear:         s.scenario.StartYear,
			Regions:           regions,
			Demand:            demand,
			CostOfSteelmaking: cos,
			AvgPlantCapacity:  s.capacity.AveragePlantSize(),
			Accounts:          s.accounts,
			Utilization:       s.util,
			Capacity:          caps,
		})
	} else {
		s.log.Infof("starting the non-trade flow for %d", year)
		outcome, err = s.flow.ProductionDemandGap(trade.GapInputs{
			Year:             year,
			StartYear:        s.scenario.StartYear,
			Regions:          regions,
			Demand:           demand,
			AvgPlantCapacity: s.capacity.AveragePlantSize(),
			Utilization:      s.util,
			Capacity:         caps,
		})
	}
	if err != nil {
		return err
	}
	s.tradeOutcomes(year, outcome)

	plans := make([]plant.RegionPlan, 0, len(regions))
	for _, region := range regions {
		res, ok := outcome.Results[region]
		if !ok {
			continue
		}
		plans = append(plans, plant.RegionPlan{
			Region:              region,
			PlantsToOpen:        res.PlantsRequired,
			PlantsToClose:       res.PlantsToClose,
			AvgCapacity:         res.AvgPlantCapacity,
			InitialCapacity:     res.Capacity,
			NewTotalCapacity:    res.NewTotalCapacity,
			MinCapacityToClose:  res.Capacity - res.NewTotalCapacity,
			NewUtilizedCapacity: res.NewUtilizedCapacity,
		})
	}

	opened, err := s.lifecycle.OpenPlants(year, plans)
	if err != nil {
		return err
	}
	for _, p := range opened {
		s.publish(events.PlantOpenedEvent{Year: year, Plant: p.Name, Region: p.Region, Tech: p.InitialTech, Capacity: p.Capacity})
	}
	closed, err := s.lifecycle.ClosePlants(year, plans)
	if err != nil {
		return err
	}
	for _, c := range closed {
		s.publish(events.PlantClosedEvent{Year: year, Plant: c.Name, Region: c.Region, Tech: c.Tech, Capacity: c.Capacity})
	}
	s.opened[year] = len(opened)
	s.closed[year] = len(closed)

	s.capacity.MapCapacities(year, s.in.Roster.Capacities(year), s.in.Roster.Regions(year))
	worldDemand := s.worldDemand(year)
	s.util.CalculateWorld(year, s.capacity.World(year), worldDemand)
	s.log.Infof("balanced supply and demand for %d: demand %.2f Mt | opened %d | closed %d",
		year, worldDemand, len(opened), len(closed))
	return nil
}

// decideSwitchers resolves the technology decision of every primary plant
// whose schedule allows one this year, waiting-list plants first, the rest
// in seeded-random order.
func (s *Simulation) decideSwitchers(year int, switchers cycle.Switchers) error {
	primary := make([]string, 0, len(switchers.Combined))
	for _, name := range switchers.Combined {
		p, _ := s.in.Roster.Get(name)
		if p.Primary {
			primary = append(primary, name)
		}
	}
	s.rng.Shuffle(len(primary), func(i, j int) { primary[i], primary[j] = primary[j], primary[i] })
	primary = s.waitingFirst(year, primary)

	for _, name := range primary {
		p, _ := s.in.Roster.Get(name)
		founded := s.sched.StartYearOf(name)
		current := s.choices.Current(year, s.scenario.StartYear, founded, name, p.InitialTech)

		switch {
		case current == steel.CloseTechnology:
			s.choices.RecordEntry(year, name, current, steel.CloseTechnology, switchAlreadyClosed, true)
		case founded == year:
			s.choices.RecordEntry(year, name, current, current, switchFoundingYear, true)
		case s.sched.SwitchTypeOf(name, year) == cycle.SwitchMainCycle:
			if err := s.decideOne(year, name, p, current, false); err != nil {
				return err
			}
		case s.scenario.TransitionalSwitch:
			if err := s.decideOne(year, name, p, current, true); err != nil {
				return err
			}
		}
	}

	// Deferred plants keep their technology; their schedule moves out a
	// year with the waiting list.
	for _, name := range s.constraint.WaitingList(year) {
		p, _ := s.in.Roster.Get(name)
		current := s.choices.Current(year, s.scenario.StartYear, s.sched.StartYearOf(name), name, p.InitialTech)
		s.choices.RecordEntry(year, name, current, current, switchDeferredByCap, false)
		s.publish(events.SwitchDeferredEvent{Year: year, Plant: name, Capacity: p.Capacity})
	}
	s.constraint.MoveWaitingListToNextYear(s.sched, year)
	if err := s.constraint.CheckBalance(year); err != nil {
		return market.Inconsistent("turnover balance", "%v", err)
	}
	return nil
}

func (s *Simulation) decideOne(year int, name string, p *plant.Plant, current steel.Technology, transitional bool) error {
	best, err := s.engine.Decide(techchoice.Request{
		Year:         year,
		Plant:        name,
		Region:       p.Region,
		Country:      p.Country,
		BaseTech:     current,
		Capacity:     p.Capacity,
		Transitional: transitional,
		CycleLength:  s.sched.CycleLengthOf(name),
	}, s.constraint)
	if err != nil {
		return err
	}

	var label string
	var kind cycle.SwitchType
	switch {
	case transitional && best != current:
		s.sched.AdjustForTransitionalSwitch(name, year)
		label, kind = switchTransChange, cycle.SwitchTransitional
	case transitional:
		label, kind = switchTransNoChange, cycle.SwitchTransitional
	case best != current:
		label, kind = switchMainRegular, cycle.SwitchMainCycle
	default:
		label, kind = switchMainNoChange, cycle.SwitchMainCycle
	}
	s.choices.RecordEntry(year, name, current, best, label, true)
	s.publish(events.TechnologyChosenEvent{
		Year: year, Plant: name, Region: p.Region, From: current, To: best, SwitchType: kind,
	})
	return nil
}

// finalizeYear validates the committed state and announces the year.
func (s *Simulation) finalizeYear(year, activePlants int) error {
	production := 0.0
	for _, region := range s.in.Regions {
		rate := market.RoundTo(s.util.Value(year, region), s.scenario.Trade.Rounding)
		if rate < s.scenario.Trade.UtilMin || rate > s.scenario.Trade.UtilMax {
			return market.Inconsistent("year-end utilization",
				"region %s at %.4f outside [%.2f, %.2f] in %d",
				region, rate, s.scenario.Trade.UtilMin, s.scenario.Trade.UtilMax, year)
		}
		production += s.capacity.Region(year, region) * s.util.Value(year, region)
	}

	s.publish(events.YearFinalizedEvent{
		Year:         year,
		Demand:       s.worldDemand(year),
		Production:   production,
		Capacity:     s.capacity.World(year),
		TradeBalance: s.accounts.Aggregate(year, market.AccountTrade),
		ActivePlants: activePlants,
		Switches:     s.switchCount(year),
		Opened:       s.opened[year],
		Closed:       s.closed[year],
	})
	s.led.PrintYearSummary(year)
	return nil
}

func (s *Simulation) collectResults(started time.Time) *Results {
	years := s.scenario.Years()
	res := &Results{
		Meta: RunMeta{
			Scenario:  s.scenario.Name,
			Seed:      s.scenario.Seed,
			StartYear: s.scenario.StartYear,
			EndYear:   s.scenario.EndYear,
			StartedAt: started,
			Duration:  time.Since(started),
		},
		Choices:           s.choices.All(),
		ChoiceRecords:     s.choices.Records(),
		RankingRecords:    s.engine.RankingRecords(),
		CheckRecords:      s.engine.CheckRecords(),
		Plants:            s.in.Roster.Snapshot(),
		ActiveCheck:       make(map[string]map[int]bool),
		RegionalCapacity:  make(map[int]map[string]float64, len(years)),
		Utilization:       make(map[int]map[string]float64, len(years)),
		TradeResults:      s.trades,
		Assessments:       s.assessments,
		ConstraintSummary: s.led.ConstraintSummary(years),
		CycleAudit:        s.sched.Audit(),
		CycleLengths:      make(map[string]int),
	}
	for _, year := range years {
		capacities := make(map[string]float64, len(s.in.Regions))
		for _, region := range s.in.Regions {
			capacities[region] = s.capacity.Region(year, region)
		}
		res.RegionalCapacity[year] = capacities
		res.Utilization[year] = s.util.ValuesFor(year)
	}
	for _, p := range res.Plants {
		checks := make(map[int]bool, len(years))
		for _, year := range years {
			checks[year] = p.StartYear <= year && (p.EndYear == 0 || year < p.EndYear)
		}
		res.ActiveCheck[p.Name] = checks
		res.CycleLengths[p.Name] = s.sched.CycleLengthOf(p.Name)
	}
	return res
}

// tradeOutcomes stores the year's balancing output for the results.
func (s *Simulation) tradeOutcomes(year int, out *trade.Outcome) {
	if s.trades == nil {
		s.trades = make(map[int]map[string]*trade.Result)
	}
	s.trades[year] = out.Results
	if out.Assessments != nil {
		if s.assessments == nil {
			s.assessments = make(map[int]map[string]*trade.Assessment)
		}
		s.assessments[year] = out.Assessments
	}
}

func (s *Simulation) worldDemand(year int) float64 {
	if d := s.in.Demand.Get(year, market.WorldRegion); d != 0 {
		return d
	}
	total := 0.0
	for _, region := range s.in.Regions {
		total += s.in.Demand.Get(year, region)
	}
	return total
}

func (s *Simulation) plantCosts(year int) []trade.PlantCost {
	var out []trade.PlantCost
	for _, name := range s.in.Roster.ActiveNames(year) {
		p, _ := s.in.Roster.Get(name)
		out = append(out, trade.PlantCost{Name: name, Region: p.Region, Country: p.Country, Capacity: p.Capacity})
	}
	return out
}

func (s *Simulation) refCapacities(year int) map[string]float64 {
	refYear := year - 1
	if year == s.scenario.StartYear {
		refYear = year
	}
	out := make(map[string]float64, len(s.in.Regions))
	for _, region := range s.in.Regions {
		out[region] = s.capacity.Region(refYear, region)
	}
	return out
}

func (s *Simulation) techChoiceAt(year int, name string) steel.Technology {
	if tech, ok := s.choices.Choice(year, name); ok {
		return tech
	}
	if p, ok := s.in.Roster.Get(name); ok {
		return p.InitialTech
	}
	return ""
}

func (s *Simulation) choicesOf(year int, names []string) map[string]steel.Technology {
	out := make(map[string]steel.Technology, len(names))
	for _, name := range names {
		if tech, ok := s.choices.Choice(year, name); ok {
			out[name] = tech
		}
	}
	return out
}

// waitingFirst moves last year's deferred plants to the front, keeping the
// shuffled order within each group.
func (s *Simulation) waitingFirst(year int, names []string) []string {
	var waiting, rest []string
	for _, name := range names {
		if s.constraint.IsWaiting(year, name) {
			waiting = append(waiting, name)
		} else {
			rest = append(rest, name)
		}
	}
	return append(waiting, rest...)
}

func (s *Simulation) switchCount(year int) int {
	count := 0
	for _, rec := range s.choices.Records() {
		if rec.Year != year {
			continue
		}
		if rec.SwitchType == switchMainRegular || rec.SwitchType == switchTransChange {
			count++
		}
	}
	return count
}

func (s *Simulation) publish(e eventbus.Event) {
	if s.bus != nil {
		s.bus.Publish(e)
	}
}
