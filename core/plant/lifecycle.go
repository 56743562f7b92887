package plant

import (
	"math/rand"

	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/core/market"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/turnover"
	"github.com/steelpath/engine/infra/logger"
)

// ChoiceStore is the per-year technology choice state the lifecycle reads
// and writes.
type ChoiceStore interface {
	Choice(year int, name string) (steel.Technology, bool)
	SetChoice(year int, name string, tech steel.Technology)
}

// TechSelector picks the technology for a newly founded plant.
type TechSelector interface {
	MinCostTechForRegion(year int, region, plantName string, capacity float64) (steel.Technology, error)
}

// UsageCharger settles (or refunds, when negative) a plant's projected
// resource draw against the material ledger.
type UsageCharger interface {
	ChargeUsage(year int, tech steel.Technology, region string, capacity float64, negative bool)
}

// RegionPlan is the balancer's open/close requirement for one region.
type RegionPlan struct {
	Region           string
	PlantsToOpen     int
	PlantsToClose    int
	AvgCapacity      float64
	InitialCapacity  float64
	NewTotalCapacity float64
	// MinCapacityToClose is the capacity the balancer's plan removed:
	// initial minus new total, in whole average-plant units.
	MinCapacityToClose  float64
	NewUtilizedCapacity float64
}

// Closed describes one decommissioned plant.
type Closed struct {
	Name     string
	Region   string
	Tech     steel.Technology
	Capacity float64
}

// LifecycleConfig bounds the post-closure utilization check.
type LifecycleConfig struct {
	UtilMin  float64
	UtilMax  float64
	Rounding int
}

// SetDefaults fills the zero values.
func (c *LifecycleConfig) SetDefaults() {
	if c.UtilMin == 0 {
		c.UtilMin = 0.6
	}
	if c.UtilMax == 0 {
		c.UtilMax = 0.95
	}
	if c.Rounding == 0 {
		c.Rounding = 3
	}
}

// Lifecycle opens and closes plant records from the balancer's regional
// plans. Openings pick the cheapest feasible technology; closures retire the
// plants longest into their investment cycle, oldest first.
type Lifecycle struct {
	cfg        LifecycleConfig
	roster     *Roster
	sched      *cycle.Scheduler
	constraint *turnover.Constraint
	util       *market.UtilizationState
	rng        *rand.Rand
	log        logger.Logger

	choices ChoiceStore
	picker  TechSelector
	charger UsageCharger
}

// NewLifecycle wires a lifecycle manager over the shared simulation state.
func NewLifecycle(cfg LifecycleConfig, roster *Roster, sched *cycle.Scheduler, constraint *turnover.Constraint, util *market.UtilizationState, choices ChoiceStore, picker TechSelector, charger UsageCharger, rng *rand.Rand, log logger.Logger) *Lifecycle {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Lifecycle{
		cfg:        cfg,
		roster:     roster,
		sched:      sched,
		constraint: constraint,
		util:       util,
		rng:        rng,
		log:        log,
		choices:    choices,
		picker:     picker,
		charger:    charger,
	}
}

func (l *Lifecycle) round(v float64) float64 { return market.RoundTo(v, l.cfg.Rounding) }

// OpenPlants founds the plants each regional plan requires, assigns each the
// region's cheapest feasible technology, registers it with the scheduler and
// the turnover constraint, and charges its resource draw.
func (l *Lifecycle) OpenPlants(year int, plans []RegionPlan) ([]*Plant, error) {
	var opened []*Plant
	for _, plan := range plans {
		for i := 0; i < plan.PlantsToOpen; i++ {
			p, err := l.roster.NewPlantInRegion(plan.Region, plan.AvgCapacity, year, l.rng)
			if err != nil {
				return opened, err
			}
			tech, err := l.picker.MinCostTechForRegion(year, plan.Region, p.Name, p.Capacity)
			if err != nil {
				return opened, err
			}
			p.InitialTech = tech
			if err := l.roster.Add(p); err != nil {
				return opened, err
			}

			l.constraint.RegisterSwitcher(year, p.Name, p.Capacity, cycle.SwitchNone)
			l.constraint.SubtractCapacityFromBalance(year, p.Name, false)
			l.choices.SetChoice(year, p.Name, tech)
			l.charger.ChargeUsage(year, tech, plan.Region, p.Capacity, false)
			l.sched.AddNewPlant(p.Name, year)

			l.log.Infof("opened plant %s in %s with %s (%.2f Mt)", p.Name, plan.Region, tech, p.Capacity)
			opened = append(opened, p)
		}
	}
	return opened, nil
}

// ClosePlants retires plants until each regional plan's capacity requirement
// is met, then rebases the region's utilization on the capacity actually
// removed.
func (l *Lifecycle) ClosePlants(year int, plans []RegionPlan) ([]Closed, error) {
	var closed []Closed
	for _, plan := range plans {
		if plan.PlantsToClose <= 0 {
			continue
		}
		if l.round(plan.NewTotalCapacity) != l.round(plan.InitialCapacity-plan.MinCapacityToClose) {
			return closed, market.Inconsistent("closure plan",
				"region %s: target %.4f vs initial %.4f minus %.4f",
				plan.Region, plan.NewTotalCapacity, plan.InitialCapacity, plan.MinCapacityToClose)
		}

		candidates := l.roster.ActiveInRegion(year, plan.Region)
		removed := 0.0
		for l.round(removed) < l.round(plan.MinCapacityToClose) {
			name := l.oldestOf(candidates, year)
			if name == "" {
				return closed, market.Inconsistent("closure candidates",
					"region %s ran out of plants with %.4f of %.4f Mt removed",
					plan.Region, removed, plan.MinCapacityToClose)
			}
			candidates = removeName(candidates, name)

			p, _ := l.roster.Get(name)
			tech, ok := l.choices.Choice(year, name)
			if !ok {
				tech = p.InitialTech
			}
			if err := l.roster.Close(name, year); err != nil {
				return closed, err
			}
			l.choices.SetChoice(year, name, steel.CloseTechnology)
			l.constraint.RemoveFromWaitingList(year, name)
			l.charger.ChargeUsage(year, tech, plan.Region, p.Capacity, true)

			removed += p.Capacity
			closed = append(closed, Closed{Name: name, Region: plan.Region, Tech: tech, Capacity: p.Capacity})
			l.log.Infof("closed plant %s in %s, was %s (%.2f Mt)", name, plan.Region, tech, p.Capacity)
		}

		newCapacity := plan.InitialCapacity - removed
		newUtilization := plan.NewUtilizedCapacity / newCapacity
		l.util.UpdateRegion(year, plan.Region, newUtilization)

		if l.round(removed) < l.round(plan.MinCapacityToClose) {
			return closed, market.Inconsistent("closure volume",
				"region %s removed %.4f of the %.4f Mt required", plan.Region, removed, plan.MinCapacityToClose)
		}
		rate := l.round(newUtilization)
		if rate < l.cfg.UtilMin || rate > l.cfg.UtilMax {
			return closed, market.Inconsistent("closure utilization",
				"region %s at %.4f outside [%.2f, %.2f]", plan.Region, newUtilization, l.cfg.UtilMin, l.cfg.UtilMax)
		}
	}
	return closed, nil
}

// oldestOf picks the candidate longest into its investment cycle.
func (l *Lifecycle) oldestOf(candidates []string, year int) string {
	if len(candidates) == 0 {
		return ""
	}
	ages := make(map[string]int, len(candidates))
	for _, name := range candidates {
		ages[name] = CycleAge(
			l.sched.ScheduleOf(name).MainYears(),
			l.sched.TransitionalSwitchYears(name),
			l.sched.StartYearOf(name),
			l.sched.CycleLengthOf(name),
			year,
		)
	}
	return Oldest(ages, l.rng)
}

func removeName(names []string, drop string) []string {
	out := names[:0]
	for _, n := range names {
		if n != drop {
			out = append(out, n)
		}
	}
	return out
}
