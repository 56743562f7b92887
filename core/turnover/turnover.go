package turnover

import (
	"fmt"
	"sort"

	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/infra/logger"
)

// Config shapes the per-year switching budget.
type Config struct {
	// Fixed Mtpa budget applied between FixedRateFrom and FixedRateTo
	// inclusive; afterwards the budget grows with world capacity.
	FixedRateMtpa float64 `json:"fixed_rate_mtpa"`
	FixedRateFrom int     `json:"fixed_rate_from"`
	FixedRateTo   int     `json:"fixed_rate_to"`
	GrowthRate    float64 `json:"growth_rate"`
	// MaxWaitYears is the consecutive-deferral count that triggers a
	// warning. Not a hard limit.
	MaxWaitYears int `json:"max_wait_years"`
	EndYear      int `json:"end_year"`
}

// SetDefaults fills the zero values.
func (c *Config) SetDefaults() {
	if c.MaxWaitYears == 0 {
		c.MaxWaitYears = 6
	}
}

// SwitchingPlant is one registered switch candidate for a year.
type SwitchingPlant struct {
	Name             string
	Capacity         float64
	SwitchType       cycle.SwitchType
	WithinConstraint bool
	Waiting          bool
}

// Constraint tracks the budget, its balance and the candidates per year.
type Constraint struct {
	cfg     Config
	limit   map[int]float64
	balance map[int]float64
	// unenforced sums the draws committed with enforce=false; new builds
	// are counted against the balance but never blocked by it.
	unenforced map[int]float64
	switchers  map[int]map[string]*SwitchingPlant
	waitYears  map[string]int
	log        logger.Logger
}

// New returns an initialized Constraint covering the given years.
func New(cfg Config, years []int, log logger.Logger) *Constraint {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	c := &Constraint{
		cfg:        cfg,
		limit:      make(map[int]float64, len(years)),
		balance:    make(map[int]float64, len(years)),
		unenforced: make(map[int]float64, len(years)),
		switchers:  make(map[int]map[string]*SwitchingPlant, len(years)),
		waitYears:  make(map[string]int),
		log:        log,
	}
	for _, year := range years {
		c.limit[year] = 0
		c.balance[year] = 0
		c.unenforced[year] = 0
		c.switchers[year] = make(map[string]*SwitchingPlant)
	}
	return c
}

// UpdateLimit sets the year's budget: the fixed rate inside the fixed-rate
// window, otherwise proportional growth on the prior year's world capacity.
func (c *Constraint) UpdateLimit(year int, priorYearWorldCapacity float64) {
	if year >= c.cfg.FixedRateFrom && year <= c.cfg.FixedRateTo {
		c.limit[year] = c.cfg.FixedRateMtpa
		return
	}
	c.limit[year] = priorYearWorldCapacity * (1 + c.cfg.GrowthRate)
}

// ResetBalance restores the year's balance to its budget.
func (c *Constraint) ResetBalance(year int) {
	c.balance[year] = c.limit[year]
	c.unenforced[year] = 0
}

// Balance returns the remaining budget for the year.
func (c *Constraint) Balance(year int) float64 { return c.balance[year] }

// Limit returns the year's budget.
func (c *Constraint) Limit(year int) float64 { return c.limit[year] }

// RegisterSwitcher records a candidate once per year; re-registering an
// already known candidate is a no-op.
func (c *Constraint) RegisterSwitcher(year int, name string, capacity float64, switchType cycle.SwitchType) {
	if _, ok := c.switchers[year][name]; ok {
		return
	}
	c.switchers[year][name] = &SwitchingPlant{
		Name:       name,
		Capacity:   capacity,
		SwitchType: switchType,
		Waiting:    true,
	}
}

// SubtractCapacityFromBalance commits the plant's capacity against the
// year's balance. When enforce is true and the balance is insufficient the
// plant stays on the waiting list and false is returned.
func (c *Constraint) SubtractCapacityFromBalance(year int, name string, enforce bool) bool {
	sw, ok := c.switchers[year][name]
	if !ok {
		return false
	}
	if enforce && sw.Capacity > c.balance[year] {
		return false
	}
	if !enforce {
		c.unenforced[year] += sw.Capacity
	}
	c.balance[year] -= sw.Capacity
	sw.WithinConstraint = true
	sw.Waiting = false
	return true
}

// RemoveFromWaitingList clears a candidate that ended up keeping its
// technology on its own merit.
func (c *Constraint) RemoveFromWaitingList(year int, name string) {
	if sw, ok := c.switchers[year][name]; ok {
		sw.Waiting = false
		delete(c.waitYears, name)
	}
}

// WaitingList returns the names still waiting at the end of the year,
// sorted for deterministic iteration.
func (c *Constraint) WaitingList(year int) []string {
	var names []string
	for name, sw := range c.switchers[year] {
		if sw.Waiting {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// IsWaiting reports whether the plant entered the year on the waiting list.
func (c *Constraint) IsWaiting(year int, name string) bool {
	sw, ok := c.switchers[year][name]
	return ok && sw.Waiting
}

// MoveWaitingListToNextYear carries every waiting candidate into the next
// year and defers its investment schedule by one year.
func (c *Constraint) MoveWaitingListToNextYear(sched *cycle.Scheduler, year int) {
	if year >= c.cfg.EndYear {
		return
	}
	for _, name := range c.WaitingList(year) {
		sw := c.switchers[year][name]
		c.switchers[year+1][name] = &SwitchingPlant{
			Name:       sw.Name,
			Capacity:   sw.Capacity,
			SwitchType: sw.SwitchType,
			Waiting:    true,
		}
		sched.AdjustForDeferredInvestment(name, year)
		c.waitYears[name]++
	}
}

// CheckBalance returns an error if the year's enforced draws overran the
// budget, which would mean a switch was committed outside the constraint.
// Unenforced draws may push the raw balance negative and are excluded.
func (c *Constraint) CheckBalance(year int) error {
	if c.balance[year]+c.unenforced[year] < 0 {
		return fmt.Errorf("capacity turnover balance negative in %d: %.4f enforced after %.4f unenforced",
			year, c.balance[year]+c.unenforced[year], c.unenforced[year])
	}
	return nil
}

// WarnLongWaiters logs every plant that has been deferred longer than the
// configured threshold.
func (c *Constraint) WarnLongWaiters() {
	var names []string
	for name, waited := range c.waitYears {
		if waited > c.cfg.MaxWaitYears {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c.log.Warnf("plant %s has waited %d years for turnover budget (threshold %d)",
			name, c.waitYears[name], c.cfg.MaxWaitYears)
	}
}

// WaitYears returns how many consecutive years the plant has been deferred.
func (c *Constraint) WaitYears(name string) int { return c.waitYears[name] }
