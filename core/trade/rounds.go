package trade

import (
	"github.com/steelpath/engine/core/market"
)

// Round 1 steps. Each posts a market entry, fixes the region's capacity and
// utilization for the year, and validates the result.

func (s *runState) balanced(res *Result) error {
	res.Cases = append(res.Cases, caseBalanced)
	production := res.Capacity * res.InitialUtilization
	entry, balance := mktBalance(production, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = res.Capacity
	res.NewTotalCapacity = res.Capacity
	res.NewUtilizedCapacity = production
	res.NewBalance = balance
	res.NewUtilization = res.InitialUtilization
	s.util.UpdateRegion(s.year, res.Region, res.InitialUtilization)
	return s.checkResult(res)
}

func (s *runState) exportSurplus(res *Result) error {
	res.Cases = append(res.Cases, caseCheapExport)
	production := res.Capacity * res.InitialUtilization
	entry, balance := mktBalance(production, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = res.Capacity
	res.NewTotalCapacity = res.Capacity
	res.NewUtilizedCapacity = production
	res.NewBalance = balance
	res.NewUtilization = res.InitialUtilization
	s.util.UpdateRegion(s.year, res.Region, res.InitialUtilization)
	return s.checkResult(res)
}

func (s *runState) closePlants(res *Result) error {
	res.Cases = append(res.Cases, caseClosePlant)
	excess := res.Capacity*s.f.cfg.UtilMin - res.Demand
	plan := planPlantClosures(res.Capacity, excess, s.avgCap, res.Demand, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	entry, _ := mktBalance(plan.newUtilizedCapacity, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = plan.newTotalCapacity
	res.PlantsToClose = plan.plantsToClose
	res.NewCapacityRequired = -(res.Capacity - plan.newTotalCapacity)
	res.NewTotalCapacity = plan.newTotalCapacity
	res.NewUtilizedCapacity = plan.newUtilizedCapacity
	res.NewBalance = plan.newUtilizedCapacity - res.Demand
	res.NewUtilization = plan.newUtilization
	s.util.UpdateRegion(s.year, res.Region, plan.newUtilization)
	return s.checkResult(res)
}

func (s *runState) adjustUtilization(res *Result) error {
	res.Cases = append(res.Cases, caseAdjustUtil)
	rate := boundUtilization(res.Demand/res.Capacity, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	production := res.Capacity * rate
	entry, balance := mktBalance(production, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = res.Capacity
	res.NewTotalCapacity = res.Capacity
	res.NewUtilizedCapacity = production
	res.NewBalance = balance
	res.NewUtilization = rate
	s.util.UpdateRegion(s.year, res.Region, rate)
	return s.checkResult(res)
}

func (s *runState) openPlants(res *Result) error {
	res.Cases = append(res.Cases, caseOpenPlant)
	capacityRequired := res.Demand - res.Capacity*s.f.cfg.UtilMax
	plan := planPlantOpenings(res.Capacity, capacityRequired, s.avgCap, s.avgAtMax, res.Demand, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	entry, balance := mktBalance(plan.newUtilizedCapacity, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = plan.newTotalCapacity
	res.PlantsRequired = plan.plantsRequired
	res.NewCapacityRequired = capacityRequired
	res.NewTotalCapacity = plan.newTotalCapacity
	res.NewUtilizedCapacity = plan.newUtilizedCapacity
	res.NewBalance = balance
	res.NewUtilization = plan.newUtilization
	s.util.UpdateRegion(s.year, res.Region, plan.newUtilization)
	return s.checkResult(res)
}

func (s *runState) importDeficit(res *Result) error {
	res.Cases = append(res.Cases, caseImport)
	rate := boundUtilization(res.Demand/res.Capacity, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	production := res.Capacity * rate
	entry, balance := mktBalance(production, res.Demand)
	s.accounts.Assign(s.year, res.Region, entry)
	s.capacity[res.Region] = res.Capacity
	res.NewTotalCapacity = res.Capacity
	res.NewUtilizedCapacity = production
	res.NewBalance = balance
	res.NewUtilization = rate
	s.util.UpdateRegion(s.year, res.Region, rate)
	return s.checkResult(res)
}

// Round 2: surplus reduction.

// lowerUtilization sheds exports down toward the utilization floor and
// returns the reduced global balance.
func (s *runState) lowerUtilization(region string, global float64) float64 {
	res := s.results[region]
	res.Cases = append(res.Cases, caseLowerUtil)
	capacity := s.capacity[region]
	regional := s.accounts.Balance(s.year, region, market.AccountTrade)
	shed := minFloat(regional, global)
	current := s.util.Value(s.year, region)
	shed = minFloat(shed, (current-s.f.cfg.UtilMin)*capacity)
	s.accounts.Assign(s.year, region, market.Entry{Exports: -shed})

	production := s.accounts.Balance(s.year, region, market.AccountProduction)
	rate := production / capacity
	res.NewTotalCapacity = capacity
	res.NewUtilization = rate
	res.NewUtilizedCapacity = production
	res.NewBalance = s.accounts.Balance(s.year, region, market.AccountTrade)
	s.util.UpdateRegion(s.year, region, rate)
	return global - shed
}

// closeForExporter sheds the exporter's remaining surplus by closing plants
// and returns the reduced global balance. The region sits at the utilization
// floor when this runs, so each closed plant sheds avg*util_min of
// production; the closure count is the minimum whole number that cancels
// the shed.
func (s *runState) closeForExporter(region string, global float64) (float64, error) {
	res := s.results[region]
	res.Cases = append(res.Cases, caseExporterClose)
	capacity := s.capacity[region]
	regional := s.accounts.Balance(s.year, region, market.AccountTrade)
	shed := minFloat(regional, global)
	target := s.accounts.Balance(s.year, region, market.AccountProduction) - shed
	s.accounts.Assign(s.year, region, market.Entry{Exports: -shed})

	excess := shed / s.f.cfg.UtilMin
	plan := planPlantClosures(capacity, excess, s.avgCap, target, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	production := s.accounts.Balance(s.year, region, market.AccountProduction)
	if s.round(production) != s.round(plan.newUtilizedCapacity) {
		return global, market.Inconsistent("exporter closures",
			"region %s: accounts %.4f vs plan %.4f", region, production, plan.newUtilizedCapacity)
	}
	_, balance := mktBalance(plan.newUtilizedCapacity, res.Demand)
	s.capacity[region] = plan.newTotalCapacity
	res.PlantsToClose += plan.plantsToClose
	res.NewTotalCapacity = plan.newTotalCapacity
	res.NewUtilizedCapacity = plan.newUtilizedCapacity
	res.NewBalance = balance
	res.NewUtilization = plan.newUtilization
	s.util.UpdateRegion(s.year, region, plan.newUtilization)
	if err := s.checkResult(res); err != nil {
		return global, err
	}
	return global - shed, nil
}

// Round 3: deficit coverage.

// absorbAllImports routes the whole outstanding deficit to the region.
func (s *runState) absorbAllImports(region string, global float64) (float64, error) {
	res := s.results[region]
	res.Cases = append(res.Cases, caseAllImports)
	extra := -global
	production := s.accounts.Balance(s.year, region, market.AccountProduction)
	s.accounts.Assign(s.year, region, market.Entry{Exports: extra})

	capacity := s.capacity[region]
	utilized := production + extra
	rate := utilized / capacity
	if rate > s.f.cfg.UtilMax {
		return global, market.Inconsistent("deficit absorption",
			"region %s would exceed the utilization ceiling at %.4f", region, rate)
	}
	rate = boundUtilization(rate, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	res.NewUtilizedCapacity = utilized
	res.NewBalance = s.accounts.Balance(s.year, region, market.AccountTrade)
	res.NewUtilization = rate
	s.util.UpdateRegion(s.year, region, rate)
	return 0, s.checkResult(res)
}

// absorbPartialImports routes what headroom the region has and returns the
// shrunken (still negative) global balance.
func (s *runState) absorbPartialImports(region string, global, headroom float64) (float64, error) {
	res := s.results[region]
	res.Cases = append(res.Cases, casePartImports)
	s.accounts.Assign(s.year, region, market.Entry{Exports: headroom})
	production := s.accounts.Balance(s.year, region, market.AccountProduction)
	rate := production / s.capacity[region]
	res.NewUtilizedCapacity = production
	res.NewBalance = s.accounts.Balance(s.year, region, market.AccountTrade)
	res.NewUtilization = rate
	s.util.UpdateRegion(s.year, region, rate)
	return global + headroom, s.checkResult(res)
}

// openCheapest opens plants in the cheapest competitive region to cover the
// residual deficit.
func (s *runState) openCheapest(region string, global float64) error {
	res := s.results[region]
	res.Cases = append(res.Cases, caseCheapestOpen)
	initialCapacity := s.capacity[region]
	extra := -global
	s.accounts.Assign(s.year, region, market.Entry{Exports: extra})
	production := s.accounts.Balance(s.year, region, market.AccountProduction)
	capacityRequired := production - initialCapacity*s.f.cfg.UtilMax
	plan := planPlantOpenings(initialCapacity, capacityRequired, s.avgCap, s.avgAtMax, production, s.f.cfg.UtilMin, s.f.cfg.UtilMax)
	_, balance := mktBalance(plan.newUtilizedCapacity, res.Demand)
	s.capacity[region] = plan.newTotalCapacity
	res.NewCapacityRequired = capacityRequired
	res.PlantsRequired = plan.plantsRequired
	res.NewTotalCapacity = plan.newTotalCapacity
	res.NewUtilizedCapacity = plan.newUtilizedCapacity
	res.NewBalance = balance
	res.NewUtilization = plan.newUtilization
	s.util.UpdateRegion(s.year, region, plan.newUtilization)
	return s.checkResult(res)
}

// checkResult validates a region's result after a balancing step.
func (s *runState) checkResult(res *Result) error {
	if s.round(res.NewTotalCapacity) <= 0 {
		return market.Inconsistent("result capacity", "region %s: %.4f (%v)", res.Region, res.NewTotalCapacity, res.Cases)
	}
	if s.round(res.NewUtilizedCapacity) <= 0 {
		return market.Inconsistent("result production", "region %s: %.4f (%v)", res.Region, res.NewUtilizedCapacity, res.Cases)
	}
	rate := s.round(res.NewUtilization)
	if rate < s.f.cfg.UtilMin || rate > s.f.cfg.UtilMax {
		return market.Inconsistent("result utilization",
			"region %s at %.4f outside [%.2f, %.2f] (%v)", res.Region, res.NewUtilization, s.f.cfg.UtilMin, s.f.cfg.UtilMax, res.Cases)
	}
	if res.NewCapacityRequired > 0 && res.PlantsRequired <= 0 {
		return market.Inconsistent("result openings",
			"region %s requires %.4f Mt but no plants (%v)", res.Region, res.NewCapacityRequired, res.Cases)
	}
	if res.PlantsToClose > 0 && res.Capacity <= res.NewTotalCapacity {
		return market.Inconsistent("result closures",
			"region %s closes %d plants without shrinking (%v)", res.Region, res.PlantsToClose, res.Cases)
	}
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
