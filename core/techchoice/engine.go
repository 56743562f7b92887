package techchoice

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/turnover"
	"github.com/steelpath/engine/infra/logger"
)

// SolverLogic selects the scoring algorithm.
type SolverLogic string

const (
	LogicRanked     SolverLogic = "ranked"
	LogicScaled     SolverLogic = "scaled"
	LogicScaledBins SolverLogic = "scaled_bins"
)

// WeightSet weighs cost against emissions abatement in the combined score.
type WeightSet struct {
	TCO       float64 `json:"tco"`
	Emissions float64 `json:"emissions"`
}

// Options carries the scenario switches of the choice engine.
type Options struct {
	Logic                  SolverLogic
	Weights                WeightSet
	Moratorium             bool
	EnforceConstraints     bool
	EnforceCapacityBalance bool
	RegionalScrap          bool
	// BufferTop and BufferTail are the off-cycle window buffers; an
	// off-cycle switch amortizes greenfield capex over the cycle minus
	// both buffers.
	BufferTop  int
	BufferTail int
}

// Request describes one plant decision point.
type Request struct {
	Year         int
	Plant        string
	Region       string
	Country      string
	BaseTech     steel.Technology
	Capacity     float64
	Transitional bool
	CycleLength  int
}

// RankingRecord is one scored candidate of one decision, kept for the run's
// provenance output.
type RankingRecord struct {
	Year                 int              `json:"year"`
	Region               string           `json:"region"`
	Plant                string           `json:"plant"`
	BaseTech             steel.Technology `json:"base_tech"`
	Tech                 steel.Technology `json:"switch_tech"`
	ReferenceTech        steel.Technology `json:"reference_tech"`
	SwitchType           cycle.SwitchType `json:"switch_type"`
	TCOScore             float64          `json:"tco_score"`
	AbatementScore       float64          `json:"abatement_score"`
	Overall              float64          `json:"overall"`
	ExcludedByConstraint bool             `json:"excluded_by_constraint"`
}

// CheckRecord is the outcome of one resource feasibility check.
type CheckRecord struct {
	Year            int              `json:"year"`
	Plant           string           `json:"plant"`
	Region          string           `json:"region"`
	BaseTech        steel.Technology `json:"base_tech"`
	SwitchTech      steel.Technology `json:"switch_tech"`
	AssignCase      string           `json:"assign_case"`
	Passed          bool             `json:"passed"`
	FailedResources []steel.Resource `json:"failed_resources,omitempty"`
}

// Engine scores switch candidates against the cost and abatement references
// and settles the winning choice against the capacity and resource
// constraints.
type Engine struct {
	tco       TCOTable
	abatement AbatementTable
	lcost     LevelizedCostTable
	avail     *Availability
	intensity ledger.IntensityRef
	led       *ledger.Ledger
	opts      Options

	log     logger.Logger
	records []RankingRecord
	checks  []CheckRecord
}

// NewEngine wires a choice engine over the reference tables and the shared
// resource ledger.
func NewEngine(tco TCOTable, abatement AbatementTable, lcost LevelizedCostTable, avail *Availability, intensity ledger.IntensityRef, led *ledger.Ledger, opts Options, log logger.Logger) *Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{
		tco:       tco,
		abatement: abatement,
		lcost:     lcost,
		avail:     avail,
		intensity: intensity,
		led:       led,
		opts:      opts,
		log:       log,
	}
}

// RankingRecords returns every scored candidate recorded so far.
func (e *Engine) RankingRecords() []RankingRecord { return e.records }

// CheckRecords returns every resource feasibility check recorded so far.
func (e *Engine) CheckRecords() []CheckRecord { return e.checks }

// tcoValue returns the cost metric for a candidate: regular capex at a main
// cycle, stretched greenfield capex off cycle.
func (e *Engine) tcoValue(req Request, tech steel.Technology) float64 {
	row := e.tco[SwitchKey{Year: req.Year, Country: req.Country, Base: req.BaseTech, Switch: tech}]
	if !req.Transitional {
		return row.RegularCapex
	}
	denom := req.CycleLength - (e.opts.BufferTop + e.opts.BufferTail)
	if req.CycleLength <= 0 || denom <= 0 {
		return row.GFCapex
	}
	return row.GFCapex * float64(req.CycleLength) / float64(denom)
}

func (e *Engine) abatementValue(req Request, tech steel.Technology) float64 {
	return e.abatement[SwitchKey{Year: req.Year, Country: req.Country, Base: req.BaseTech, Switch: tech}]
}

// BestTech returns the best switch technology for the request without
// settling any constraint. A plant with no viable candidate keeps its base
// technology.
func (e *Engine) BestTech(req Request) (steel.Technology, error) {
	if req.BaseTech == "" {
		return "", fmt.Errorf("plant %s has no base technology in %d", req.Plant, req.Year)
	}
	candidates := ValidSwitches(e.avail, req.BaseTech, req.Year, req.Transitional, e.opts.Moratorium)
	if req.Transitional && !containsTech(candidates, req.BaseTech) {
		candidates = append(candidates, req.BaseTech)
	}
	if e.opts.Logic == LogicScaled || e.opts.Logic == LogicScaledBins {
		return e.scaledChoice(req, candidates), nil
	}
	return e.rankedChoice(req, candidates), nil
}

// rankedChoice buckets cost and abatement into ranks 1..3 and minimizes
// their weighted sum. The cost reference is the candidate minimum, excluding
// EAF so its structurally low cost does not distort the buckets; off cycle
// the reference is the plant's own current technology.
func (e *Engine) rankedChoice(req Request, candidates []steel.Technology) steel.Technology {
	if len(candidates) == 0 {
		return req.BaseTech
	}

	tcoVals := make(map[steel.Technology]float64, len(candidates))
	for _, tech := range candidates {
		tcoVals[tech] = e.tcoValue(req, tech)
	}

	refTech := candidates[0]
	switch {
	case len(candidates) == 1:
	case req.Transitional:
		refTech = req.BaseTech
	default:
		first := true
		for _, tech := range candidates {
			if tech == steel.EAF && len(candidates) > 1 {
				continue
			}
			if first || tcoVals[tech] < tcoVals[refTech] {
				refTech = tech
				first = false
			}
		}
	}
	refVal := tcoVals[refTech]

	tcoRanks := make(map[steel.Technology]int, len(candidates))
	abateRanks := make(map[steel.Technology]int, len(candidates))
	for _, tech := range candidates {
		if len(candidates) == 1 {
			tcoRanks[tech] = 1
			abateRanks[tech] = 1
			continue
		}
		tcoRanks[tech] = tcoRank(tcoVals[tech], refVal)
		abateRanks[tech] = abatementRank(e.abatementValue(req, tech))
	}

	allowed := candidates
	if e.opts.EnforceConstraints {
		allowed = e.constraintFiltered(req, candidates, "pre-existing plant")
		if req.Transitional && !containsTech(allowed, req.BaseTech) {
			allowed = append(allowed, req.BaseTech)
		}
		if !req.Transitional {
			hasRank1 := false
			for _, tech := range allowed {
				if tcoRanks[tech] == 1 {
					hasRank1 = true
					break
				}
			}
			if !hasRank1 && !containsTech(allowed, req.BaseTech) {
				allowed = append(allowed, req.BaseTech)
			}
		}
	}

	overall := func(tech steel.Technology) float64 {
		tr, ok := tcoRanks[tech]
		if !ok {
			tr = tcoRank(e.tcoValue(req, tech), refVal)
		}
		ar, ok := abateRanks[tech]
		if !ok {
			ar = abatementRank(e.abatementValue(req, tech))
		}
		return float64(tr)*e.opts.Weights.TCO + float64(ar)*e.opts.Weights.Emissions
	}

	for _, tech := range candidates {
		e.records = append(e.records, RankingRecord{
			Year:                 req.Year,
			Region:               req.Region,
			Plant:                req.Plant,
			BaseTech:             req.BaseTech,
			Tech:                 tech,
			ReferenceTech:        refTech,
			SwitchType:           switchTypeOf(req),
			TCOScore:             float64(tcoRanks[tech]),
			AbatementScore:       float64(abateRanks[tech]),
			Overall:              overall(tech),
			ExcludedByConstraint: !containsTech(allowed, tech),
		})
	}

	if len(allowed) == 0 {
		return req.BaseTech
	}
	best := allowed[0]
	for _, tech := range allowed[1:] {
		score, bestScore := overall(tech), overall(best)
		switch {
		case score < bestScore:
			best = tech
		case score == bestScore:
			// Ties go to the cheaper raw cost.
			if e.tcoValue(req, tech) < e.tcoValue(req, best) {
				best = tech
			}
		}
	}
	return best
}

// scaledChoice normalizes raw cost and (reversed) abatement onto a common
// scale and minimizes their weighted sum. In bins mode the scaled values are
// quantized into as many equal-width rank buckets as there are candidates.
func (e *Engine) scaledChoice(req Request, candidates []steel.Technology) steel.Technology {
	if len(candidates) < 2 {
		return req.BaseTech
	}

	tcoVec := make([]float64, len(candidates))
	abateVec := make([]float64, len(candidates))
	for i, tech := range candidates {
		tcoVec[i] = e.tcoValue(req, tech)
		abateVec[i] = e.abatementValue(req, tech)
	}
	tcoScaled := normalize(tcoVec)
	abateScaled := normalize(abateVec)
	for i := range abateScaled {
		abateScaled[i] = 1 - abateScaled[i]
	}
	if e.opts.Logic == LogicScaledBins {
		tcoScaled = binRanks(tcoScaled)
		abateScaled = binRanks(abateScaled)
	}

	allowed := candidates
	if e.opts.EnforceConstraints {
		allowed = e.constraintFiltered(req, candidates, "pre-existing plant")
		if req.Transitional && !containsTech(allowed, req.BaseTech) {
			allowed = append(allowed, req.BaseTech)
		}
		if len(allowed) == 0 {
			allowed = append(allowed, req.BaseTech)
		}
	}

	var best steel.Technology
	bestScore := 0.0
	found := false
	for i, tech := range candidates {
		score := tcoScaled[i]*e.opts.Weights.TCO + abateScaled[i]*e.opts.Weights.Emissions
		e.records = append(e.records, RankingRecord{
			Year:                 req.Year,
			Region:               req.Region,
			Plant:                req.Plant,
			BaseTech:             req.BaseTech,
			Tech:                 tech,
			SwitchType:           switchTypeOf(req),
			TCOScore:             tcoScaled[i],
			AbatementScore:       abateScaled[i],
			Overall:              score,
			ExcludedByConstraint: !containsTech(allowed, tech),
		})
		if !containsTech(allowed, tech) {
			continue
		}
		switch {
		case !found || score < bestScore:
			best, bestScore, found = tech, score, true
		case score == bestScore:
			// Ties go to the cheaper raw cost.
			if e.tcoValue(req, tech) < e.tcoValue(req, best) {
				best = tech
			}
		}
	}
	if !found {
		return req.BaseTech
	}
	return best
}

// binRanks quantizes scaled values into equal-width buckets over their
// range, one bucket per candidate, returning the 1-based bucket index.
func binRanks(vals []float64) []float64 {
	lo, hi := floats.Min(vals), floats.Max(vals)
	ranks := make([]float64, len(vals))
	if hi == lo {
		for i := range ranks {
			ranks[i] = 1
		}
		return ranks
	}
	n := float64(len(vals))
	width := (hi - lo) / n
	for i, v := range vals {
		r := math.Floor((v-lo)/width) + 1
		if r > n {
			r = n
		}
		ranks[i] = r
	}
	return ranks
}

// constraintFiltered returns the candidates whose projected resource draw
// fits the remaining balances, recording every check.
func (e *Engine) constraintFiltered(req Request, candidates []steel.Technology, assignCase string) []steel.Technology {
	var allowed []steel.Technology
	for _, tech := range candidates {
		checks := e.led.UsageChecks(e.intensity, req.Year, tech, req.Region, req.Capacity, false, false, false)
		passed := true
		var failed []steel.Resource
		for _, res := range steel.Resources {
			if !checks[res] {
				passed = false
				failed = append(failed, res)
			}
		}
		if passed {
			allowed = append(allowed, tech)
		}
		e.checks = append(e.checks, CheckRecord{
			Year:            req.Year,
			Plant:           req.Plant,
			Region:          req.Region,
			BaseTech:        req.BaseTech,
			SwitchTech:      tech,
			AssignCase:      assignCase,
			Passed:          passed,
			FailedResources: failed,
		})
	}
	return allowed
}

// Decide runs BestTech and settles the outcome: the plant is registered as a
// potential switcher, a real switch draws down the year's turnover budget
// (reverting to the base technology when the budget cannot cover it), and a
// stay-put decision leaves the waiting list. With constraint enforcement on,
// the final choice's resource draw is charged to the ledger.
func (e *Engine) Decide(req Request, constraint *turnover.Constraint) (steel.Technology, error) {
	best, err := e.BestTech(req)
	if err != nil {
		return "", err
	}

	constraint.RegisterSwitcher(req.Year, req.Plant, req.Capacity, switchTypeOf(req))
	if best != req.BaseTech {
		if !constraint.SubtractCapacityFromBalance(req.Year, req.Plant, e.opts.EnforceCapacityBalance) {
			e.log.Debugf("plant %s deferred in %d: turnover budget cannot cover %.3f Mt",
				req.Plant, req.Year, req.Capacity)
			best = req.BaseTech
		}
	} else {
		constraint.RemoveFromWaitingList(req.Year, req.Plant)
	}

	if e.opts.EnforceConstraints {
		e.led.UsageChecks(e.intensity, req.Year, best, req.Region, req.Capacity, true, true, false)
	}
	return best, nil
}

func switchTypeOf(req Request) cycle.SwitchType {
	if req.Transitional {
		return cycle.SwitchTransitional
	}
	return cycle.SwitchMainCycle
}
