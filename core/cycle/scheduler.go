package cycle

import (
	"math/rand"
	"sort"

	"github.com/steelpath/engine/infra/logger"
)

// Rebase is one entry of the schedule audit trail.
type Rebase struct {
	Plant  string `json:"plant"`
	Year   int    `json:"year"`
	Reason string `json:"reason"`
}

// Switchers partitions the active plants for one year by the decision kind
// their schedule allows.
type Switchers struct {
	MainCycle    []string
	Transitional []string
	NonSwitchers []string
	Combined     []string
}

// Scheduler owns the investment schedule of every plant. All randomness
// (cycle-length jitter) flows through the injected generator so runs are
// reproducible.
type Scheduler struct {
	bounds     Bounds
	randomness bool
	rng        *rand.Rand
	log        logger.Logger

	startYears   map[string]int
	cycleLengths map[string]int
	schedules    map[string]Schedule
	audit        []Rebase
}

// NewScheduler returns an empty Scheduler. When randomness is false every
// plant gets the nominal cycle duration.
func NewScheduler(bounds Bounds, randomness bool, rng *rand.Rand, log logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Scheduler{
		bounds:       bounds,
		randomness:   randomness,
		rng:          rng,
		log:          log,
		startYears:   make(map[string]int),
		cycleLengths: make(map[string]int),
		schedules:    make(map[string]Schedule),
	}
}

// InstantiatePlants builds schedules for the initial roster. Plants are
// processed in name order so cycle-length draws are reproducible. The
// first model year is clamped so no plant switches in it.
func (s *Scheduler) InstantiatePlants(startYears map[string]int) {
	names := make([]string, 0, len(startYears))
	for name := range startYears {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.instantiate(name, startYears[name])
		s.schedules[name] = s.bounds.clampFirstYear(s.schedules[name])
	}
}

// AddNewPlant registers a plant founded mid-run. Its first main cycle falls
// one full cycle after its start year.
func (s *Scheduler) AddNewPlant(name string, startYear int) {
	s.instantiate(name, startYear)
}

func (s *Scheduler) instantiate(name string, start int) {
	length := s.cycleLength()
	s.startYears[name] = start
	s.cycleLengths[name] = length
	main := s.bounds.InvestmentYears(start, length)
	s.schedules[name] = s.bounds.WithTransitionalWindows(main)
}

func (s *Scheduler) cycleLength() int {
	length := s.bounds.CycleDuration
	if s.randomness && s.bounds.CycleVariance > 0 && s.rng != nil {
		length += s.rng.Intn(2*s.bounds.CycleVariance) - s.bounds.CycleVariance
	}
	return length
}

const reasonTransSwitch = "transitional switch"

// AdjustForTransitionalSwitch truncates the active window at rebaseYear
// after a plant takes a transitional switch.
func (s *Scheduler) AdjustForTransitionalSwitch(name string, rebaseYear int) {
	s.schedules[name] = truncateWindowAt(s.schedules[name], rebaseYear)
	s.audit = append(s.audit, Rebase{Plant: name, Year: rebaseYear, Reason: reasonTransSwitch})
}

// TransitionalSwitchYears returns the years the plant committed a
// transitional switch, from the rebase audit.
func (s *Scheduler) TransitionalSwitchYears(name string) []int {
	var years []int
	for _, r := range s.audit {
		if r.Plant == name && r.Reason == reasonTransSwitch {
			years = append(years, r.Year)
		}
	}
	return years
}

// AdjustForDeferredInvestment shifts every decision point at or after
// rebaseYear forward one year, as when the turnover budget defers a switch.
func (s *Scheduler) AdjustForDeferredInvestment(name string, rebaseYear int) {
	s.schedules[name] = s.bounds.shiftFromYear(s.schedules[name], rebaseYear)
	s.audit = append(s.audit, Rebase{Plant: name, Year: rebaseYear, Reason: "deferred investment"})
}

// SwitchTypeOf returns the decision kind the plant's schedule allows in the
// year.
func (s *Scheduler) SwitchTypeOf(name string, year int) SwitchType {
	return s.schedules[name].SwitchTypeAt(year)
}

// PlantSwitchers partitions the active plants for the year.
func (s *Scheduler) PlantSwitchers(activePlants []string, year int) Switchers {
	var sw Switchers
	for _, name := range activePlants {
		switch s.schedules[name].SwitchTypeAt(year) {
		case SwitchMainCycle:
			sw.MainCycle = append(sw.MainCycle, name)
			sw.Combined = append(sw.Combined, name)
		case SwitchTransitional:
			sw.Transitional = append(sw.Transitional, name)
			sw.Combined = append(sw.Combined, name)
		default:
			sw.NonSwitchers = append(sw.NonSwitchers, name)
		}
	}
	return sw
}

// ScheduleOf returns the plant's current schedule.
func (s *Scheduler) ScheduleOf(name string) Schedule { return s.schedules[name] }

// StartYearOf returns the plant's operating start year.
func (s *Scheduler) StartYearOf(name string) int { return s.startYears[name] }

// CycleLengthOf returns the plant's jittered cycle length.
func (s *Scheduler) CycleLengthOf(name string) int { return s.cycleLengths[name] }

// Audit returns every schedule rebase recorded so far.
func (s *Scheduler) Audit() []Rebase { return s.audit }
