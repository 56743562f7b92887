package techchoice

import (
	"github.com/steelpath/engine/core/steel"
)

const (
	// DefaultYearUnavailable keeps technologies selectable for the whole
	// modelled horizon unless a moratorium narrows them.
	DefaultYearUnavailable = 2200
	// MoratoriumYear is when initial and transitional archetypes stop being
	// selectable under a technology moratorium.
	MoratoriumYear = 2030
)

// Availability holds the first year each technology can be chosen.
type Availability struct {
	from map[steel.Technology]int
}

// NewAvailability builds an availability table from technology -> first
// available year. Technologies absent from the map are available from the
// start.
func NewAvailability(from map[steel.Technology]int) *Availability {
	copied := make(map[steel.Technology]int, len(from))
	for tech, year := range from {
		copied[tech] = year
	}
	return &Availability{from: copied}
}

// AvailableFrom returns the first year the technology can be chosen.
func (a *Availability) AvailableFrom(tech steel.Technology) int {
	return a.from[tech]
}

// Available reports whether the technology can be chosen in the year. Under
// a moratorium, initial and transitional archetypes become unavailable from
// MoratoriumYear.
func (a *Availability) Available(tech steel.Technology, year int, moratorium bool) bool {
	until := DefaultYearUnavailable
	if moratorium {
		if phase, ok := steel.PhaseOf(tech); ok &&
			(phase == steel.PhaseInitial || phase == steel.PhaseTransitional) {
			until = MoratoriumYear
		}
	}
	return a.from[tech] <= year && year < until
}

// ValidSwitches returns the candidate technologies a plant on base may move
// to in the year. Off-cycle (transitional) switches are restricted to the
// base technology's furnace group unless base is already an end-state
// archetype. A base technology that has become unavailable stays a candidate
// while the year predates its own availability, since the plant already
// runs it.
func ValidSwitches(avail *Availability, base steel.Technology, year int, transitional, moratorium bool) []steel.Technology {
	var out []steel.Technology
	for _, tech := range steel.All {
		if !steel.SwitchAllowed(base, tech) {
			continue
		}
		if transitional && !steel.IsEndState(base) && !steel.SameGroup(base, tech) {
			continue
		}
		if !avail.Available(tech, year, moratorium) {
			continue
		}
		out = append(out, tech)
	}
	if !containsTech(out, base) && year < avail.AvailableFrom(base) {
		out = append(out, base)
	}
	return out
}

func containsTech(techs []steel.Technology, tech steel.Technology) bool {
	for _, t := range techs {
		if t == tech {
			return true
		}
	}
	return false
}
