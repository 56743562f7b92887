package sim

import (
	"github.com/steelpath/engine/core/steel"
)

// Switch-type labels recorded with every choice entry.
const (
	switchNotAYear      = "not a switch year"
	switchSecondaryEAF  = "secondary capacity is always EAF"
	switchAlreadyClosed = "plant was already closed"
	switchFoundingYear  = "new plant founding year"
	switchMainNoChange  = "no change in main investment cycle year"
	switchMainRegular   = "regular change in investment cycle year"
	switchTransChange   = "transitional switch in off-cycle investment year"
	switchTransNoChange = "no change during off-cycle investment year"
	switchDeferredByCap = "investment year deferred due to capacity constraint"
)

// ChoiceRecord is one provenance entry of the technology choice log.
type ChoiceRecord struct {
	Year        int              `json:"year"`
	Plant       string           `json:"plant"`
	CurrentTech steel.Technology `json:"current_tech"`
	SwitchTech  steel.Technology `json:"switch_tech"`
	SwitchType  string           `json:"switch_type"`
}

// Choices holds the committed technology per (year, plant) plus the full
// decision log.
type Choices struct {
	choices map[int]map[string]steel.Technology
	records []ChoiceRecord
}

// NewChoices returns an empty container covering the given years.
func NewChoices(years []int) *Choices {
	c := &Choices{choices: make(map[int]map[string]steel.Technology, len(years))}
	for _, year := range years {
		c.choices[year] = make(map[string]steel.Technology)
	}
	return c
}

// SetChoice commits a plant's technology for the year.
func (c *Choices) SetChoice(year int, name string, tech steel.Technology) {
	if c.choices[year] == nil {
		c.choices[year] = make(map[string]steel.Technology)
	}
	c.choices[year][name] = tech
}

// Choice returns a plant's committed technology for the year.
func (c *Choices) Choice(year int, name string) (steel.Technology, bool) {
	tech, ok := c.choices[year][name]
	return tech, ok
}

// For returns the committed choices of the year.
func (c *Choices) For(year int) map[string]steel.Technology {
	out := make(map[string]steel.Technology, len(c.choices[year]))
	for name, tech := range c.choices[year] {
		out[name] = tech
	}
	return out
}

// All returns every committed choice, keyed by year then plant.
func (c *Choices) All() map[int]map[string]steel.Technology {
	out := make(map[int]map[string]steel.Technology, len(c.choices))
	for year := range c.choices {
		out[year] = c.For(year)
	}
	return out
}

// Records returns the full decision log.
func (c *Choices) Records() []ChoiceRecord { return c.records }

// RecordEntry appends a decision log entry and, when commit is set, also
// commits the switch technology as the year's choice.
func (c *Choices) RecordEntry(year int, name string, current, switchTech steel.Technology, switchType string, commit bool) {
	c.records = append(c.records, ChoiceRecord{
		Year:        year,
		Plant:       name,
		CurrentTech: current,
		SwitchTech:  switchTech,
		SwitchType:  switchType,
	})
	if commit {
		c.SetChoice(year, name, switchTech)
	}
}

// Current resolves the technology a plant runs entering the year: its
// initial technology in the model start year and in its founding year,
// otherwise the prior year's committed choice.
func (c *Choices) Current(year, startYear, yearFounded int, name string, initial steel.Technology) steel.Technology {
	if year == startYear || year == yearFounded {
		return initial
	}
	tech, _ := c.Choice(year-1, name)
	return tech
}
