package sim

import (
	"fmt"

	"github.com/steelpath/engine/core/techchoice"
	"github.com/steelpath/engine/core/trade"
	"github.com/steelpath/engine/core/turnover"
)

// Scenario carries every switch and parameter of one simulation run.
type Scenario struct {
	Name      string `json:"name"`
	StartYear int    `json:"start_year"`
	EndYear   int    `json:"end_year"`

	TradeActive            bool `json:"trade_active"`
	TransitionalSwitch     bool `json:"transitional_switch"`
	TechMoratorium         bool `json:"tech_moratorium"`
	EnforceConstraints     bool `json:"enforce_constraints"`
	EnforceCapacityBalance bool `json:"enforce_capacity_balance"`
	RegionalScrap          bool `json:"regional_scrap_constraint"`
	CycleRandomness        bool `json:"investment_cycle_randomness"`

	Seed int64 `json:"seed"`

	Logic   techchoice.SolverLogic `json:"solver_logic"`
	Weights techchoice.WeightSet   `json:"weights"`

	NetZeroYear     int `json:"net_zero_year"`
	NetZeroVariance int `json:"net_zero_variance"`
	CycleDuration   int `json:"cycle_duration"`
	CycleVariance   int `json:"cycle_variance"`
	BufferTop       int `json:"buffer_top"`
	BufferTail      int `json:"buffer_tail"`

	Turnover turnover.Config `json:"turnover"`
	Trade    trade.Config    `json:"trade"`
}

// SetDefaults fills the zero values.
func (s *Scenario) SetDefaults() {
	if s.Name == "" {
		s.Name = "baseline"
	}
	if s.StartYear == 0 {
		s.StartYear = 2020
	}
	if s.EndYear == 0 {
		s.EndYear = 2050
	}
	if s.Logic == "" {
		s.Logic = techchoice.LogicRanked
	}
	if s.Weights.TCO == 0 && s.Weights.Emissions == 0 {
		s.Weights = techchoice.WeightSet{TCO: 0.6, Emissions: 0.4}
	}
	if s.NetZeroYear == 0 {
		s.NetZeroYear = s.EndYear
	}
	if s.NetZeroVariance == 0 {
		s.NetZeroVariance = 3
	}
	if s.CycleDuration == 0 {
		s.CycleDuration = 20
	}
	if s.CycleVariance == 0 {
		s.CycleVariance = 3
	}
	if s.BufferTop == 0 {
		s.BufferTop = 3
	}
	if s.BufferTail == 0 {
		s.BufferTail = 8
	}
	if s.Turnover.EndYear == 0 {
		s.Turnover.EndYear = s.EndYear
	}
	s.Trade.SetDefaults()
}

// Validate rejects unusable scenarios.
func (s *Scenario) Validate() error {
	if s.EndYear <= s.StartYear {
		return fmt.Errorf("end year %d must come after start year %d", s.EndYear, s.StartYear)
	}
	switch s.Logic {
	case techchoice.LogicRanked, techchoice.LogicScaled, techchoice.LogicScaledBins:
	default:
		return fmt.Errorf("unknown solver logic %q", s.Logic)
	}
	if s.CycleDuration <= s.BufferTop+s.BufferTail {
		return fmt.Errorf("cycle duration %d leaves no transitional window between buffers %d and %d",
			s.CycleDuration, s.BufferTop, s.BufferTail)
	}
	return nil
}

// Years lists every simulated year in order.
func (s *Scenario) Years() []int {
	years := make([]int, 0, s.EndYear-s.StartYear+1)
	for y := s.StartYear; y <= s.EndYear; y++ {
		years = append(years, y)
	}
	return years
}
