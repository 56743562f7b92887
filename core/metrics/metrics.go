package metrics

import (
	"time"

	"github.com/steelpath/engine/core/steel"
)

// YearRecord summarizes one simulated year for observability purposes.
type YearRecord struct {
	Scenario     string
	Year         int
	Demand       float64
	Production   float64
	Capacity     float64
	TradeBalance float64
	ActivePlants int
	Switches     int
	Opened       int
	Closed       int
	Time         time.Time
}

// Sink records per-year run summaries.
type Sink interface {
	RecordYear(rec YearRecord) error
}

// SwitchRecord captures one committed technology decision.
type SwitchRecord struct {
	Scenario   string
	Year       int
	Plant      string
	Region     string
	From       steel.Technology
	To         steel.Technology
	SwitchType string
	Time       time.Time
}

// SwitchRecorder records technology decisions.
type SwitchRecorder interface {
	RecordSwitch(rec SwitchRecord) error
}

// PlantChangeRecord captures a plant opening or closing.
type PlantChangeRecord struct {
	Scenario string
	Year     int
	Plant    string
	Region   string
	Tech     steel.Technology
	Capacity float64
	Closed   bool
	Time     time.Time
}

// PlantChangeRecorder records roster changes.
type PlantChangeRecorder interface {
	RecordPlantChange(rec PlantChangeRecord) error
}

// DeferralRecord captures an investment pushed out by the turnover limit.
type DeferralRecord struct {
	Scenario string
	Year     int
	Plant    string
	Capacity float64
	Time     time.Time
}

// DeferralRecorder records deferred investment years.
type DeferralRecorder interface {
	RecordDeferral(rec DeferralRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordYear(YearRecord) error               { return nil }
func (NopSink) RecordSwitch(SwitchRecord) error           { return nil }
func (NopSink) RecordPlantChange(PlantChangeRecord) error { return nil }
func (NopSink) RecordDeferral(DeferralRecord) error       { return nil }
