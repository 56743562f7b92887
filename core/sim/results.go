package sim

import (
	"time"

	"github.com/steelpath/engine/core/cycle"
	"github.com/steelpath/engine/core/ledger"
	"github.com/steelpath/engine/core/plant"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/core/techchoice"
	"github.com/steelpath/engine/core/trade"
)

// RunMeta describes one completed run.
type RunMeta struct {
	Scenario  string        `json:"scenario"`
	Seed      int64         `json:"seed"`
	StartYear int           `json:"start_year"`
	EndYear   int           `json:"end_year"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Results is everything a run produces.
type Results struct {
	Meta RunMeta `json:"meta"`

	// Choices is the committed technology per year and plant.
	Choices       map[int]map[string]steel.Technology `json:"choices"`
	ChoiceRecords []ChoiceRecord                      `json:"choice_records"`

	RankingRecords []techchoice.RankingRecord `json:"ranking_records"`
	CheckRecords   []techchoice.CheckRecord   `json:"check_records"`

	// Plants is the final roster snapshot, opened and closed records
	// included; ActiveCheck maps plant -> year -> operating.
	Plants      []plant.Plant           `json:"plants"`
	ActiveCheck map[string]map[int]bool `json:"active_check"`

	RegionalCapacity map[int]map[string]float64 `json:"regional_capacity"`
	Utilization      map[int]map[string]float64 `json:"utilization"`

	TradeResults map[int]map[string]*trade.Result     `json:"trade_results"`
	Assessments  map[int]map[string]*trade.Assessment `json:"assessments,omitempty"`

	ConstraintSummary []ledger.Summary `json:"constraint_summary"`

	CycleAudit   []cycle.Rebase `json:"cycle_audit"`
	CycleLengths map[string]int `json:"cycle_lengths"`
}
