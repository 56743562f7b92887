package metrics

import (
	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records run progress in Prometheus metrics.
type PromSink struct {
	demand       *prometheus.GaugeVec
	production   *prometheus.GaugeVec
	capacity     *prometheus.GaugeVec
	tradeBalance *prometheus.GaugeVec
	activePlants *prometheus.GaugeVec
	switches     *prometheus.CounterVec
	plantChanges *prometheus.CounterVec
	deferrals    prometheus.Counter
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		demand: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steelpath_demand_mt",
			Help: "World crude steel demand for the latest simulated year",
		}, []string{"scenario"}),
		production: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steelpath_production_mt",
			Help: "World production for the latest simulated year",
		}, []string{"scenario"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steelpath_capacity_mt",
			Help: "World capacity for the latest simulated year",
		}, []string{"scenario"}),
		tradeBalance: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steelpath_trade_balance_mt",
			Help: "Global trade account balance for the latest simulated year",
		}, []string{"scenario"}),
		activePlants: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "steelpath_active_plants",
			Help: "Number of operating plants in the latest simulated year",
		}, []string{"scenario"}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steelpath_technology_switches_total",
			Help: "Total committed technology switches",
		}, []string{"scenario", "switch_type"}),
		plantChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "steelpath_plant_changes_total",
			Help: "Total plants opened and closed",
		}, []string{"scenario", "change"}),
		deferrals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "steelpath_deferred_investments_total",
			Help: "Investment years deferred by the capacity turnover limit",
		}),
	}

	collectors := []prometheus.Collector{
		s.demand, s.production, s.capacity, s.tradeBalance,
		s.activePlants, s.switches, s.plantChanges, s.deferrals,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			collectors[i] = are.ExistingCollector
		}
	}
	s.demand = collectors[0].(*prometheus.GaugeVec)
	s.production = collectors[1].(*prometheus.GaugeVec)
	s.capacity = collectors[2].(*prometheus.GaugeVec)
	s.tradeBalance = collectors[3].(*prometheus.GaugeVec)
	s.activePlants = collectors[4].(*prometheus.GaugeVec)
	s.switches = collectors[5].(*prometheus.CounterVec)
	s.plantChanges = collectors[6].(*prometheus.CounterVec)
	s.deferrals = collectors[7].(prometheus.Counter)
	return s, nil
}

// RecordYear sets the per-year gauges.
func (s *PromSink) RecordYear(rec coremetrics.YearRecord) error {
	s.demand.WithLabelValues(rec.Scenario).Set(rec.Demand)
	s.production.WithLabelValues(rec.Scenario).Set(rec.Production)
	s.capacity.WithLabelValues(rec.Scenario).Set(rec.Capacity)
	s.tradeBalance.WithLabelValues(rec.Scenario).Set(rec.TradeBalance)
	s.activePlants.WithLabelValues(rec.Scenario).Set(float64(rec.ActivePlants))
	return nil
}

// RecordSwitch counts a committed technology decision.
func (s *PromSink) RecordSwitch(rec coremetrics.SwitchRecord) error {
	if rec.From != rec.To {
		s.switches.WithLabelValues(rec.Scenario, rec.SwitchType).Inc()
	}
	return nil
}

// RecordPlantChange counts openings and closures.
func (s *PromSink) RecordPlantChange(rec coremetrics.PlantChangeRecord) error {
	change := "opened"
	if rec.Closed {
		change = "closed"
	}
	s.plantChanges.WithLabelValues(rec.Scenario, change).Inc()
	return nil
}

// RecordDeferral counts a deferred investment year.
func (s *PromSink) RecordDeferral(coremetrics.DeferralRecord) error {
	s.deferrals.Inc()
	return nil
}
