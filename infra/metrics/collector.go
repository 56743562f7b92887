package metrics

import (
	"context"
	"time"

	"github.com/steelpath/engine/core/events"
	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// simulation events. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink, scenario string) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				record(sink, scenario, ev)
			}
		}
	}()
}

func record(sink coremetrics.Sink, scenario string, ev eventbus.Event) {
	now := time.Now()
	switch e := ev.(type) {
	case events.YearFinalizedEvent:
		_ = sink.RecordYear(coremetrics.YearRecord{
			Scenario:     scenario,
			Year:         e.Year,
			Demand:       e.Demand,
			Production:   e.Production,
			Capacity:     e.Capacity,
			TradeBalance: e.TradeBalance,
			ActivePlants: e.ActivePlants,
			Switches:     e.Switches,
			Opened:       e.Opened,
			Closed:       e.Closed,
			Time:         now,
		})
	case events.TechnologyChosenEvent:
		if r, ok := sink.(coremetrics.SwitchRecorder); ok {
			_ = r.RecordSwitch(coremetrics.SwitchRecord{
				Scenario:   scenario,
				Year:       e.Year,
				Plant:      e.Plant,
				Region:     e.Region,
				From:       e.From,
				To:         e.To,
				SwitchType: string(e.SwitchType),
				Time:       now,
			})
		}
	case events.PlantOpenedEvent:
		if r, ok := sink.(coremetrics.PlantChangeRecorder); ok {
			_ = r.RecordPlantChange(coremetrics.PlantChangeRecord{
				Scenario: scenario,
				Year:     e.Year,
				Plant:    e.Plant,
				Region:   e.Region,
				Tech:     e.Tech,
				Capacity: e.Capacity,
				Time:     now,
			})
		}
	case events.PlantClosedEvent:
		if r, ok := sink.(coremetrics.PlantChangeRecorder); ok {
			_ = r.RecordPlantChange(coremetrics.PlantChangeRecord{
				Scenario: scenario,
				Year:     e.Year,
				Plant:    e.Plant,
				Region:   e.Region,
				Tech:     e.Tech,
				Capacity: e.Capacity,
				Closed:   true,
				Time:     now,
			})
		}
	case events.SwitchDeferredEvent:
		if r, ok := sink.(coremetrics.DeferralRecorder); ok {
			_ = r.RecordDeferral(coremetrics.DeferralRecord{
				Scenario: scenario,
				Year:     e.Year,
				Plant:    e.Plant,
				Capacity: e.Capacity,
				Time:     now,
			})
		}
	}
}
