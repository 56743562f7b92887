package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steelpath/engine/core/events"
	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/core/steel"
	"github.com/steelpath/engine/internal/eventbus"
)

type recordingSink struct {
	years     []coremetrics.YearRecord
	switches  []coremetrics.SwitchRecord
	changes   []coremetrics.PlantChangeRecord
	deferrals []coremetrics.DeferralRecord
}

func (r *recordingSink) RecordYear(rec coremetrics.YearRecord) error {
	r.years = append(r.years, rec)
	return nil
}
func (r *recordingSink) RecordSwitch(rec coremetrics.SwitchRecord) error {
	r.switches = append(r.switches, rec)
	return nil
}
func (r *recordingSink) RecordPlantChange(rec coremetrics.PlantChangeRecord) error {
	r.changes = append(r.changes, rec)
	return nil
}
func (r *recordingSink) RecordDeferral(rec coremetrics.DeferralRecord) error {
	r.deferrals = append(r.deferrals, rec)
	return nil
}

func TestRecordMapsEvents(t *testing.T) {
	sink := &recordingSink{}
	record(sink, "baseline", events.YearFinalizedEvent{Year: 2030, Demand: 1800, Closed: 2})
	record(sink, "baseline", events.TechnologyChosenEvent{Year: 2030, Plant: "a", From: steel.AvgBFBOF, To: steel.EAF})
	record(sink, "baseline", events.PlantOpenedEvent{Year: 2030, Plant: "b"})
	record(sink, "baseline", events.PlantClosedEvent{Year: 2030, Plant: "c"})
	record(sink, "baseline", events.SwitchDeferredEvent{Year: 2030, Plant: "d", Capacity: 2.5})

	require.Len(t, sink.years, 1)
	assert.Equal(t, "baseline", sink.years[0].Scenario)
	assert.Equal(t, 2, sink.years[0].Closed)
	require.Len(t, sink.switches, 1)
	assert.Equal(t, steel.EAF, sink.switches[0].To)
	require.Len(t, sink.changes, 2)
	assert.False(t, sink.changes[0].Closed)
	assert.True(t, sink.changes[1].Closed)
	require.Len(t, sink.deferrals, 1)
}

func TestEventCollectorDrainsBus(t *testing.T) {
	bus := eventbus.New()
	sink := &recordingSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartEventCollector(ctx, bus, sink, "baseline")

	bus.Publish(events.YearFinalizedEvent{Year: 2030})
	assert.Eventually(t, func() bool { return len(sink.years) == 1 }, time.Second, 5*time.Millisecond)
}

func TestPromSinkRecordsYearGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, s.RecordYear(coremetrics.YearRecord{
		Scenario: "baseline", Year: 2030, Demand: 1800, Production: 1795, Capacity: 2100, ActivePlants: 900,
	}))
	ps := s.(*PromSink)
	assert.InDelta(t, 1800.0, testutil.ToFloat64(ps.demand.WithLabelValues("baseline")), 1e-9)
	assert.InDelta(t, 900.0, testutil.ToFloat64(ps.activePlants.WithLabelValues("baseline")), 1e-9)
}

func TestPromSinkCountsChanges(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	ps := s.(*PromSink)

	require.NoError(t, ps.RecordSwitch(coremetrics.SwitchRecord{Scenario: "baseline", From: steel.AvgBFBOF, To: steel.EAF, SwitchType: "main cycle"}))
	require.NoError(t, ps.RecordSwitch(coremetrics.SwitchRecord{Scenario: "baseline", From: steel.EAF, To: steel.EAF, SwitchType: "main cycle"}))
	assert.InDelta(t, 1.0, testutil.ToFloat64(ps.switches.WithLabelValues("baseline", "main cycle")), 1e-9)

	require.NoError(t, ps.RecordPlantChange(coremetrics.PlantChangeRecord{Scenario: "baseline", Closed: true}))
	assert.InDelta(t, 1.0, testutil.ToFloat64(ps.plantChanges.WithLabelValues("baseline", "closed")), 1e-9)
}

func TestPromSinkDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	_, err = NewPromSinkWithRegistry(reg)
	assert.NoError(t, err)
}

func TestMQTTSinkPublishesYearRecords(t *testing.T) {
	pub := &fakePublisher{}
	s := NewMQTTSink(pub, "")
	require.NoError(t, s.RecordYear(coremetrics.YearRecord{Scenario: "baseline", Year: 2030}))
	require.Len(t, pub.topics, 1)
	assert.Equal(t, "steelpath/runs/baseline/2030", pub.topics[0])
}

type fakePublisher struct {
	topics []string
}

func (f *fakePublisher) Publish(topic string, _ any) error {
	f.topics = append(f.topics, topic)
	return nil
}
func (f *fakePublisher) Disconnect() {}
