package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/infra/logger"
)

// InfluxSink writes run records to an InfluxDB instance using the official
// client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.Sink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordYear writes the year summary as a point.
func (s *InfluxSink) RecordYear(rec coremetrics.YearRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("simulation_year").
		AddTag("scenario", rec.Scenario).
		AddTag("year", strconv.Itoa(rec.Year)).
		AddField("demand_mt", round3(rec.Demand)).
		AddField("production_mt", round3(rec.Production)).
		AddField("capacity_mt", round3(rec.Capacity)).
		AddField("trade_balance_mt", round3(rec.TradeBalance)).
		AddField("active_plants", rec.ActivePlants).
		AddField("switches", rec.Switches).
		AddField("opened", rec.Opened).
		AddField("closed", rec.Closed).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordSwitch writes a committed technology decision.
func (s *InfluxSink) RecordSwitch(rec coremetrics.SwitchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("technology_switch").
		AddTag("scenario", rec.Scenario).
		AddTag("year", strconv.Itoa(rec.Year)).
		AddTag("plant", rec.Plant).
		AddTag("region", rec.Region).
		AddTag("switch_type", rec.SwitchType).
		AddField("from", string(rec.From)).
		AddField("to", string(rec.To)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordPlantChange writes a plant opening or closure.
func (s *InfluxSink) RecordPlantChange(rec coremetrics.PlantChangeRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	change := "opened"
	if rec.Closed {
		change = "closed"
	}
	p := write.NewPointWithMeasurement("plant_change").
		AddTag("scenario", rec.Scenario).
		AddTag("year", strconv.Itoa(rec.Year)).
		AddTag("plant", rec.Plant).
		AddTag("region", rec.Region).
		AddTag("change", change).
		AddField("technology", string(rec.Tech)).
		AddField("capacity_mt", round3(rec.Capacity)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordDeferral writes a deferred investment year.
func (s *InfluxSink) RecordDeferral(rec coremetrics.DeferralRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("deferred_investment").
		AddTag("scenario", rec.Scenario).
		AddTag("year", strconv.Itoa(rec.Year)).
		AddTag("plant", rec.Plant).
		AddField("capacity_mt", round3(rec.Capacity)).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
