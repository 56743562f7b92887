package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/steelpath/engine/config"
	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/core/sim"
	"github.com/steelpath/engine/infra/logger"
	"github.com/steelpath/engine/infra/metrics"
	"github.com/steelpath/engine/internal/eventbus"
	"github.com/steelpath/engine/pkg/export"
)

// Service wires the configuration, the metrics sinks and the event bus
// around one simulation run.
type Service struct {
	cfg  *config.Config
	sim  *sim.Simulation
	bus  *eventbus.Bus
	sink coremetrics.Sink
	log  logger.Logger
}

// New creates a Service from the configuration: it loads the input data,
// builds the sinks and instantiates the simulation.
func New(cfg *config.Config) (*Service, error) {
	log := logger.New("service")

	in, err := LoadInputs(cfg.Data)
	if err != nil {
		return nil, fmt.Errorf("load inputs: %w", err)
	}
	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	bus := eventbus.New()
	s, err := sim.New(cfg.Scenario, in, bus, logger.New("sim"))
	if err != nil {
		return nil, fmt.Errorf("simulation: %w", err)
	}
	return &Service{cfg: cfg, sim: s, bus: bus, sink: sink, log: log}, nil
}

// Run executes the simulation and writes the results file. The collector
// keeps draining events until the run and the bus are done.
func (s *Service) Run(ctx context.Context) error {
	collectorCtx, stopCollector := context.WithCancel(context.Background())
	defer stopCollector()
	metrics.StartEventCollector(collectorCtx, s.bus, s.sink, s.cfg.Scenario.Name)
	if addr := s.cfg.Metrics.Listen; addr != "" {
		go func() {
			if err := metrics.StartPromServer(collectorCtx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	res, err := s.sim.Run(ctx)
	if err != nil {
		return err
	}
	s.bus.Close()

	path, err := s.writeResults(res)
	if err != nil {
		return err
	}
	s.log.Infof("run %q finished in %s: results written to %s",
		res.Meta.Scenario, res.Meta.Duration, path)
	return nil
}

func (s *Service) writeResults(res *sim.Results) (string, error) {
	if err := os.MkdirAll(s.cfg.Output.Dir, 0o755); err != nil {
		return "", fmt.Errorf("output dir: %w", err)
	}
	path := filepath.Join(s.cfg.Output.Dir,
		fmt.Sprintf("%s_%s.json", res.Meta.Scenario, res.Meta.StartedAt.Format("20060102T150405")))
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	if err := s.writeSummary(res); err != nil {
		return "", err
	}
	return path, nil
}

func (s *Service) writeSummary(res *sim.Results) error {
	path := filepath.Join(s.cfg.Output.Dir,
		fmt.Sprintf("%s_%s_summary.csv", res.Meta.Scenario, res.Meta.StartedAt.Format("20060102T150405")))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("summary file: %w", err)
	}
	defer f.Close()
	if err := export.WriteCSV(f, export.RowsFromResults(res)); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}
