package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/core/sim"
)

// Config is the full run configuration: the scenario, the input data files,
// the metrics sinks and the output location.
type Config struct {
	Scenario sim.Scenario   `json:"scenario"`
	Data     DataConfig     `json:"data"`
	Metrics  metrics.Config `json:"metrics"`
	Logging  LoggingConfig  `json:"logging"`
	Output   OutputConfig   `json:"output"`
}

// Load reads a yaml or json config file with optional SP_ environment
// overrides (double underscore as the hierarchy separator).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Load(env.Provider("SP_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "sp_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Scenario.SetDefaults()
	cfg.Logging.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Scenario.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// OutputConfig controls where run results are written.
type OutputConfig struct {
	// Dir receives one JSON results file per run.
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "results"
	}
}
