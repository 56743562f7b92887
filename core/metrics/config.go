package metrics

import "github.com/steelpath/engine/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// Listen, when set, exposes the Prometheus registry over HTTP on the
	// given address, e.g. ":9090".
	Listen string `json:"listen"`
}
