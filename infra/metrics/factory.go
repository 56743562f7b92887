package metrics

import (
	"github.com/steelpath/engine/core/factory"
	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/infra/pubsub"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterSink("nop", func(map[string]any) (coremetrics.Sink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterSink("prometheus", func(map[string]any) (coremetrics.Sink, error) {
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterSink("influx", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})

	_ = coremetrics.RegisterSink("mqtt", func(conf map[string]any) (coremetrics.Sink, error) {
		var c struct {
			pubsub.Config `json:",squash"`
			Topic         string `json:"topic"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		pub, err := pubsub.NewPahoClient(c.Config)
		if err != nil {
			return nil, err
		}
		return NewMQTTSink(pub, c.Topic), nil
	})
}
