package metrics

// Package metrics defines interfaces and implementations for collecting run
// metrics. Sinks like PromSink and InfluxSink record per-year summaries,
// technology switches and roster changes, and can be combined with
// NewMultiSink. The factory helpers return a MultiSink automatically when
// multiple sinks are configured. The event collector in infra/metrics feeds
// sinks from the internal event bus.
