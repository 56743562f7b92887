package metrics

import (
	"fmt"

	coremetrics "github.com/steelpath/engine/core/metrics"
	"github.com/steelpath/engine/infra/pubsub"
)

// MQTTSink publishes year summaries as JSON to an MQTT topic.
type MQTTSink struct {
	pub   pubsub.Publisher
	topic string
}

// NewMQTTSink wraps a connected publisher. The topic is the prefix; the
// scenario name and year are appended per record.
func NewMQTTSink(pub pubsub.Publisher, topic string) *MQTTSink {
	if topic == "" {
		topic = "steelpath/runs"
	}
	return &MQTTSink{pub: pub, topic: topic}
}

// RecordYear publishes the year summary.
func (s *MQTTSink) RecordYear(rec coremetrics.YearRecord) error {
	return s.pub.Publish(fmt.Sprintf("%s/%s/%d", s.topic, rec.Scenario, rec.Year), rec)
}

// Close disconnects the underlying publisher.
func (s *MQTTSink) Close() {
	s.pub.Disconnect()
}
