package metrics

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordYear forwards the record to all sinks, returning the first error
// encountered.
func (m *MultiSink) RecordYear(rec YearRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordYear(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordSwitch forwards technology decisions to the sinks that support them.
func (m *MultiSink) RecordSwitch(rec SwitchRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(SwitchRecorder); ok {
			if err := r.RecordSwitch(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPlantChange forwards roster changes to the sinks that support them.
func (m *MultiSink) RecordPlantChange(rec PlantChangeRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(PlantChangeRecorder); ok {
			if err := r.RecordPlantChange(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordDeferral forwards deferral records to the sinks that support them.
func (m *MultiSink) RecordDeferral(rec DeferralRecord) error {
	for _, s := range m.Sinks {
		if r, ok := s.(DeferralRecorder); ok {
			if err := r.RecordDeferral(rec); err != nil {
				return err
			}
		}
	}
	return nil
}
