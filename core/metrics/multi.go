package metrics

// MultiSink fans out records to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the records to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(recs []SolveRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordFallback forwards fallback events to sinks that record them.
func (m *MultiSink) RecordFallback(ev FallbackEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FallbackRecorder); ok {
			if err := rec.RecordFallback(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordPlan forwards run summaries to sinks that record them.
func (m *MultiSink) RecordPlan(sum PlanSummary) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(PlanRecorder); ok {
			if err := rec.RecordPlan(sum); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases every sink that holds a connection.
func (m *MultiSink) Close() {
	for _, s := range m.Sinks {
		Close(s)
	}
}

// Close releases s when it holds a connection.
func Close(s MetricsSink) {
	if c, ok := s.(interface{ Close() }); ok {
		c.Close()
	}
}
