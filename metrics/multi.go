package metrics

// MultiSink fans observations out to several sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink creates a sink that forwards to all given sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordAssignment(waitMinutes, pickupKm float64) {
	for _, s := range m.sinks {
		s.RecordAssignment(waitMinutes, pickupKm)
	}
}

func (m *MultiSink) RecordCompletion() {
	for _, s := range m.sinks {
		s.RecordCompletion()
	}
}

func (m *MultiSink) RecordCancellation(waitMinutes float64) {
	for _, s := range m.sinks {
		s.RecordCancellation(waitMinutes)
	}
}

func (m *MultiSink) RecordInvalidAction() {
	for _, s := range m.sinks {
		s.RecordInvalidAction()
	}
}

func (m *MultiSink) RecordStepReward(reward float64) {
	for _, s := range m.sinks {
		s.RecordStepReward(reward)
	}
}

func (m *MultiSink) RecordEpisode(completionRate, episodeReward float64) {
	for _, s := range m.sinks {
		s.RecordEpisode(completionRate, episodeReward)
	}
}
