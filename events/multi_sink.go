package events

// MultiSink fans a batch out to every wrapped sink in order, the "combine
// logging and metrics" composition spec.md §4.7 anticipates.
type MultiSink struct {
	sinks []Sink
}

func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) OnEvents(batch []Event) {
	for _, s := range m.sinks {
		s.OnEvents(batch)
	}
}
