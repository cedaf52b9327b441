package events

// NopSink discards every event; the typical "no-op" implementation
// spec.md §4.7 calls out, used where no observer is configured.
type NopSink struct{}

func (NopSink) OnEvents(batch []Event) {}
