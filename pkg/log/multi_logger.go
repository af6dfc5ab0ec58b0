package log

// MultiLogger fans one event stream out to several sinks, for example
// a FileLogger for later analysis next to a SlogAdapter for the
// console.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger creates a logger that forwards every event to each of
// the given sinks, in order.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log forwards the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		s.Log(event)
	}
}

var _ Logger = (*MultiLogger)(nil)
