package log

// Logger receives data-contract events. Log is called on the validation
// path, from any goroutine, and must not block.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards events. The zero value is ready to use.
type NoopLogger struct{}

// Log does nothing.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or a NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
