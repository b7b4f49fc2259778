package log

// MultiLogger delivers each event to every logger in order.
type MultiLogger []Logger

// NewMultiLogger combines loggers. Nil and NoopLogger entries are dropped
// and nested MultiLoggers are flattened.
func NewMultiLogger(loggers ...Logger) MultiLogger {
	var m MultiLogger
	for _, l := range loggers {
		switch l := l.(type) {
		case nil, NoopLogger:
		case MultiLogger:
			m = append(m, l...)
		default:
			m = append(m, l)
		}
	}
	return m
}

// Log implements Logger.
func (m MultiLogger) Log(event Event) {
	for _, l := range m {
		l.Log(event)
	}
}
