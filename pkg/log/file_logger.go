package log

import (
	"io"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends events to a file in CBOR format.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	mu      sync.Mutex
	w       io.WriteCloser
	encoder *cbor.Encoder
	closed  bool

	written int
	dropped int
}

// NewFileLogger creates a FileLogger that appends to the file at path,
// creating it with permissions 0644 if needed.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return NewWriterLogger(f), nil
}

// NewWriterLogger creates a FileLogger on an arbitrary writer. Close closes w.
func NewWriterLogger(w io.WriteCloser) *FileLogger {
	return &FileLogger{
		w:       w,
		encoder: NewEncoder(w),
	}
}

// Log appends an event. Encoding errors are counted, not returned.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		l.dropped++
		return
	}
	l.written++
}

// Stats returns the number of events written and dropped so far.
func (l *FileLogger) Stats() (written, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written, l.dropped
}

// Close closes the underlying writer. It is safe to call Close multiple
// times; later Log calls are ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	return l.w.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
