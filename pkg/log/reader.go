package log

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects events. Zero fields match everything.
type Filter struct {
	SessionID string
	DeviceID  string
	Interface string

	// PathPrefix keeps events whose path starts with it.
	PathPrefix string

	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time

	// InvalidOnly keeps only rejected validation events.
	InvalidOnly bool
}

// Match reports whether ev passes every criterion of f.
func (f Filter) Match(ev Event) bool {
	switch {
	case f.SessionID != "" && ev.SessionID != f.SessionID,
		f.DeviceID != "" && ev.DeviceID != f.DeviceID,
		f.Interface != "" && ev.Interface != f.Interface,
		f.PathPrefix != "" && !strings.HasPrefix(ev.Path, f.PathPrefix),
		f.Direction != nil && ev.Direction != *f.Direction,
		f.Layer != nil && ev.Layer != *f.Layer,
		f.Category != nil && ev.Category != *f.Category,
		f.TimeStart != nil && ev.Timestamp.Before(*f.TimeStart),
		f.TimeEnd != nil && !ev.Timestamp.Before(*f.TimeEnd),
		f.InvalidOnly && (ev.Validation == nil || ev.Validation.Valid):
		return false
	}
	return true
}

// Reader streams events out of a CBOR event log, dropping those its filter
// rejects.
type Reader struct {
	dec    *cbor.Decoder
	src    io.Closer
	filter Filter

	decoded int
	matched int
}

// NewReader reads events from r. Close does not close r.
func NewReader(r io.Reader, filter Filter) *Reader {
	return &Reader{dec: NewDecoder(r), filter: filter}
}

// Open reads the event log at path. Close releases the file.
func Open(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f, filter)
	r.src = f
	return r, nil
}

// Next returns the next matching event, or io.EOF at a clean end of stream.
// A record cut short is an error, not io.EOF.
func (r *Reader) Next() (Event, error) {
	for {
		var ev Event
		err := r.dec.Decode(&ev)
		if errors.Is(err, io.EOF) {
			return Event{}, io.EOF
		}
		if err != nil {
			return Event{}, fmt.Errorf("event %d: %w", r.decoded+1, err)
		}
		r.decoded++
		if r.filter.Match(ev) {
			r.matched++
			return ev, nil
		}
	}
}

// Events iterates the remaining matching events. Iteration stops after the
// first error, which is yielded with a zero Event.
func (r *Reader) Events() iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		for {
			ev, err := r.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(ev, err) || err != nil {
				return
			}
		}
	}
}

// Counts returns how many events were decoded and how many of them matched.
func (r *Reader) Counts() (decoded, matched int) {
	return r.decoded, r.matched
}

// Close releases the file opened by Open.
func (r *Reader) Close() error {
	if r.src == nil {
		return nil
	}
	return r.src.Close()
}

// ReadAll returns the events in the log at path that match filter.
func ReadAll(path string, filter Filter) ([]Event, error) {
	r, err := Open(path, filter)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var events []Event
	for ev, err := range r.Events() {
		if err != nil {
			return events, fmt.Errorf("%s: %w", path, err)
		}
		events = append(events, ev)
	}
	return events, nil
}
