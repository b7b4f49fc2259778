package log

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Timestamps are RFC 3339 strings with nanoseconds; map keys are sorted so
// equal events encode to equal bytes.
var (
	eventEnc = mustEncMode(cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	})
	eventDec = mustDecMode(cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyQuiet,
		IndefLength: cbor.IndefLengthAllowed,
	})
)

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	m, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("log: event encoder options: %v", err))
	}
	return m
}

func mustDecMode(opts cbor.DecOptions) cbor.DecMode {
	m, err := opts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("log: event decoder options: %v", err))
	}
	return m
}

// EncodeEvent returns the CBOR record for event.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEnc.Marshal(event)
}

// DecodeEvent decodes exactly one CBOR record. Trailing bytes are an error.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	rest, err := eventDec.UnmarshalFirst(data, &event)
	if err != nil {
		return Event{}, fmt.Errorf("decode event: %w", err)
	}
	if len(rest) > 0 {
		return Event{}, fmt.Errorf("decode event: %d trailing bytes", len(rest))
	}
	return event, nil
}

// NewEncoder returns a stream encoder writing event records to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return eventEnc.NewEncoder(w)
}

// NewDecoder returns a stream decoder reading event records from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return eventDec.NewDecoder(r)
}
