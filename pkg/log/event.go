package log

import (
	"time"
)

// Event is a device data-contract event: a payload checked against an
// interface, a connection or introspection state change, or an error.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the connection session (UUID).
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates payload flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceID is the device identifier, if known.
	DeviceID string `cbor:"6,keyasint,omitempty"`

	// Interface is the interface name the event refers to.
	Interface string `cbor:"7,keyasint,omitempty"`

	// Path is the concrete path the event refers to.
	Path string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Validation  *ValidationEvent  `cbor:"10,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"11,keyasint,omitempty"`
	Error       *ErrorEventData   `cbor:"12,keyasint,omitempty"`
}

// Direction indicates the direction of payload flow.
type Direction uint8

const (
	// DirectionOut indicates a device-to-server payload.
	DirectionOut Direction = 0
	// DirectionIn indicates a server-to-device payload.
	DirectionIn Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "OUT"
	case DirectionIn:
		return "IN"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which component captured the event.
type Layer uint8

const (
	// LayerSchema is the interface registry and validation layer.
	LayerSchema Layer = 0
	// LayerConnection is the reconnect manager.
	LayerConnection Layer = 1
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerSchema:
		return "SCHEMA"
	case LayerConnection:
		return "CONNECTION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryValidation indicates a payload accepted or rejected by an interface.
	CategoryValidation Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "VALIDATION"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ValidationEvent captures the outcome of validating one payload.
type ValidationEvent struct {
	// Valid is true when the payload was accepted.
	Valid bool `cbor:"1,keyasint"`

	// Kind names the rejection class (empty when valid).
	Kind string `cbor:"2,keyasint,omitempty"`

	// Cause is the human-readable rejection reason.
	Cause string `cbor:"3,keyasint,omitempty"`

	// Unset is true for property unset requests.
	Unset bool `cbor:"4,keyasint,omitempty"`
}

// StateChangeEvent captures connection and introspection lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`

	// Attempt is the reconnection attempt number, for retry events.
	Attempt int `cbor:"5,keyasint,omitempty"`

	// Delay is the backoff delay before the attempt, for retry events.
	Delay time.Duration `cbor:"6,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityIntrospection indicates an interface was added or removed.
	StateEntityIntrospection StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityIntrospection:
		return "INTROSPECTION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}
