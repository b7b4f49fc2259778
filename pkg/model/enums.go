package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// InterfaceType distinguishes continuous streams from property snapshots.
type InterfaceType uint8

const (
	// InterfaceTypeDatastream is a stream of timestamped values.
	InterfaceTypeDatastream InterfaceType = iota + 1

	// InterfaceTypeProperties is a set of stateful values.
	InterfaceTypeProperties
)

var interfaceTypeNames = map[InterfaceType]string{
	InterfaceTypeDatastream: "datastream",
	InterfaceTypeProperties: "properties",
}

// String returns the definition keyword for the type.
func (t InterfaceType) String() string {
	if s, ok := interfaceTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t InterfaceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *InterfaceType) UnmarshalText(text []byte) error {
	return parseKeyword(string(text), interfaceTypeNames, t, ErrInvalidType)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *InterfaceType) UnmarshalYAML(node *yaml.Node) error {
	return t.UnmarshalText([]byte(node.Value))
}

// Ownership tells which side is authoritative for an interface's data.
type Ownership uint8

const (
	// OwnershipDevice means the device publishes values. This is the default.
	OwnershipDevice Ownership = iota

	// OwnershipServer means the remote peer publishes values.
	OwnershipServer
)

var ownershipNames = map[Ownership]string{
	OwnershipDevice: "device",
	OwnershipServer: "server",
}

// String returns the definition keyword for the ownership.
func (o Ownership) String() string {
	if s, ok := ownershipNames[o]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (o Ownership) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// An empty value selects the device default.
func (o *Ownership) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = OwnershipDevice
		return nil
	}
	return parseKeyword(string(text), ownershipNames, o, ErrInvalidDefinition)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (o *Ownership) UnmarshalYAML(node *yaml.Node) error {
	return o.UnmarshalText([]byte(node.Value))
}

// Aggregation selects how values of an interface are grouped on delivery.
type Aggregation uint8

const (
	// AggregationIndividual delivers each endpoint on its own. This is the default.
	AggregationIndividual Aggregation = iota

	// AggregationObject delivers all members of a parent path as one object.
	AggregationObject
)

var aggregationNames = map[Aggregation]string{
	AggregationIndividual: "individual",
	AggregationObject:     "object",
}

// String returns the definition keyword for the aggregation.
func (a Aggregation) String() string {
	if s, ok := aggregationNames[a]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (a Aggregation) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// An empty value selects individual aggregation.
func (a *Aggregation) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = AggregationIndividual
		return nil
	}
	return parseKeyword(string(text), aggregationNames, a, ErrInvalidAggregation)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Aggregation) UnmarshalYAML(node *yaml.Node) error {
	return a.UnmarshalText([]byte(node.Value))
}

// Reliability is the delivery class requested for a value.
type Reliability uint8

const (
	// ReliabilityUnreliable is delivered at most once.
	ReliabilityUnreliable Reliability = 0

	// ReliabilityGuaranteed is delivered at least once.
	ReliabilityGuaranteed Reliability = 1

	// ReliabilityUnique is delivered exactly once.
	ReliabilityUnique Reliability = 2
)

var reliabilityNames = map[Reliability]string{
	ReliabilityUnreliable: "unreliable",
	ReliabilityGuaranteed: "guaranteed",
	ReliabilityUnique:     "unique",
}

// String returns the definition keyword for the reliability.
func (r Reliability) String() string {
	if s, ok := reliabilityNames[r]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Reliability) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts either the keyword or the numeric class (0, 1, 2).
func (r *Reliability) UnmarshalText(text []byte) error {
	if n, err := strconv.Atoi(string(text)); err == nil {
		if n < 0 || n > int(ReliabilityUnique) {
			return fmt.Errorf("%w: reliability %d", ErrInvalidDefinition, n)
		}
		*r = Reliability(n)
		return nil
	}
	return parseKeyword(string(text), reliabilityNames, r, ErrInvalidDefinition)
}

// UnmarshalJSON accepts a JSON string or number.
func (r *Reliability) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return r.UnmarshalText([]byte(s))
	}
	return r.UnmarshalText(data)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Reliability) UnmarshalYAML(node *yaml.Node) error {
	return r.UnmarshalText([]byte(node.Value))
}

// Retention tells what happens to a value that cannot be delivered immediately.
type Retention uint8

const (
	// RetentionDiscard drops undeliverable values. This is the default.
	RetentionDiscard Retention = iota

	// RetentionVolatile keeps values in memory until delivered or expired.
	RetentionVolatile

	// RetentionStored keeps values on persistent storage until delivered or expired.
	RetentionStored
)

var retentionNames = map[Retention]string{
	RetentionDiscard:  "discard",
	RetentionVolatile: "volatile",
	RetentionStored:   "stored",
}

// String returns the definition keyword for the retention.
func (r Retention) String() string {
	if s, ok := retentionNames[r]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Retention) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Retention) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*r = RetentionDiscard
		return nil
	}
	return parseKeyword(string(text), retentionNames, r, ErrInvalidDefinition)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Retention) UnmarshalYAML(node *yaml.Node) error {
	return r.UnmarshalText([]byte(node.Value))
}

func parseKeyword[T comparable](s string, names map[T]string, out *T, kind error) error {
	for v, name := range names {
		if name == s {
			*out = v
			return nil
		}
	}
	return fmt.Errorf("%w: unknown value %q", kind, s)
}
