package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestMappingValidatePath(t *testing.T) {
	iface := mustInterface(t, sensorValuesDef())
	m := iface.Mappings()[0]

	tests := []struct {
		path  string
		match bool
	}{
		{"/abc/value", true},
		{"/1/value", true},
		{"/abc/count", false},
		{"/abc/value/x", false},
		{"/value", false},
		{"abc/value", false},
		{"/abc//value", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := m.ValidatePath(tt.path)
			if tt.match && err != nil {
				t.Errorf("ValidatePath(%q) error = %v, want nil", tt.path, err)
			}
			if !tt.match && !errors.Is(err, ErrPathMismatch) {
				t.Errorf("ValidatePath(%q) error = %v, want ErrPathMismatch", tt.path, err)
			}
		})
	}

	if !m.IsParametric() {
		t.Error("IsParametric() = false, want true")
	}
}

func TestMappingValidatePayload(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		typ   MappingType
		value any
		want  error
	}{
		{"DoubleFloat", MappingTypeDouble, 21.5, nil},
		{"DoubleFromInt", MappingTypeDouble, 3, nil},
		{"DoubleNaN", MappingTypeDouble, math.NaN(), ErrOutOfRange},
		{"DoubleInf", MappingTypeDouble, math.Inf(1), ErrOutOfRange},
		{"DoubleString", MappingTypeDouble, "1.0", ErrTypeMismatch},
		{"IntegerInRange", MappingTypeInteger, int32(math.MaxInt32), nil},
		{"IntegerTooLarge", MappingTypeInteger, int64(math.MaxInt32) + 1, ErrOutOfRange},
		{"IntegerTooSmall", MappingTypeInteger, int64(math.MinInt32) - 1, ErrOutOfRange},
		{"IntegerFromFloat", MappingTypeInteger, 1.5, ErrTypeMismatch},
		{"LongInteger", MappingTypeLongInteger, int64(math.MaxInt64), nil},
		{"LongIntegerOverflow", MappingTypeLongInteger, uint64(math.MaxUint64), ErrOutOfRange},
		{"Boolean", MappingTypeBoolean, true, nil},
		{"BooleanFromInt", MappingTypeBoolean, 1, ErrTypeMismatch},
		{"String", MappingTypeString, "hello", nil},
		{"StringInvalidUTF8", MappingTypeString, string([]byte{0xff, 0xfe}), ErrOutOfRange},
		{"BinaryBlob", MappingTypeBinaryBlob, []byte{1, 2, 3}, nil},
		{"BinaryBlobString", MappingTypeBinaryBlob, "abc", ErrTypeMismatch},
		{"DateTime", MappingTypeDateTime, now, nil},
		{"DateTimePointer", MappingTypeDateTime, &now, nil},
		{"DateTimeString", MappingTypeDateTime, "2024-01-01T00:00:00Z", ErrTypeMismatch},
		{"Nil", MappingTypeString, nil, ErrTypeMismatch},
		{"DoubleArray", MappingTypeDoubleArray, []float64{1, 2.5}, nil},
		{"DoubleArrayMixed", MappingTypeDoubleArray, []any{1.0, "x"}, ErrTypeMismatch},
		{"IntegerArrayFromBytes", MappingTypeIntegerArray, []byte{1, 2}, ErrTypeMismatch},
		{"IntegerArrayOverflow", MappingTypeIntegerArray, []int64{1, 1 << 40}, ErrOutOfRange},
		{"BinaryBlobArray", MappingTypeBinaryBlobArray, [][]byte{{1}, {2}}, nil},
		{"StringArrayScalar", MappingTypeStringArray, "abc", ErrTypeMismatch},
		{"EmptyArray", MappingTypeBooleanArray, []bool{}, nil},
		{"DateTimeArray", MappingTypeDateTimeArray, []time.Time{now}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface := mustInterface(t, &Definition{
				Name:         "org.example.Types",
				VersionMajor: 1,
				Type:         InterfaceTypeDatastream,
				Mappings:     []MappingDefinition{{Endpoint: "/v", Type: tt.typ}},
			})
			m := iface.Mappings()[0]

			err := m.ValidatePayload(tt.value, time.Time{})
			if tt.want == nil {
				if err != nil {
					t.Errorf("ValidatePayload(%v) error = %v, want nil", tt.value, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidatePayload(%v) error = %v, want %v", tt.value, err, tt.want)
			}
		})
	}
}

func TestMappingExplicitTimestamp(t *testing.T) {
	iface := mustInterface(t, sensorValuesDef())
	m := iface.Mapping("/s1/value")

	if !m.ExplicitTimestamp() {
		t.Fatal("ExplicitTimestamp() = false, want true")
	}
	if err := m.ValidatePayload(1.0, time.Time{}); !errors.Is(err, ErrTimestampRequired) {
		t.Errorf("ValidatePayload(no timestamp) error = %v, want ErrTimestampRequired", err)
	}
	if err := m.ValidatePayload(1.0, time.Now()); err != nil {
		t.Errorf("ValidatePayload(with timestamp) error = %v", err)
	}

	// A timestamp on a mapping without explicit_timestamp is accepted.
	count := iface.Mapping("/s1/count")
	if err := count.ValidatePayload(3, time.Now()); err != nil {
		t.Errorf("ValidatePayload(extra timestamp) error = %v", err)
	}
}

func TestMappingAttributes(t *testing.T) {
	iface := mustInterface(t, &Definition{
		Name:         "org.example.Attrs",
		VersionMajor: 2,
		Type:         InterfaceTypeDatastream,
		Mappings: []MappingDefinition{{
			Endpoint:    "/a/b",
			Type:        MappingTypeString,
			Reliability: ReliabilityUnique,
			Retention:   RetentionStored,
			Expiry:      60,
			Description: "short",
			Doc:         "long",
		}},
	})
	m := iface.Mappings()[0]

	if m.Endpoint() != "/a/b" || m.Type() != MappingTypeString {
		t.Errorf("Endpoint()/Type() = %s/%s", m.Endpoint(), m.Type())
	}
	if m.Reliability() != ReliabilityUnique {
		t.Errorf("Reliability() = %v, want unique", m.Reliability())
	}
	if m.Retention() != RetentionStored {
		t.Errorf("Retention() = %v, want stored", m.Retention())
	}
	if m.Expiry() != time.Minute {
		t.Errorf("Expiry() = %v, want 1m", m.Expiry())
	}
	if m.Description() != "short" || m.Doc() != "long" {
		t.Errorf("Description()/Doc() = %q/%q", m.Description(), m.Doc())
	}
	if m.IsParametric() {
		t.Error("IsParametric() = true, want false")
	}
	if m.AllowUnset() {
		t.Error("AllowUnset() = true, want false")
	}
}

func TestMappingNegativeExpiry(t *testing.T) {
	def := sensorValuesDef()
	def.Mappings[0].Expiry = -1
	if _, err := NewInterface(def); !errors.Is(err, ErrInvalidDefinition) {
		t.Errorf("NewInterface() error = %v, want ErrInvalidDefinition", err)
	}
}

func TestDefinitionJSON(t *testing.T) {
	data := []byte(`{
		"interface_name": "org.example.genericsensors.Geolocation",
		"version_major": 0,
		"version_minor": 1,
		"type": "datastream",
		"aggregation": "object",
		"mappings": [
			{"endpoint": "/gps/latitude", "type": "double", "reliability": "guaranteed", "retention": "stored", "expiry": 30},
			{"endpoint": "/gps/longitude", "type": "double", "reliability": 1}
		]
	}`)

	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if def.Type != InterfaceTypeDatastream || def.Aggregation != AggregationObject || def.Ownership != OwnershipDevice {
		t.Errorf("enums = %v/%v/%v", def.Type, def.Aggregation, def.Ownership)
	}
	if def.Mappings[0].Reliability != ReliabilityGuaranteed || def.Mappings[1].Reliability != ReliabilityGuaranteed {
		t.Errorf("reliability = %v/%v", def.Mappings[0].Reliability, def.Mappings[1].Reliability)
	}
	if def.Mappings[0].Retention != RetentionStored || def.Mappings[0].Expiry != 30 {
		t.Errorf("retention = %v expiry = %d", def.Mappings[0].Retention, def.Mappings[0].Expiry)
	}

	if _, err := NewInterface(&def); err != nil {
		t.Errorf("NewInterface() error = %v", err)
	}
}

func TestDefinitionYAML(t *testing.T) {
	data := []byte(`
interface_name: org.example.genericsensors.AvailableSensors
version_major: 1
version_minor: 2
type: properties
ownership: server
mappings:
  - endpoint: /%{sensorId}/name
    type: string
  - endpoint: /%{sensorId}/unit
    type: stringarray
    allow_unset: true
`)

	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}
	if def.Type != InterfaceTypeProperties || def.Ownership != OwnershipServer {
		t.Errorf("type/ownership = %v/%v", def.Type, def.Ownership)
	}
	if def.Mappings[1].Type != MappingTypeStringArray || !def.Mappings[1].AllowUnset {
		t.Errorf("mapping[1] = %+v", def.Mappings[1])
	}
}

func TestDefinitionUnknownKeywords(t *testing.T) {
	tests := []struct {
		name string
		data string
		want error
	}{
		{"InterfaceType", `{"type": "stream"}`, ErrInvalidType},
		{"MappingType", `{"mappings": [{"type": "float"}]}`, ErrInvalidType},
		{"Aggregation", `{"aggregation": "grouped"}`, ErrInvalidAggregation},
		{"Ownership", `{"ownership": "cloud"}`, ErrInvalidDefinition},
		{"ReliabilityNumber", `{"mappings": [{"reliability": 7}]}`, ErrInvalidDefinition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var def Definition
			err := json.Unmarshal([]byte(tt.data), &def)
			if !errors.Is(err, tt.want) {
				t.Errorf("json.Unmarshal() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestMappingTypeString(t *testing.T) {
	for typ := MappingTypeDouble; typ <= MappingTypeDateTimeArray; typ++ {
		var back MappingType
		if err := back.UnmarshalText([]byte(typ.String())); err != nil {
			t.Errorf("UnmarshalText(%q) error = %v", typ, err)
		}
		if back != typ {
			t.Errorf("UnmarshalText(%q) = %v", typ, back)
		}
	}
	if MappingTypeIntegerArray.Scalar() != MappingTypeInteger {
		t.Errorf("Scalar() = %v, want integer", MappingTypeIntegerArray.Scalar())
	}
	if MappingTypeString.IsArray() {
		t.Error("string.IsArray() = true")
	}
}
