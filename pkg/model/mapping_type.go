package model

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// MappingType is the value type of a mapping.
type MappingType uint8

const (
	MappingTypeUnknown MappingType = iota
	MappingTypeDouble
	MappingTypeInteger
	MappingTypeBoolean
	MappingTypeLongInteger
	MappingTypeString
	MappingTypeBinaryBlob
	MappingTypeDateTime
	MappingTypeDoubleArray
	MappingTypeIntegerArray
	MappingTypeBooleanArray
	MappingTypeLongIntegerArray
	MappingTypeStringArray
	MappingTypeBinaryBlobArray
	MappingTypeDateTimeArray
)

var mappingTypeNames = map[MappingType]string{
	MappingTypeDouble:           "double",
	MappingTypeInteger:          "integer",
	MappingTypeBoolean:          "boolean",
	MappingTypeLongInteger:      "longinteger",
	MappingTypeString:           "string",
	MappingTypeBinaryBlob:       "binaryblob",
	MappingTypeDateTime:         "datetime",
	MappingTypeDoubleArray:      "doublearray",
	MappingTypeIntegerArray:     "integerarray",
	MappingTypeBooleanArray:     "booleanarray",
	MappingTypeLongIntegerArray: "longintegerarray",
	MappingTypeStringArray:      "stringarray",
	MappingTypeBinaryBlobArray:  "binaryblobarray",
	MappingTypeDateTimeArray:    "datetimearray",
}

// String returns the definition keyword for the type.
func (t MappingType) String() string {
	if s, ok := mappingTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t MappingType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MappingType) UnmarshalText(text []byte) error {
	if err := parseKeyword(string(text), mappingTypeNames, t, ErrInvalidType); err != nil {
		return fmt.Errorf("%w (valid: %s)", err, typeNames())
	}
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *MappingType) UnmarshalYAML(node *yaml.Node) error {
	return t.UnmarshalText([]byte(node.Value))
}

// IsArray returns true for the *array types.
func (t MappingType) IsArray() bool {
	return t >= MappingTypeDoubleArray && t <= MappingTypeDateTimeArray
}

// Scalar returns the element type of an array type, or t itself.
func (t MappingType) Scalar() MappingType {
	if t.IsArray() {
		return t - (MappingTypeDoubleArray - MappingTypeDouble)
	}
	return t
}

// check validates value against the type. It returns a nil kind when the
// value is acceptable, otherwise a cause and a validation sentinel.
func (t MappingType) check(value any) (string, error) {
	if value == nil {
		return fmt.Sprintf("nil value for type %s", t), ErrTypeMismatch
	}
	if !t.IsArray() {
		return t.checkScalar(value)
	}

	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Sprintf("%T is not an array, expected %s", value, t), ErrTypeMismatch
	}
	// []byte is a binaryblob, never an integer array.
	if _, isBlob := value.([]byte); isBlob && t != MappingTypeBinaryBlobArray {
		return fmt.Sprintf("%T is not an array, expected %s", value, t), ErrTypeMismatch
	}
	elem := t.Scalar()
	for i := 0; i < rv.Len(); i++ {
		if cause, kind := elem.checkScalar(rv.Index(i).Interface()); kind != nil {
			return fmt.Sprintf("element %d: %s", i, cause), kind
		}
	}
	return "", nil
}

func (t MappingType) checkScalar(value any) (string, error) {
	switch t {
	case MappingTypeDouble:
		f, ok := toFloat64(value)
		if !ok {
			return fmt.Sprintf("%T is not a number, expected double", value), ErrTypeMismatch
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Sprintf("%v is not a finite double", f), ErrOutOfRange
		}
	case MappingTypeInteger:
		n, ok := toInt64(value)
		if !ok {
			if isIntegerType(value) {
				return fmt.Sprintf("%v does not fit a 32-bit integer", value), ErrOutOfRange
			}
			return fmt.Sprintf("%T is not an integer", value), ErrTypeMismatch
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return fmt.Sprintf("%d does not fit a 32-bit integer", n), ErrOutOfRange
		}
	case MappingTypeLongInteger:
		if _, ok := toInt64(value); !ok {
			if isIntegerType(value) {
				return fmt.Sprintf("%v does not fit a 64-bit integer", value), ErrOutOfRange
			}
			return fmt.Sprintf("%T is not an integer, expected longinteger", value), ErrTypeMismatch
		}
	case MappingTypeBoolean:
		if _, ok := value.(bool); !ok {
			return fmt.Sprintf("%T is not a boolean", value), ErrTypeMismatch
		}
	case MappingTypeString:
		s, ok := value.(string)
		if !ok {
			return fmt.Sprintf("%T is not a string", value), ErrTypeMismatch
		}
		if !utf8.ValidString(s) {
			return "string is not valid UTF-8", ErrOutOfRange
		}
	case MappingTypeBinaryBlob:
		if _, ok := value.([]byte); !ok {
			return fmt.Sprintf("%T is not a binary blob", value), ErrTypeMismatch
		}
	case MappingTypeDateTime:
		switch v := value.(type) {
		case time.Time:
		case *time.Time:
			if v == nil {
				return "nil datetime", ErrTypeMismatch
			}
		default:
			return fmt.Sprintf("%T is not a datetime", value), ErrTypeMismatch
		}
	default:
		return fmt.Sprintf("unsupported mapping type %s", t), ErrTypeMismatch
	}
	return "", nil
}

// Helper functions for type checking.

func isIntegerType(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	default:
		return false
	}
}

// toInt64 converts any Go integer to int64. It fails for non-integers and
// for unsigned values above math.MaxInt64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return toInt64(uint64(n))
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

// typeNames lists all valid mapping type keywords, for error messages.
func typeNames() string {
	names := make([]string, 0, len(mappingTypeNames))
	for t := MappingTypeDouble; t <= MappingTypeDateTimeArray; t++ {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}
