package commands

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devicelink/devicelink-go/pkg/model"
)

// ErrInvalidPayload is returned when a command line payload cannot be decoded.
var ErrInvalidPayload = errors.New("invalid payload")

// DecodePayload decodes a JSON payload typed for the mapping that path
// resolves to in iface.
//
// JSON numbers become int64 for integer mappings and float64 otherwise,
// RFC 3339 strings become time.Time for datetime mappings and standard
// base64 strings become []byte for binaryblob mappings. Values whose path
// does not resolve are returned as decoded so validation reports them.
func DecodePayload(iface *model.Interface, path string, raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidPayload)
	}

	if iface.IsAggregationObject() {
		obj, ok := v.(map[string]any)
		if !ok {
			return v, nil
		}
		out := make(map[string]any, len(obj))
		for key, member := range obj {
			m := iface.Mapping(path + "/" + key)
			if m == nil {
				out[key] = member
				continue
			}
			c, err := coerce(member, m.Type())
			if err != nil {
				return nil, fmt.Errorf("%w: member %q: %v", ErrInvalidPayload, key, err)
			}
			out[key] = c
		}
		return out, nil
	}

	m := iface.Mapping(path)
	if m == nil {
		return v, nil
	}
	c, err := coerce(v, m.Type())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return c, nil
}

func coerce(v any, t model.MappingType) (any, error) {
	if !t.IsArray() {
		return coerceScalar(v, t)
	}
	items, ok := v.([]any)
	if !ok {
		return v, nil
	}
	out := make([]any, len(items))
	for i, item := range items {
		c, err := coerceScalar(item, t.Scalar())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = c
	}
	return out, nil
}

func coerceScalar(v any, t model.MappingType) (any, error) {
	switch x := v.(type) {
	case json.Number:
		if t == model.MappingTypeInteger || t == model.MappingTypeLongInteger {
			if n, err := x.Int64(); err == nil {
				return n, nil
			}
		}
		f, err := x.Float64()
		if err != nil {
			return nil, fmt.Errorf("number %s: %w", x, err)
		}
		return f, nil
	case string:
		switch t {
		case model.MappingTypeDateTime:
			ts, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, fmt.Errorf("datetime %q: %w", x, err)
			}
			return ts, nil
		case model.MappingTypeBinaryBlob:
			b, err := base64.StdEncoding.DecodeString(x)
			if err != nil {
				return nil, fmt.Errorf("binaryblob %q: %w", x, err)
			}
			return b, nil
		}
	}
	return v, nil
}

// FormatPayload renders a decoded payload as compact JSON for display.
func FormatPayload(v any) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return fmt.Sprintf("%v", v)
	}
	return strings.TrimSpace(buf.String())
}
