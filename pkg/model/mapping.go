package model

import (
	"fmt"
	"time"
)

// Mapping is the schema of a single endpoint. Mappings are owned by their
// Interface and immutable.
type Mapping struct {
	iface   string
	pattern endpointPattern

	typ               MappingType
	reliability       Reliability
	retention         Retention
	expiry            time.Duration
	explicitTimestamp bool
	allowUnset        bool
	description       string
	doc               string
}

// newMapping builds a mapping for an interface of the given type.
func newMapping(iface string, ifaceType InterfaceType, def MappingDefinition) (*Mapping, error) {
	if def.Endpoint == "" {
		return nil, fmt.Errorf("%w: mapping endpoint in %s", ErrMissingField, iface)
	}
	if def.Type == MappingTypeUnknown {
		return nil, fmt.Errorf("%w: type of mapping %s in %s", ErrMissingField, def.Endpoint, iface)
	}
	if def.Expiry < 0 {
		return nil, fmt.Errorf("%w: negative expiry for mapping %s in %s", ErrInvalidDefinition, def.Endpoint, iface)
	}
	pattern, err := parseEndpoint(def.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", iface, err)
	}

	m := &Mapping{
		iface:             iface,
		pattern:           pattern,
		typ:               def.Type,
		reliability:       def.Reliability,
		retention:         def.Retention,
		expiry:            time.Duration(def.Expiry) * time.Second,
		explicitTimestamp: def.ExplicitTimestamp,
		allowUnset:        def.AllowUnset,
		description:       def.Description,
		doc:               def.Doc,
	}
	if ifaceType == InterfaceTypeProperties {
		m.reliability = ReliabilityUnique
	}
	return m, nil
}

// Endpoint returns the endpoint pattern as declared.
func (m *Mapping) Endpoint() string { return m.pattern.raw }

// Type returns the value type.
func (m *Mapping) Type() MappingType { return m.typ }

// Reliability returns the delivery class of the mapping.
func (m *Mapping) Reliability() Reliability { return m.reliability }

// Retention returns the retention policy of the mapping.
func (m *Mapping) Retention() Retention { return m.retention }

// Expiry returns how long a retained value stays valid; 0 means forever.
func (m *Mapping) Expiry() time.Duration { return m.expiry }

// ExplicitTimestamp returns true if every value must carry a timestamp.
func (m *Mapping) ExplicitTimestamp() bool { return m.explicitTimestamp }

// AllowUnset returns true if the property may be unset.
func (m *Mapping) AllowUnset() bool { return m.allowUnset }

// Description returns the short description of the mapping.
func (m *Mapping) Description() string { return m.description }

// Doc returns the long documentation of the mapping.
func (m *Mapping) Doc() string { return m.doc }

// IsParametric returns true if the endpoint contains parameter segments.
func (m *Mapping) IsParametric() bool {
	for _, s := range m.pattern.segments {
		if s.isParam {
			return true
		}
	}
	return false
}

// ValidatePath checks a concrete path against the endpoint pattern.
// It returns nil on match and an ErrPathMismatch validation error otherwise.
func (m *Mapping) ValidatePath(path string) error {
	parts, ok := splitPath(path)
	if !ok || !m.pattern.match(parts) {
		return validationErrorf(m.iface, path, ErrPathMismatch,
			"path %s does not match endpoint %s", path, m.pattern.raw)
	}
	return nil
}

// ValidatePayload checks a single value and its timestamp. A zero timestamp
// means no timestamp was supplied.
func (m *Mapping) ValidatePayload(value any, timestamp time.Time) error {
	return m.validatePayload(m.pattern.raw, value, timestamp)
}

func (m *Mapping) validatePayload(path string, value any, timestamp time.Time) error {
	if m.explicitTimestamp && timestamp.IsZero() {
		return validationErrorf(m.iface, path, ErrTimestampRequired,
			"timestamp required for %s", m.pattern.raw)
	}
	if cause, kind := m.typ.check(value); kind != nil {
		return validationErrorf(m.iface, path, kind, "%s (%s): %s", m.pattern.raw, m.typ, cause)
	}
	return nil
}
