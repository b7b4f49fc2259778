package model

import (
	"fmt"
	"reflect"
	"sort"
	"time"
)

// Interface is the schema of one named interface. It is immutable after
// NewInterface returns and safe for concurrent use.
type Interface struct {
	name         string
	versionMajor int
	versionMinor int
	typ          InterfaceType
	ownership    Ownership
	aggregation  Aggregation
	description  string
	doc          string

	// mappings in declaration order.
	mappings []*Mapping
	matcher  *matcher
}

// NewInterface builds an Interface from its definition. It fails with an
// error wrapping ErrInvalidDefinition if the definition is incomplete or
// inconsistent; no partially built interface is ever returned.
func NewInterface(def *Definition) (*Interface, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil definition", ErrInvalidDefinition)
	}
	if def.Name == "" {
		return nil, fmt.Errorf("%w: interface_name", ErrMissingField)
	}
	if def.VersionMajor < 0 || def.VersionMinor < 0 {
		return nil, fmt.Errorf("%w: negative version for interface %s", ErrInvalidVersion, def.Name)
	}
	if def.VersionMajor == 0 && def.VersionMinor == 0 {
		return nil, fmt.Errorf("%w: both major and minor versions set to 0 for interface %s", ErrInvalidVersion, def.Name)
	}
	switch def.Type {
	case InterfaceTypeDatastream, InterfaceTypeProperties:
	case 0:
		return nil, fmt.Errorf("%w: type of interface %s", ErrMissingField, def.Name)
	default:
		return nil, fmt.Errorf("%w: %d for interface %s", ErrInvalidType, def.Type, def.Name)
	}
	if def.Ownership != OwnershipDevice && def.Ownership != OwnershipServer {
		return nil, fmt.Errorf("%w: ownership %d for interface %s", ErrInvalidDefinition, def.Ownership, def.Name)
	}
	switch def.Aggregation {
	case AggregationIndividual:
	case AggregationObject:
		if def.Type == InterfaceTypeProperties {
			return nil, fmt.Errorf("%w: properties interface %s cannot be object aggregated", ErrInvalidAggregation, def.Name)
		}
	default:
		return nil, fmt.Errorf("%w: %d for interface %s", ErrInvalidAggregation, def.Aggregation, def.Name)
	}
	if len(def.Mappings) == 0 {
		return nil, fmt.Errorf("%w: mappings of interface %s", ErrMissingField, def.Name)
	}

	i := &Interface{
		name:         def.Name,
		versionMajor: def.VersionMajor,
		versionMinor: def.VersionMinor,
		typ:          def.Type,
		ownership:    def.Ownership,
		aggregation:  def.Aggregation,
		description:  def.Description,
		doc:          def.Doc,
		mappings:     make([]*Mapping, 0, len(def.Mappings)),
		matcher:      newMatcher(),
	}

	seen := make(map[string]string, len(def.Mappings))
	for _, md := range def.Mappings {
		m, err := newMapping(def.Name, def.Type, md)
		if err != nil {
			return nil, err
		}
		key := m.pattern.normalized()
		if prev, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: interface %s mapping %s collides with %s", ErrDuplicateMapping, def.Name, m.Endpoint(), prev)
		}
		seen[key] = m.Endpoint()

		i.matcher.insert(m.pattern, len(i.mappings))
		i.mappings = append(i.mappings, m)
	}

	if i.aggregation == AggregationObject {
		if err := i.checkObjectMappings(); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// checkObjectMappings requires all members of an object interface to share
// one parent endpoint.
func (i *Interface) checkObjectMappings() error {
	var parent string
	for idx, m := range i.mappings {
		if len(m.pattern.segments) < 2 {
			return fmt.Errorf("%w: object interface %s mapping %s needs at least two segments", ErrInvalidAggregation, i.name, m.Endpoint())
		}
		p := m.pattern.parent()
		if idx == 0 {
			parent = p
			continue
		}
		if p != parent {
			return fmt.Errorf("%w: object interface %s mappings %s and %s have different parents", ErrInvalidAggregation, i.name, i.mappings[0].Endpoint(), m.Endpoint())
		}
	}
	return nil
}

// Name returns the interface name.
func (i *Interface) Name() string { return i.name }

// VersionMajor returns the major version.
func (i *Interface) VersionMajor() int { return i.versionMajor }

// VersionMinor returns the minor version.
func (i *Interface) VersionMinor() int { return i.versionMinor }

// Type returns the interface type.
func (i *Interface) Type() InterfaceType { return i.typ }

// Ownership returns the interface ownership.
func (i *Interface) Ownership() Ownership { return i.ownership }

// Aggregation returns the interface aggregation.
func (i *Interface) Aggregation() Aggregation { return i.aggregation }

// Description returns the short description of the interface.
func (i *Interface) Description() string { return i.description }

// Doc returns the long documentation of the interface.
func (i *Interface) Doc() string { return i.doc }

// IsAggregationObject returns true for object aggregated interfaces.
func (i *Interface) IsAggregationObject() bool { return i.aggregation == AggregationObject }

// IsServerOwned returns true if the server owns the interface.
func (i *Interface) IsServerOwned() bool { return i.ownership == OwnershipServer }

// IsTypeProperties returns true for properties interfaces.
func (i *Interface) IsTypeProperties() bool { return i.typ == InterfaceTypeProperties }

// Mappings returns the mappings in declaration order.
func (i *Interface) Mappings() []*Mapping {
	out := make([]*Mapping, len(i.mappings))
	copy(out, i.mappings)
	return out
}

// String returns the introspection token name:major:minor.
func (i *Interface) String() string {
	return fmt.Sprintf("%s:%d:%d", i.name, i.versionMajor, i.versionMinor)
}

// Mapping returns the first mapping, in declaration order, whose endpoint
// matches the concrete path, or nil.
func (i *Interface) Mapping(endpoint string) *Mapping {
	parts, ok := splitPath(endpoint)
	if !ok {
		return nil
	}
	idx := i.matcher.lookup(parts)
	if idx < 0 {
		return nil
	}
	return i.mappings[idx]
}

// Reliability returns the delivery class for a path. Object aggregated
// interfaces always report ReliabilityUnique since all members travel as one
// unit. An undeclared path yields ErrInterfaceNotFound.
func (i *Interface) Reliability(endpoint string) (Reliability, error) {
	if i.IsAggregationObject() {
		return ReliabilityUnique, nil
	}
	m := i.Mapping(endpoint)
	if m == nil {
		return 0, fmt.Errorf("%w: path %s not declared in %s", ErrInterfaceNotFound, endpoint, i.name)
	}
	return m.Reliability(), nil
}

// Validate checks a payload addressed to path. A zero timestamp means no
// timestamp was supplied. It returns nil or a *ValidationError.
//
// For object aggregated interfaces the payload must be a map[string]any
// whose keys are the member suffixes below path.
func (i *Interface) Validate(path string, payload any, timestamp time.Time) error {
	switch i.aggregation {
	case AggregationObject:
		return i.validateObject(path, payload, timestamp)
	default:
		return i.validateIndividual(path, payload, timestamp)
	}
}

func (i *Interface) validateIndividual(path string, payload any, timestamp time.Time) error {
	m := i.Mapping(path)
	if m == nil {
		return validationErrorf(i.name, path, ErrPathNotDeclared, "path %s not in the %s interface", path, i.name)
	}
	return m.validatePayload(path, payload, timestamp)
}

func (i *Interface) validateObject(path string, payload any, timestamp time.Time) error {
	obj, ok := asObject(payload)
	if !ok {
		return validationErrorf(i.name, path, ErrPayloadNotObject,
			"the interface %s is aggregate, but the payload is %T", i.name, payload)
	}

	// Sorted so the reported failure does not depend on map iteration order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		member := path + "/" + k
		m := i.Mapping(member)
		if m == nil {
			return validationErrorf(i.name, member, ErrPathNotDeclared, "path %s not in the %s interface", member, i.name)
		}
		if err := m.validatePayload(member, obj[k], timestamp); err != nil {
			return err
		}
	}

	parts, ok := splitPath(path)
	if !ok {
		return validationErrorf(i.name, path, ErrPathNotDeclared, "path %s not in the %s interface", path, i.name)
	}
	var expected int
	for _, m := range i.mappings {
		if !m.pattern.matchPrefix(parts) {
			continue
		}
		expected++
		if _, present := obj[m.pattern.suffix(len(parts))]; !present {
			return validationErrorf(i.name, path, ErrMissingMember,
				"path %s of %s interface is not in the payload", m.Endpoint(), i.name)
		}
	}
	if expected == 0 {
		return validationErrorf(i.name, path, ErrPathNotDeclared, "path %s not in the %s interface", path, i.name)
	}
	return nil
}

// ValidateUnset checks that the property at path may be unset.
func (i *Interface) ValidateUnset(path string) error {
	if !i.IsTypeProperties() {
		return validationErrorf(i.name, path, ErrUnsetNotAllowed, "%s is not a properties interface", i.name)
	}
	m := i.Mapping(path)
	if m == nil {
		return validationErrorf(i.name, path, ErrPathNotDeclared, "path %s not in the %s interface", path, i.name)
	}
	if !m.AllowUnset() {
		return validationErrorf(i.name, path, ErrUnsetNotAllowed, "%s does not allow unset", m.Endpoint())
	}
	return nil
}

// asObject returns payload as a map[string]any. Any map keyed by a string
// type is accepted and copied.
func asObject(payload any) (map[string]any, bool) {
	if obj, ok := payload.(map[string]any); ok {
		return obj, true
	}
	rv := reflect.ValueOf(payload)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	obj := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		obj[iter.Key().String()] = iter.Value().Interface()
	}
	return obj, true
}
