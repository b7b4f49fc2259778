// Package ifaceparse loads interface definitions from JSON or YAML files
// and builds validated model.Interface values from them.
//
// JSON is the interchange format of interface definitions; YAML is accepted
// with the same field names for hand-written files:
//
//	interface_name: org.example.genericsensors.Values
//	version_major: 1
//	version_minor: 0
//	type: datastream
//	mappings:
//	  - endpoint: /%{sensorId}/value
//	    type: double
//	    explicit_timestamp: true
//
// Every parse error wraps model.ErrInvalidDefinition.
package ifaceparse
