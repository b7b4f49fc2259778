// Package model implements the device interface data model.
//
// # Interfaces
//
// An Interface is a named, versioned schema declaring the data points
// (endpoints) a device exchanges with its peer. Each interface has:
//   - a type: datastream (continuous stream of values) or properties
//     (snapshot of stateful values)
//   - an ownership: device (the device writes) or server (the peer writes)
//   - an aggregation: individual (one value per message) or object (all
//     members of a parent path delivered together)
//
// # Mappings
//
// A Mapping describes a single endpoint of an interface:
//
//	/%{sensor_id}/value   double   reliability=guaranteed
//
// Endpoints are slash-delimited. A segment written as %{name} is a
// parameter and matches any non-empty value in a concrete path:
//
//	pattern:  /%{sensor_id}/value
//	matches:  /b2c5a6ed/value
//	rejects:  /b2c5a6ed/name, /value
//
// # Validation
//
// Every payload is checked against the interface before it leaves the device
// or after it is received:
//
//	err := iface.Validate("/b2c5a6ed/value", 21.5, time.Now())
//
// Individual interfaces resolve the path to one mapping and check the value.
// Object interfaces expect a map keyed by the member suffix, check every
// member and require that all members are present.
//
// Validation failures are returned as *ValidationError values wrapping one
// of the Err* sentinels. Interfaces are immutable after NewInterface returns
// and are safe for concurrent use.
package model
