// Package introspection holds the set of interfaces a device declares and
// routes payload validation to them.
//
// The registry is the device-side view of its data contract: outgoing
// payloads must target device-owned interfaces, incoming ones server-owned
// interfaces. Every validation outcome is reported to the configured event
// logger, so rejected payloads can be audited later.
//
// The introspection string sent to the peer lists every interface as
// name:major:minor, sorted by name and joined with ";".
package introspection
