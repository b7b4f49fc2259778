// Package log provides structured event capture for the device data-contract
// layer.
//
// This package defines the Logger interface and Event types for recording
// validation outcomes, connection state changes and errors. It is separate
// from operational logging (slog): event capture gives a machine-readable
// trace that can be filtered and replayed later.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	registry := introspection.New(introspection.Config{
//	    EventLogger: log.NewSlogAdapter(slog.Default()),
//	})
//
//	// For production: append to a binary file
//	fl, _ := log.NewFileLogger("/var/log/devicelink/device.dlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
//   - Validation: a payload accepted or rejected by an interface (ValidationEvent)
//   - State: reconnect manager transitions and retries, interfaces added or
//     removed (StateChangeEvent)
//   - Error: failures at any layer (ErrorEventData)
//
// # File Format
//
// Log files are a stream of CBOR-encoded events with integer keys. The
// devicelink CLI "events" command prints them. Open a log and range over the
// events that pass a Filter:
//
//	r, err := log.Open("device.dlog", log.Filter{InvalidOnly: true})
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//	for ev, err := range r.Events() {
//	    ...
//	}
package log
