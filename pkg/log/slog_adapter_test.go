package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func logOne(t *testing.T, ev Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(ev)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsRejectedPayload(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp: time.Now(),
		Direction: DirectionOut,
		Category:  CategoryValidation,
		Interface: "org.example.Values",
		Path:      "/abc/other",
		Validation: &ValidationEvent{
			Kind:  "path not declared in interface",
			Cause: "path /abc/other not in the org.example.Values interface",
		},
	})

	if entry["level"] != "WARN" {
		t.Errorf("level: got %v, want WARN", entry["level"])
	}
	if entry["category"] != "VALIDATION" {
		t.Errorf("category: got %v", entry["category"])
	}
	if entry["interface"] != "org.example.Values" || entry["path"] != "/abc/other" {
		t.Errorf("interface/path: got %v/%v", entry["interface"], entry["path"])
	}
	if entry["valid"] != false {
		t.Errorf("valid: got %v", entry["valid"])
	}
	if entry["kind"] != "path not declared in interface" {
		t.Errorf("kind: got %v", entry["kind"])
	}
}

func TestSlogAdapterLogsAcceptedPayloadAtDebug(t *testing.T) {
	entry := logOne(t, Event{
		Category:   CategoryValidation,
		Validation: &ValidationEvent{Valid: true},
	})
	if entry["level"] != "DEBUG" {
		t.Errorf("level: got %v, want DEBUG", entry["level"])
	}
	if _, ok := entry["kind"]; ok {
		t.Error("kind should be omitted for valid payloads")
	}
}

func TestSlogAdapterLogsStateChange(t *testing.T) {
	entry := logOne(t, Event{
		SessionID: "sess-1",
		Layer:     LayerConnection,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   StateEntityConnection,
			OldState: "CONNECTED",
			NewState: "RECONNECTING",
			Reason:   "connection lost",
			Attempt:  2,
			Delay:    time.Second,
		},
	})

	if entry["session_id"] != "sess-1" {
		t.Errorf("session_id: got %v", entry["session_id"])
	}
	if entry["entity"] != "CONNECTION" || entry["new_state"] != "RECONNECTING" {
		t.Errorf("entity/new_state: got %v/%v", entry["entity"], entry["new_state"])
	}
	if entry["attempt"] != float64(2) {
		t.Errorf("attempt: got %v", entry["attempt"])
	}
	if entry["reason"] != "connection lost" {
		t.Errorf("reason: got %v", entry["reason"])
	}
}

func TestSlogAdapterLogsError(t *testing.T) {
	entry := logOne(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerSchema, Message: "bad file", Context: "load"},
	})
	if entry["level"] != "WARN" || entry["error_msg"] != "bad file" || entry["error_layer"] != "SCHEMA" {
		t.Errorf("entry = %v", entry)
	}
}

func TestSlogAdapterNilLogger(t *testing.T) {
	NewSlogAdapter(nil).Log(Event{Category: CategoryState, StateChange: &StateChangeEvent{NewState: "X"}})
}
