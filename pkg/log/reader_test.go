package log

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.dlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func sampleEvents(base time.Time) []Event {
	return []Event{
		{Timestamp: base, SessionID: "s1", Direction: DirectionOut, Category: CategoryValidation,
			Interface: "org.example.Values", Path: "/a/value", Validation: &ValidationEvent{Valid: true}},
		{Timestamp: base.Add(time.Second), SessionID: "s1", Direction: DirectionOut, Category: CategoryValidation,
			Interface: "org.example.Values", Path: "/a/other", Validation: &ValidationEvent{Kind: "path not declared in interface"}},
		{Timestamp: base.Add(2 * time.Second), SessionID: "s2", Direction: DirectionIn, Category: CategoryValidation,
			Interface: "org.example.Settings", Path: "/x", DeviceID: "dev-1", Validation: &ValidationEvent{Valid: true}},
		{Timestamp: base.Add(3 * time.Second), SessionID: "s2", Layer: LayerConnection, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntityConnection, OldState: "CONNECTING", NewState: "CONNECTED"}},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	reader, err := Open(path, Filter{})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer reader.Close()

	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}

	if len(read) != 4 {
		t.Fatalf("got %d events, want 4", len(read))
	}
	if read[0].Path != "/a/value" || read[3].StateChange == nil {
		t.Errorf("unexpected order or payloads: %+v", read)
	}
}

func TestReaderFilters(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	in := DirectionIn
	state := CategoryState
	conn := LayerConnection
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"Session", Filter{SessionID: "s1"}, 2},
		{"Direction", Filter{Direction: &in}, 1},
		{"Category", Filter{Category: &state}, 1},
		{"Layer", Filter{Layer: &conn}, 1},
		{"Interface", Filter{Interface: "org.example.Values"}, 2},
		{"InvalidOnly", Filter{InvalidOnly: true}, 1},
		{"Device", Filter{DeviceID: "dev-1"}, 1},
		{"PathPrefix", Filter{PathPrefix: "/a/"}, 2},
		{"TimeWindow", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"Combined", Filter{SessionID: "s1", InvalidOnly: true}, 1},
		{"NoMatch", Filter{SessionID: "nope"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ReadAll(path, tt.filter)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(events) != tt.want {
				t.Errorf("got %d events, want %d", len(events), tt.want)
			}
		})
	}
}

func TestReaderEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)
	events, err := ReadAll(path, Filter{})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 0 {
		t.Errorf("got %d events, want 0", len(events))
	}
}

func TestReaderMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.dlog"), Filter{})
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open error = %v, want not exist", err)
	}
}

func TestReaderCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.dlog")
	if err := os.WriteFile(path, []byte{0xa2, 0x01}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadAll(path, Filter{}); err == nil {
		t.Error("ReadAll(corrupt) succeeded")
	}
}

func TestReaderStreamCounts(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, ev := range sampleEvents(base) {
		if err := enc.Encode(ev); err != nil {
			t.Fatal(err)
		}
	}

	reader := NewReader(&buf, Filter{SessionID: "s2"})
	var paths []string
	for ev, err := range reader.Events() {
		if err != nil {
			t.Fatalf("Events: %v", err)
		}
		paths = append(paths, ev.Path)
	}
	if len(paths) != 2 || paths[0] != "/x" {
		t.Errorf("paths = %v, want [/x \"\"]", paths)
	}

	decoded, matched := reader.Counts()
	if decoded != 4 || matched != 2 {
		t.Errorf("Counts() = %d, %d, want 4, 2", decoded, matched)
	}
	if err := reader.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
}

func TestReaderEventsStopEarly(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, sampleEvents(base))

	reader, err := Open(path, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()

	for range reader.Events() {
		break
	}
	ev, err := reader.Next()
	if err != nil {
		t.Fatalf("Next after break: %v", err)
	}
	if ev.Path != "/a/other" {
		t.Errorf("Next().Path = %q, want /a/other", ev.Path)
	}
}

func TestReaderTruncatedRecord(t *testing.T) {
	data, err := EncodeEvent(Event{Path: "/a/value", Category: CategoryValidation})
	if err != nil {
		t.Fatal(err)
	}
	good := append([]byte(nil), data...)
	stream := append(good, data[:len(data)-2]...)

	reader := NewReader(bytes.NewReader(stream), Filter{})
	if _, err := reader.Next(); err != nil {
		t.Fatalf("first Next: %v", err)
	}
	_, err = reader.Next()
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("second Next = %v, want decode error", err)
	}
	if !strings.Contains(err.Error(), "event 2") {
		t.Errorf("error %q does not name the record", err)
	}
}
