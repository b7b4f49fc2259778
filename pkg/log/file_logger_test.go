package log

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerWritesAndAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.dlog")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	fl.Log(Event{Timestamp: time.Now(), Path: "/first"})
	if err := fl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	fl, err = NewFileLogger(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	fl.Log(Event{Timestamp: time.Now(), Path: "/second"})
	fl.Close()

	events, err := ReadAll(path, Filter{})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Path != "/first" || events[1].Path != "/second" {
		t.Errorf("paths = %q, %q", events[0].Path, events[1].Path)
	}
}

func TestFileLoggerCloseIdempotent(t *testing.T) {
	fl, err := NewFileLogger(filepath.Join(t.TempDir(), "x.dlog"))
	if err != nil {
		t.Fatal(err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := fl.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	fl.Log(Event{})
	if written, _ := fl.Stats(); written != 0 {
		t.Errorf("written after close = %d, want 0", written)
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "concurrent.dlog")
	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			fl.Log(Event{Category: CategoryState, StateChange: &StateChangeEvent{NewState: "S", Attempt: i + 1}})
		}(i)
	}
	wg.Wait()
	fl.Close()

	written, dropped := fl.Stats()
	if written != 20 || dropped != 0 {
		t.Errorf("Stats() = %d/%d, want 20/0", written, dropped)
	}

	events, err := ReadAll(path, Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 20 {
		t.Errorf("got %d events, want 20", len(events))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) Close() error              { return nil }

func TestFileLoggerCountsDropped(t *testing.T) {
	fl := NewWriterLogger(failingWriter{})
	fl.Log(Event{})
	fl.Log(Event{})

	written, dropped := fl.Stats()
	if written != 0 || dropped != 2 {
		t.Errorf("Stats() = %d/%d, want 0/2", written, dropped)
	}
}

func TestNewFileLoggerBadPath(t *testing.T) {
	_, err := NewFileLogger(filepath.Join(t.TempDir(), "missing", "x.dlog"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("NewFileLogger error = %v, want not exist", err)
	}
}
