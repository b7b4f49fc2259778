package commands

import (
	"fmt"
	"io"

	"github.com/devicelink/devicelink-go/pkg/log"
)

// FormatEvent writes a human-readable representation of the event to w.
func FormatEvent(w io.Writer, event log.Event) {
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")

	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s", ts, shortenID(event.SessionID),
		event.Direction, event.Layer, event.Category)
	if event.Interface != "" {
		fmt.Fprintf(w, " %s%s", event.Interface, event.Path)
	}
	fmt.Fprintln(w)

	switch {
	case event.Validation != nil:
		v := event.Validation
		if v.Valid {
			fmt.Fprintf(w, "  Valid (unset=%t)\n", v.Unset)
		} else {
			fmt.Fprintf(w, "  Rejected: %s\n", v.Kind)
			fmt.Fprintf(w, "  Cause: %s\n", v.Cause)
		}
	case event.StateChange != nil:
		sc := event.StateChange
		fmt.Fprintf(w, "  Entity: %s\n", sc.Entity)
		if sc.OldState != "" {
			fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
		} else {
			fmt.Fprintf(w, "  -> %s\n", sc.NewState)
		}
		if sc.Attempt > 0 {
			fmt.Fprintf(w, "  Attempt: %d  Delay: %s\n", sc.Attempt, sc.Delay)
		}
		if sc.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
		}
	case event.Error != nil:
		fmt.Fprintf(w, "  Layer: %s\n", event.Error.Layer)
		fmt.Fprintf(w, "  Message: %s\n", event.Error.Message)
		if event.Error.Context != "" {
			fmt.Fprintf(w, "  Context: %s\n", event.Error.Context)
		}
	}
}

// shortenID returns the first 8 characters of a session id, or "-".
func shortenID(id string) string {
	switch {
	case id == "":
		return "-"
	case len(id) > 8:
		return id[:8]
	default:
		return id
	}
}
