package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes events to an slog.Logger.
// Useful for development when you want to see events in the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Rejected payloads and errors are
// logged at Warn, everything else at Debug.
func (a *SlogAdapter) Log(event Event) {
	level := slog.LevelDebug
	attrs := []slog.Attr{
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}
	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}
	if event.Interface != "" {
		attrs = append(attrs, slog.String("interface", event.Interface))
	}
	if event.Path != "" {
		attrs = append(attrs, slog.String("path", event.Path))
	}

	switch {
	case event.Validation != nil:
		attrs = append(attrs, slog.Bool("valid", event.Validation.Valid))
		if event.Validation.Unset {
			attrs = append(attrs, slog.Bool("unset", true))
		}
		if !event.Validation.Valid {
			level = slog.LevelWarn
			attrs = append(attrs,
				slog.String("kind", event.Validation.Kind),
				slog.String("cause", event.Validation.Cause),
			)
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
		if event.StateChange.Attempt > 0 {
			attrs = append(attrs,
				slog.Int("attempt", event.StateChange.Attempt),
				slog.Duration("delay", event.StateChange.Delay),
			)
		}
	case event.Error != nil:
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "event", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
