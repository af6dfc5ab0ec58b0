package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceID != "" {
		attrs = append(attrs, slog.String("device_id", event.DeviceID))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		if event.Frame.RequestID != "" {
			attrs = append(attrs, slog.String("request_id", event.Frame.RequestID))
		}
		if event.Frame.Directive != "" {
			attrs = append(attrs, slog.String("directive", event.Frame.Directive))
		}
		if event.Frame.ComponentID != nil {
			attrs = append(attrs, slog.Int("component_id", *event.Frame.ComponentID))
		}
		if event.Frame.MessageCode != "" {
			attrs = append(attrs, slog.String("message_code", event.Frame.MessageCode))
		}
		if event.Frame.Size > 0 {
			attrs = append(attrs, slog.Int("frame_size", event.Frame.Size))
		}
	case event.Control != nil:
		attrs = append(attrs, slog.String("ctrl_type", event.Control.Type.String()))
		if event.Control.AckCode != "" {
			attrs = append(attrs, slog.String("ack_code", event.Control.AckCode))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.ComponentID != nil {
			attrs = append(attrs, slog.Int("component_id", *event.StateChange.ComponentID))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
