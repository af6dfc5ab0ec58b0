package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func TestEncodeDecodeEvent(t *testing.T) {
	componentID := 3
	event := Event{
		Timestamp:    time.Now().Truncate(time.Millisecond),
		ConnectionID: "conn-1",
		Direction:    DirectionIn,
		Category:     CategoryFrame,
		DeviceID:     "kiosk-7",
		Frame: &FrameEvent{
			RequestID:   "req-1",
			Directive:   "peripherals_query",
			ComponentID: &componentID,
			MessageCode: "OK",
			Size:        128,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent() error = %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent() error = %v", err)
	}

	if decoded.ConnectionID != event.ConnectionID {
		t.Errorf("connectionID = %q, want %q", decoded.ConnectionID, event.ConnectionID)
	}
	if decoded.Frame == nil {
		t.Fatal("frame payload lost in round trip")
	}
	if decoded.Frame.MessageCode != "OK" {
		t.Errorf("messageCode = %q, want OK", decoded.Frame.MessageCode)
	}
	if decoded.Frame.ComponentID == nil || *decoded.Frame.ComponentID != 3 {
		t.Errorf("componentID = %v, want 3", decoded.Frame.ComponentID)
	}
}

func TestFileLoggerAndReader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kiosk.clog")

	fl, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger() error = %v", err)
	}

	events := []Event{
		{ConnectionID: "a", Direction: DirectionOut, Category: CategoryFrame, Timestamp: time.Now()},
		{ConnectionID: "a", Direction: DirectionIn, Category: CategoryControl, Timestamp: time.Now(),
			Control: &ControlEvent{Type: ControlPing}},
		{ConnectionID: "b", Direction: DirectionIn, Category: CategoryError, Timestamp: time.Now(),
			Error: &ErrorEventData{Message: "boom", Context: "read"}},
	}
	for _, e := range events {
		fl.Log(e)
	}
	if err := fl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	fl.Log(Event{}) // after close: silently ignored

	t.Run("ReadAll", func(t *testing.T) {
		r, err := NewReader(path)
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		defer r.Close()

		count := 0
		for {
			_, err := r.Next()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("Next() error = %v", err)
			}
			count++
		}
		if count != len(events) {
			t.Errorf("read %d events, want %d", count, len(events))
		}
	})

	t.Run("Filtered", func(t *testing.T) {
		cat := CategoryError
		r, err := NewFilteredReader(path, Filter{ConnectionID: "b", Category: &cat})
		if err != nil {
			t.Fatalf("NewFilteredReader() error = %v", err)
		}
		defer r.Close()

		event, err := r.Next()
		if err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if event.Error == nil || event.Error.Message != "boom" {
			t.Errorf("unexpected event: %+v", event)
		}
		if _, err := r.Next(); err != io.EOF {
			t.Errorf("expected EOF, got %v", err)
		}
	})
}

func TestMultiLogger(t *testing.T) {
	var a, b []Event
	ml := NewMultiLogger(
		funcLogger(func(e Event) { a = append(a, e) }),
		funcLogger(func(e Event) { b = append(b, e) }),
	)

	ml.Log(Event{ConnectionID: "x"})

	if len(a) != 1 || len(b) != 1 {
		t.Errorf("fan-out counts = %d/%d, want 1/1", len(a), len(b))
	}
}

// funcLogger adapts a function into a Logger for tests.
type funcLogger func(Event)

func (f funcLogger) Log(e Event) { f(e) }
