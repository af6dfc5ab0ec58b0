package session

import (
	"context"
	"errors"
	"testing"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

func TestRouting(t *testing.T) {
	t.Run("StateChange", func(t *testing.T) {
		c, tr := newTestController(t)

		var pairs []wire.StateChangePair
		c.OnStateChange(func(p wire.StateChangePair) { pairs = append(pairs, p) })

		tr.deliver(appStateFrame(wire.StateUnavailable))

		if len(pairs) != 1 {
			t.Fatalf("state change events = %d, want 1", len(pairs))
		}
		if pairs[0].Current != wire.StateUnavailable || pairs[0].Previous != wire.StateInitialize {
			t.Errorf("pair = %+v", pairs[0])
		}
		if c.State() != pairs[0] {
			t.Errorf("State() = %+v, want %+v", c.State(), pairs[0])
		}

		// The same state again is not a transition.
		tr.deliver(appStateFrame(wire.StateUnavailable))
		if len(pairs) != 1 {
			t.Errorf("state change events = %d after repeat, want 1", len(pairs))
		}
	})

	t.Run("Activation", func(t *testing.T) {
		c, tr := newTestController(t)

		var got ActivationInfo
		activated := false
		c.OnActivated(func(info ActivationInfo) { activated, got = true, info })

		tr.deliver(&wire.Frame{
			Meta: wire.Meta{CurrentApplicationState: wire.StateActive},
			Payload: &wire.Payload{ApplicationState: &wire.ApplicationStateBody{
				ApplicationStateCode: wire.StateActive,
				ExecutionMode:        wire.ExecutionModeMultiTenant,
				AccessibleMode:       true,
				LanguageID:           "sv-SE",
			}},
		})

		if !activated {
			t.Fatal("OnActivated not fired")
		}
		if !got.MultiTenant || !got.AccessibleMode || got.Language != "sv-SE" {
			t.Errorf("activation info = %+v", got)
		}
		if c.Activation() != got {
			t.Errorf("Activation() = %+v", c.Activation())
		}
	})

	t.Run("Deactivation", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateActive))

		reader := c.Devices().BarcodeReader
		reader.UpdateState(componentFrame(4, wire.ComponentReady, wire.CodeOK, wire.StateActive))
		if _, err := reader.Enable(context.Background()); err != nil {
			t.Fatalf("Enable() error = %v", err)
		}

		deactivated := false
		c.OnDeactivated(func() { deactivated = true })

		tr.deliver(appStateFrame(wire.StateAvailable))

		if !deactivated {
			t.Error("OnDeactivated not fired when leaving ACTIVE")
		}
		if reader.Enabled() {
			t.Error("component still enabled after leaving ACTIVE")
		}
	})

	t.Run("SessionTimeout", func(t *testing.T) {
		c, tr := newTestController(t)

		timedOut := false
		c.OnSessionTimeout(func() { timedOut = true })

		tr.deliver(&wire.Frame{Meta: wire.Meta{
			MessageCode:             wire.CodeSessionTimeout,
			CurrentApplicationState: wire.StateAvailable,
		}})

		if !timedOut {
			t.Error("OnSessionTimeout not fired")
		}
	})

	t.Run("EmptyStateIsAnError", func(t *testing.T) {
		c, tr := newTestController(t)

		var gotErr error
		c.OnError(func(err error) { gotErr = err })

		tr.deliver(&wire.Frame{Meta: wire.Meta{MessageCode: wire.CodeOK}})

		if !errors.Is(gotErr, ErrEmptyApplicationState) {
			t.Errorf("OnError got %v, want ErrEmptyApplicationState", gotErr)
		}
	})

	t.Run("ComponentChange", func(t *testing.T) {
		c, tr := newTestController(t)

		var changed []component.Device
		c.OnComponentChange(func(dev component.Device) { changed = append(changed, dev) })

		tr.deliver(componentFrame(4, wire.ComponentReady, wire.CodeOK, wire.StateInitialize))

		if len(changed) != 1 || changed[0].ID() != 4 {
			t.Fatalf("component change events = %v", changed)
		}
		if !c.Devices().BarcodeReader.Ready() {
			t.Error("barcode reader not READY after routed frame")
		}

		// A frame that moves nothing emits nothing.
		tr.deliver(componentFrame(4, wire.ComponentReady, wire.CodeOK, wire.StateInitialize))
		if len(changed) != 1 {
			t.Errorf("component change events = %d after no-op frame, want 1", len(changed))
		}
	})

	t.Run("EveryFrameReachesOnMessage", func(t *testing.T) {
		c, tr := newTestController(t)

		count := 0
		c.OnMessage(func(*wire.Frame) { count++ })

		tr.deliver(appStateFrame(wire.StateUnavailable))
		tr.deliver(componentFrame(4, wire.ComponentReady, wire.CodeOK, wire.StateUnavailable))

		if count != 2 {
			t.Errorf("message events = %d, want 2", count)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("NegativeComponentID", func(t *testing.T) {
		c, _ := newTestController(t)
		if _, err := c.Enable(context.Background(), -1); !errors.Is(err, ErrInvalidComponentID) {
			t.Errorf("Enable(-1) error = %v, want ErrInvalidComponentID", err)
		}
	})

	t.Run("AnnouncementPlay", func(t *testing.T) {
		c, tr := newTestController(t)
		if _, err := c.Announcement().Play(context.Background(), 5, "<speak>Welcome</speak>"); err != nil {
			t.Fatalf("Play() error = %v", err)
		}

		frames := tr.sentFrames()
		last := frames[len(frames)-1]
		if last.Meta.Directive != wire.DirectiveAnnouncementPlay {
			t.Errorf("directive = %q", last.Meta.Directive)
		}
		if last.Payload == nil || len(last.Payload.DataRecords) != 1 ||
			last.Payload.DataRecords[0].DsTypes[0] != wire.DsTypeSSML {
			t.Errorf("payload = %+v, want one SSML data record", last.Payload)
		}
	})

	t.Run("Transfer", func(t *testing.T) {
		c, tr := newTestController(t)
		if _, err := c.Transfer(context.Background(), "companion-app", "PNR=ABC123"); err != nil {
			t.Fatalf("Transfer() error = %v", err)
		}
		frames := tr.sentFrames()
		last := frames[len(frames)-1]
		if last.Meta.Directive != wire.DirectiveTransfer {
			t.Errorf("directive = %q", last.Meta.Directive)
		}
		if last.Payload.ApplicationTransfer.TargetApplicationID != "companion-app" {
			t.Errorf("transfer payload = %+v", last.Payload.ApplicationTransfer)
		}
	})
}

func TestControllerClose(t *testing.T) {
	c, tr := newTestController(t)

	if err := c.Close("shift end"); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	tr.mu.Lock()
	closed := tr.closed
	tr.mu.Unlock()
	if !closed {
		t.Error("transport not closed")
	}
}
