package session

import (
	"context"
	"testing"
	"time"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// markAllReady drives every discovered component to READY.
func markAllReady(c *Controller) {
	for _, dev := range c.Devices().snapshot() {
		dev.UpdateState(&wire.Frame{Meta: wire.Meta{
			ComponentState: wire.ComponentReady,
			MessageCode:    wire.CodeOK,
		}})
	}
}

func TestSyncPolicy(t *testing.T) {
	t.Run("RequestsAvailableWhenRequiredReady", func(t *testing.T) {
		c, tr := newTestController(t)
		c.SetRequired(component.KindBarcodeReader)
		markAllReady(c)
		c.SetOnline(true)

		// The platform drops the application to UNAVAILABLE; every
		// required component is ready, so the policy asks for
		// AVAILABLE.
		tr.deliver(appStateFrame(wire.StateUnavailable))

		waitFor(t, func() bool {
			for _, s := range tr.stateRequests() {
				if s == wire.StateAvailable {
					return true
				}
			}
			return false
		}, "no AVAILABLE request issued")
	})

	t.Run("RequestsUnavailableWhenRequiredNotReady", func(t *testing.T) {
		c, tr := newTestController(t)
		c.SetRequired(component.KindBarcodeReader)
		markAllReady(c)
		c.SetOnline(true)
		tr.deliver(appStateFrame(wire.StateAvailable))

		// The required reader fails while AVAILABLE.
		tr.deliver(componentFrame(4, wire.ComponentUnavailable, wire.CodeHardwareError, wire.StateAvailable))

		waitFor(t, func() bool {
			for _, s := range tr.stateRequests() {
				if s == wire.StateUnavailable {
					return true
				}
			}
			return false
		}, "no UNAVAILABLE request issued")
	})

	t.Run("OfflineForcesUnavailable", func(t *testing.T) {
		c, tr := newTestController(t)
		markAllReady(c)
		tr.deliver(appStateFrame(wire.StateAvailable))

		c.SetOnline(false)

		waitFor(t, func() bool {
			for _, s := range tr.stateRequests() {
				if s == wire.StateUnavailable {
					return true
				}
			}
			return false
		}, "no UNAVAILABLE request issued while offline")
	})

	t.Run("NoOpWhileRequestOutstanding", func(t *testing.T) {
		c, tr := newTestController(t)
		c.SetRequired(component.KindBarcodeReader)
		markAllReady(c)
		tr.deliver(appStateFrame(wire.StateUnavailable))

		// Claim the single outstanding slot, then go online: the
		// policy must not issue a second request.
		if !c.acquireStateGuard() {
			t.Fatal("guard unexpectedly held")
		}
		c.SetOnline(true)

		time.Sleep(50 * time.Millisecond)
		if got := len(tr.stateRequests()); got != 0 {
			t.Errorf("state requests = %d while guard held, want 0", got)
		}
	})
}

func TestGuardedRequests(t *testing.T) {
	t.Run("ActiveDisallowedFromUnavailable", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateUnavailable))

		resp, err := c.RequestActive(context.Background())
		if resp != nil || err != nil {
			t.Errorf("RequestActive() = %v, %v, want policy no-op", resp, err)
		}
		if len(tr.stateRequests()) != 0 {
			t.Error("disallowed request still sent a frame")
		}
	})

	t.Run("AvailableFromInitializeTransitsUnavailable", func(t *testing.T) {
		c, tr := newTestController(t)

		if _, err := c.RequestAvailable(context.Background()); err != nil {
			t.Fatalf("RequestAvailable() error = %v", err)
		}

		want := []wire.ApplicationState{wire.StateUnavailable, wire.StateAvailable}
		got := tr.stateRequests()
		if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("state requests = %v, want %v", got, want)
		}
	})

	t.Run("AvailableFromActiveDisablesFirst", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateActive))

		reader := c.Devices().BarcodeReader
		reader.UpdateState(componentFrame(4, wire.ComponentReady, wire.CodeOK, wire.StateActive))
		if _, err := reader.Enable(context.Background()); err != nil {
			t.Fatalf("Enable() error = %v", err)
		}

		if _, err := c.RequestAvailable(context.Background()); err != nil {
			t.Fatalf("RequestAvailable() error = %v", err)
		}

		var sawDisable, disableBeforeRequest bool
		for _, f := range tr.sentFrames() {
			switch f.Meta.Directive {
			case wire.DirectiveDisable:
				sawDisable = true
			case wire.DirectiveStateRequest:
				disableBeforeRequest = sawDisable
			}
		}
		if !sawDisable || !disableBeforeRequest {
			t.Error("enabled component not disabled before the state request")
		}
		if reader.Enabled() {
			t.Error("component still enabled after RequestAvailable from ACTIVE")
		}
	})

	t.Run("SameStateRequestReleasesGuard", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateActive))

		// The platform confirms ACTIVE without a transition frame.
		if _, err := c.RequestActive(context.Background()); err != nil {
			t.Fatalf("RequestActive() error = %v", err)
		}
		tr.deliver(appStateFrame(wire.StateActive))

		resp, err := c.RequestActive(context.Background())
		if err != nil {
			t.Fatalf("second RequestActive() error = %v", err)
		}
		if resp == nil {
			t.Fatal("second RequestActive() = nil, guard still held after a same-state request")
		}
		if got := len(tr.stateRequests()); got != 2 {
			t.Errorf("state requests = %d, want 2", got)
		}
	})

	t.Run("StoppedAlwaysAllowed", func(t *testing.T) {
		c, tr := newTestController(t)

		if _, err := c.RequestStopped(context.Background()); err != nil {
			t.Fatalf("RequestStopped() error = %v", err)
		}
		got := tr.stateRequests()
		if len(got) != 1 || got[0] != wire.StateStopped {
			t.Errorf("state requests = %v, want [STOPPED]", got)
		}
	})

	t.Run("ReloadClosesSocket", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateAvailable))

		if _, err := c.RequestReload(context.Background()); err != nil {
			t.Fatalf("RequestReload() error = %v", err)
		}

		tr.mu.Lock()
		closed := tr.closed
		tr.mu.Unlock()
		if !closed {
			t.Error("socket not closed after reload")
		}
	})

	t.Run("SecondCallerGetsNoOp", func(t *testing.T) {
		c, tr := newTestController(t)
		tr.deliver(appStateFrame(wire.StateAvailable))

		if !c.acquireStateGuard() {
			t.Fatal("guard unexpectedly held")
		}
		resp, err := c.RequestActive(context.Background())
		if resp != nil || err != nil {
			t.Errorf("RequestActive() = %v, %v with outstanding request, want no-op", resp, err)
		}
		if len(tr.stateRequests()) != 0 {
			t.Error("guarded request sent a frame despite outstanding request")
		}
	})
}
