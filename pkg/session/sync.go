package session

import (
	"context"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// SetOnline declares whether the application is willing to serve
// passengers and re-runs the sync policy.
func (c *Controller) SetOnline(online bool) {
	c.mu.Lock()
	c.online = online
	c.mu.Unlock()
	c.syncState()
}

// syncState is the availability policy: while online, the application
// should be AVAILABLE exactly when every required component is ready;
// while offline it should be UNAVAILABLE. A no-op while a state-change
// request is already outstanding.
func (c *Controller) syncState() {
	c.mu.Lock()
	if c.pendingStateChange || !c.discovered {
		c.mu.Unlock()
		return
	}
	online := c.online
	current := c.state.Current
	c.mu.Unlock()

	devices := c.Devices().snapshot()
	if len(devices) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), backgroundOpTimeout)
	defer cancel()

	if !online {
		if current != wire.StateUnavailable {
			_, _ = c.RequestUnavailable(ctx)
		}
		return
	}

	allRequiredReady := true
	for _, dev := range devices {
		if dev.Required() && !dev.Ready() {
			allRequiredReady = false
			break
		}
	}

	switch {
	case allRequiredReady && current == wire.StateUnavailable:
		_, _ = c.RequestAvailable(ctx)
	case !allRequiredReady && current != wire.StateUnavailable:
		_, _ = c.RequestUnavailable(ctx)
	}
}

// acquireStateGuard claims the single outstanding state-change slot.
func (c *Controller) acquireStateGuard() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingStateChange {
		return false
	}
	c.pendingStateChange = true
	return true
}

// releaseStateGuard frees the outstanding-request slot.
func (c *Controller) releaseStateGuard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingStateChange = false
}

// guardedStateRequest sends one state request under the guard. The
// guard is released once the correlated response arrives or the send
// fails; a request for the state the application already holds
// produces no transition frame, so waiting for one would hold the
// guard forever. An observed transition also clears it.
func (c *Controller) guardedStateRequest(ctx context.Context, target wire.ApplicationState) (*wire.Frame, error) {
	resp, err := c.StateRequest(ctx, target, "")
	c.releaseStateGuard()
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RequestAvailable asks the platform for the AVAILABLE state. Allowed
// from INITIALIZE (transiting through UNAVAILABLE first), UNAVAILABLE
// and ACTIVE; from ACTIVE every enabled component is disabled first,
// sequentially. Disallowed states are a policy no-op.
func (c *Controller) RequestAvailable(ctx context.Context) (*wire.Frame, error) {
	current := c.State().Current
	switch current {
	case wire.StateInitialize, wire.StateUnavailable, wire.StateActive:
	default:
		return nil, nil
	}
	if !c.acquireStateGuard() {
		return nil, nil
	}

	if current == wire.StateActive {
		for _, dev := range c.Devices().snapshot() {
			if !dev.Enabled() {
				continue
			}
			if _, err := dev.Disable(ctx); err != nil {
				c.releaseStateGuard()
				return nil, err
			}
		}
	}

	if current == wire.StateInitialize {
		if _, err := c.guardedStateRequest(ctx, wire.StateUnavailable); err != nil {
			return nil, err
		}
		// Re-claim the guard for the second hop.
		c.mu.Lock()
		c.pendingStateChange = true
		c.mu.Unlock()
	}

	return c.guardedStateRequest(ctx, wire.StateAvailable)
}

// RequestUnavailable asks the platform for the UNAVAILABLE state.
// Allowed from INITIALIZE, AVAILABLE and ACTIVE; from ACTIVE every
// enabled component is disabled without awaiting the acknowledgement.
func (c *Controller) RequestUnavailable(ctx context.Context) (*wire.Frame, error) {
	current := c.State().Current
	switch current {
	case wire.StateInitialize, wire.StateAvailable, wire.StateActive:
	default:
		return nil, nil
	}
	if !c.acquireStateGuard() {
		return nil, nil
	}

	if current == wire.StateActive {
		for _, dev := range c.Devices().snapshot() {
			if dev.Enabled() {
				go func(dev component.Device) {
					dctx, cancel := context.WithTimeout(context.Background(), backgroundOpTimeout)
					defer cancel()
					_, _ = dev.Disable(dctx)
				}(dev)
			}
		}
	}

	return c.guardedStateRequest(ctx, wire.StateUnavailable)
}

// RequestActive asks the platform for the ACTIVE state. Allowed only
// from AVAILABLE and ACTIVE.
func (c *Controller) RequestActive(ctx context.Context) (*wire.Frame, error) {
	switch c.State().Current {
	case wire.StateAvailable, wire.StateActive:
	default:
		return nil, nil
	}
	if !c.acquireStateGuard() {
		return nil, nil
	}
	return c.guardedStateRequest(ctx, wire.StateActive)
}

// RequestStopped asks the platform for the STOPPED state. Always
// allowed.
func (c *Controller) RequestStopped(ctx context.Context) (*wire.Frame, error) {
	if !c.acquireStateGuard() {
		return nil, nil
	}
	return c.guardedStateRequest(ctx, wire.StateStopped)
}

// RequestReload asks the platform to reload the application. Allowed
// before any state is known and from UNAVAILABLE, AVAILABLE and
// ACTIVE. A successful reload closes the socket so the next connect
// starts a fresh session.
func (c *Controller) RequestReload(ctx context.Context) (*wire.Frame, error) {
	switch c.State().Current {
	case "", wire.StateUnavailable, wire.StateAvailable, wire.StateActive:
	default:
		return nil, nil
	}
	if !c.acquireStateGuard() {
		return nil, nil
	}

	resp, err := c.guardedStateRequest(ctx, wire.StateReload)
	if err != nil {
		return nil, err
	}
	_ = c.Close("application reload")
	return resp, nil
}
