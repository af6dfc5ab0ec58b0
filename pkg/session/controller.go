package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/connection"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// Initialization errors.
var (
	// ErrEmptyApplicationState is raised when the platform reports no
	// application state at all.
	ErrEmptyApplicationState = errors.New("platform reported no application state")

	// ErrSessionUnrecoverable is raised when the platform reports the
	// application as SUSPENDED or DISABLED during initialization.
	ErrSessionUnrecoverable = errors.New("application is suspended or disabled")

	// ErrEnvironmentMissing is raised when the environment query
	// returns no environment payload.
	ErrEnvironmentMissing = errors.New("platform returned no environment data")
)

// backgroundOpTimeout bounds best-effort background round trips
// (component re-queries, policy-driven state requests).
const backgroundOpTimeout = 30 * time.Second

// ActivationInfo carries the flags delivered with an ACTIVE transition.
type ActivationInfo struct {
	// MultiTenant is set when several applications share the kiosk.
	MultiTenant bool

	// AccessibleMode is set when the passenger requested accessibility
	// aids.
	AccessibleMode bool

	// Language is the passenger-selected language identifier.
	Language string

	// ExecutionOptions carries operator-supplied launch parameters.
	ExecutionOptions string
}

// Controller owns one application session: the application state
// machine, the discovered peripherals and the routing between them and
// the platform connection.
type Controller struct {
	mu sync.Mutex

	transport PlatformTransport

	env        *wire.EnvironmentData
	devices    *DeviceSet
	discovered bool

	state              wire.StateChangePair
	online             bool
	pendingStateChange bool
	activation         ActivationInfo

	pollInterval time.Duration
	logger       *slog.Logger

	onStateChange     func(wire.StateChangePair)
	onActivated       func(ActivationInfo)
	onDeactivated     func()
	onComponentChange func(component.Device)
	onSessionTimeout  func()
	onMessage         func(*wire.Frame)
	onError           func(error)
	onClose           func(code int, reason string)
}

// New wraps an existing transport in a controller and binds its
// callbacks. Call Start to open the session.
func New(transport PlatformTransport) *Controller {
	c := &Controller{
		transport:    transport,
		devices:      newDeviceSet(),
		pollInterval: component.DefaultPollInterval,
	}
	transport.OnMessage(c.handleMessage)
	transport.OnError(c.notifyError)
	transport.OnClose(func(code int, reason string) {
		c.mu.Lock()
		onClose := c.onClose
		c.mu.Unlock()
		if onClose != nil {
			onClose(code, reason)
		}
	})
	return c
}

// Connect builds a connection from the configuration, opens it and
// runs session initialization.
func Connect(ctx context.Context, cfg connection.Config) (*Controller, error) {
	conn, err := connection.New(cfg)
	if err != nil {
		return nil, err
	}
	c := New(conn)
	c.SetLogger(cfg.Logger)
	if err := c.Start(ctx); err != nil {
		_ = conn.Close(0, "initialization failed")
		return nil, err
	}
	return c, nil
}

// SetLogger attaches a debug logger. Set before Start.
func (c *Controller) SetLogger(l *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// SetPollInterval tunes the watchdog interval applied to discovered
// components. Zero or negative disables polling. Set before Start.
func (c *Controller) SetPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollInterval = d
}

// OnStateChange sets the callback fired on every observed application
// state transition.
func (c *Controller) OnStateChange(fn func(wire.StateChangePair)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStateChange = fn
}

// OnActivated sets the callback fired when the application enters
// ACTIVE.
func (c *Controller) OnActivated(fn func(ActivationInfo)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onActivated = fn
}

// OnDeactivated sets the callback fired when the application leaves
// ACTIVE.
func (c *Controller) OnDeactivated(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDeactivated = fn
}

// OnComponentChange sets the callback fired when a routed frame
// actually changed a component's readiness or status.
func (c *Controller) OnComponentChange(fn func(component.Device)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onComponentChange = fn
}

// OnSessionTimeout sets the callback fired when the platform reports a
// passenger session timeout.
func (c *Controller) OnSessionTimeout(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onSessionTimeout = fn
}

// OnMessage sets the callback fired for every inbound frame, after
// routing.
func (c *Controller) OnMessage(fn func(*wire.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// OnError sets the callback fired for non-fatal errors.
func (c *Controller) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// OnClose sets the callback fired when the connection ends.
func (c *Controller) OnClose(fn func(code int, reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// Start opens the connection and initializes the session.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.transport.Connect(ctx); err != nil {
		return err
	}
	return c.initialize(ctx)
}

// initialize queries the environment, adopts the platform device
// identifier, validates the reported application state and discovers
// the peripheral inventory.
func (c *Controller) initialize(ctx context.Context) error {
	f := &wire.Frame{Meta: wire.Meta{Directive: wire.DirectiveEnvironment}}
	resp, err := c.transport.SendAndGetResponse(ctx, f)
	if err != nil {
		return fmt.Errorf("environment query: %w", err)
	}
	if resp.Payload == nil || resp.Payload.EnvironmentData == nil {
		return ErrEnvironmentMissing
	}
	env := resp.Payload.EnvironmentData

	if c.transport.DeviceID() == wire.UnsetDeviceID && env.DeviceID != "" {
		c.transport.SetDeviceID(env.DeviceID)
		c.debug("adopted platform device id", "device_id", env.DeviceID)
	}

	state := resp.Meta.CurrentApplicationState
	if state == "" {
		return ErrEmptyApplicationState
	}
	if state == wire.StateSuspended || state == wire.StateDisabled {
		return fmt.Errorf("%w: %s", ErrSessionUnrecoverable, state)
	}

	c.mu.Lock()
	c.env = env
	c.state = wire.StateChangePair{Current: state}
	c.mu.Unlock()

	list, err := c.GetComponents(ctx)
	if err != nil {
		return fmt.Errorf("component query: %w", err)
	}
	if err := c.discover(list); err != nil {
		return err
	}

	// Prime every component's state. Best effort: the sync policy
	// reacts to whatever actually arrives.
	for _, dev := range c.Devices().snapshot() {
		_, _ = dev.Query(ctx)
	}
	return nil
}

// State returns the current and previous application state.
func (c *Controller) State() wire.StateChangePair {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Environment returns the platform environment fetched during
// initialization.
func (c *Controller) Environment() *wire.EnvironmentData {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.env
}

// Activation returns the flags captured with the last ACTIVE
// transition.
func (c *Controller) Activation() ActivationInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activation
}

// Online reports the application-declared willingness to serve.
func (c *Controller) Online() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.online
}

// handleMessage routes one inbound frame: session timeout detection,
// application state bookkeeping, component state routing, and finally
// the raw message callback.
func (c *Controller) handleMessage(f *wire.Frame) {
	if f.Meta.MessageCode == wire.CodeSessionTimeout {
		c.mu.Lock()
		onTimeout := c.onSessionTimeout
		c.mu.Unlock()
		if onTimeout != nil {
			onTimeout()
		}
	}

	state := f.Meta.CurrentApplicationState
	if state == "" {
		c.notifyError(fmt.Errorf("inbound frame: %w", ErrEmptyApplicationState))
		return
	}

	c.mu.Lock()
	prev := c.state.Current
	stateChanged := state != prev
	if stateChanged {
		c.state = wire.StateChangePair{Current: state, Previous: prev}
		// The outstanding state request, if any, has concluded.
		c.pendingStateChange = false
	}
	online := c.online
	pair := c.state
	onStateChange := c.onStateChange
	onActivated := c.onActivated
	onDeactivated := c.onDeactivated
	c.mu.Unlock()

	if stateChanged {
		c.debug("application state changed",
			"from", string(prev), "to", string(state))
		if onStateChange != nil {
			onStateChange(pair)
		}

		switch state {
		case wire.StateUnavailable:
			c.requeryComponents()
			if online {
				go c.syncState()
			}
		case wire.StateActive:
			info := activationInfo(f)
			c.mu.Lock()
			c.activation = info
			c.mu.Unlock()
			if onActivated != nil {
				onActivated(info)
			}
		}

		if prev == wire.StateActive {
			for _, dev := range c.Devices().snapshot() {
				dev.HandleDeactivated()
			}
			if onDeactivated != nil {
				onDeactivated()
			}
		}
	}

	c.routeToComponent(f, online)

	c.mu.Lock()
	onMessage := c.onMessage
	c.mu.Unlock()
	if onMessage != nil {
		onMessage(f)
	}
}

// routeToComponent applies a component-addressed frame and reacts to an
// actual state movement.
func (c *Controller) routeToComponent(f *wire.Frame, online bool) {
	if f.Meta.ComponentID == nil {
		return
	}
	dev := c.Component(*f.Meta.ComponentID)
	if dev == nil {
		return
	}

	beforeReady, beforeStatus := dev.Ready(), dev.Status()
	dev.UpdateState(f)
	if dev.Ready() == beforeReady && dev.Status() == beforeStatus {
		return
	}

	c.mu.Lock()
	onComponentChange := c.onComponentChange
	c.mu.Unlock()
	if onComponentChange != nil {
		onComponentChange(dev)
	}

	// Unsolicited reports and explicit query responses feed the sync
	// policy; responses to commands do not, their callers react.
	unsolicited := f.Meta.RequestID == "" || f.Meta.Directive == wire.DirectiveQuery
	if unsolicited && online {
		go c.syncState()
	}
}

// activationInfo extracts the activation flags from an ACTIVE frame.
func activationInfo(f *wire.Frame) ActivationInfo {
	var info ActivationInfo
	if f.Payload == nil || f.Payload.ApplicationState == nil {
		return info
	}
	body := f.Payload.ApplicationState
	info.MultiTenant = body.ExecutionMode == wire.ExecutionModeMultiTenant
	info.AccessibleMode = body.AccessibleMode
	info.Language = body.LanguageID
	info.ExecutionOptions = body.ExecutionOptions
	return info
}

// requeryComponents refreshes every component's state in the
// background. Best effort.
func (c *Controller) requeryComponents() {
	devices := c.Devices().snapshot()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), backgroundOpTimeout)
		defer cancel()
		for _, dev := range devices {
			_, _ = dev.Query(ctx)
		}
	}()
}

// Close stops every component watchdog and closes the connection with
// the normal close code, ending the session.
func (c *Controller) Close(reason string) error {
	for _, dev := range c.Devices().snapshot() {
		dev.StopWatchdog()
	}
	return c.transport.Close(0, reason)
}

// notifyError reports a non-fatal error.
func (c *Controller) notifyError(err error) {
	c.mu.Lock()
	onError := c.onError
	c.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

// debug writes operational debug output when a logger is attached.
func (c *Controller) debug(msg string, args ...any) {
	c.mu.Lock()
	logger := c.logger
	c.mu.Unlock()
	if logger != nil {
		logger.Debug(msg, args...)
	}
}
