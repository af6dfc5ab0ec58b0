package component

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/open-cuss/cuss2-go/pkg/connection"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// DefaultPollInterval is the default watchdog query interval.
const DefaultPollInterval = 10 * time.Second

var (
	_ Device = (*Component)(nil)
	_ Device = (*Printer)(nil)
)

// watchdog is one owned polling task. At most one per component.
type watchdog struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Component tracks one peripheral's readiness, status and enablement.
type Component struct {
	mu sync.Mutex

	id       int
	kind     Kind
	required bool

	state   wire.ComponentState
	status  wire.MessageCode
	enabled bool

	// Outstanding command calls. Incremented before dispatch,
	// decremented on completion or failure.
	pendingCalls int

	api API

	pollInterval time.Duration
	poller       *watchdog

	onReadyChange  []func(ready bool)
	onStatusChange []func(code wire.MessageCode)

	logger *slog.Logger
}

// New creates a component in the UNAVAILABLE state with status OK.
func New(id int, kind Kind, required bool, api API) *Component {
	return &Component{
		id:           id,
		kind:         kind,
		required:     required,
		state:        wire.ComponentUnavailable,
		status:       wire.CodeOK,
		api:          api,
		pollInterval: DefaultPollInterval,
	}
}

// ID returns the peripheral identifier.
func (c *Component) ID() int { return c.id }

// Kind returns the classified device kind.
func (c *Component) Kind() Kind { return c.kind }

// Required reports whether the component gates application availability.
func (c *Component) Required() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.required
}

// SetRequired marks the component as gating application availability.
func (c *Component) SetRequired(required bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.required = required
}

// SetPollInterval tunes the watchdog interval. Zero or negative
// disables polling.
func (c *Component) SetPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pollInterval = d
}

// SetLogger attaches a debug logger.
func (c *Component) SetLogger(l *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = l
}

// State returns the current readiness state.
func (c *Component) State() wire.ComponentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Ready reports whether the peripheral is READY.
func (c *Component) Ready() bool {
	return c.State() == wire.ComponentReady
}

// Status returns the last reported status code.
func (c *Component) Status() wire.MessageCode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Enabled reports whether passenger input is currently enabled.
func (c *Component) Enabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

// Pending reports whether any command call is still outstanding.
func (c *Component) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingCalls > 0
}

// PendingCalls returns the number of outstanding command calls.
func (c *Component) PendingCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingCalls
}

// OnReadyStateChange registers a listener fired on every readiness
// transition.
func (c *Component) OnReadyStateChange(fn func(ready bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onReadyChange = append(c.onReadyChange, fn)
}

// OnStatusChange registers a listener fired on every status code change.
func (c *Component) OnStatusChange(fn func(code wire.MessageCode)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onStatusChange = append(c.onStatusChange, fn)
}

// HandleDeactivated clears the enabled flag without a platform round
// trip. The session controller calls it when the application leaves
// ACTIVE, since the platform revokes all enablement at that boundary.
func (c *Component) HandleDeactivated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enabled = false
}

// UpdateState applies one inbound frame to the state machine.
func (c *Component) UpdateState(f *wire.Frame) {
	c.applyState(f.Meta.ComponentState, f.Meta.MessageCode)
}

// applyState runs the state machine transition and fires listeners.
func (c *Component) applyState(state wire.ComponentState, code wire.MessageCode) {
	c.mu.Lock()

	stateChanged := false
	if state == wire.ComponentReady || state == wire.ComponentUnavailable {
		if state != c.state {
			c.state = state
			stateChanged = true
			if state != wire.ComponentReady {
				// Leaving READY always revokes enablement.
				c.enabled = false
			}
		}
	}

	statusChanged := false
	if code != "" && code != c.status {
		c.status = code
		statusChanged = true
	}

	ready := c.state == wire.ComponentReady
	if ready {
		c.stopWatchdogLocked()
	} else if c.required && c.poller == nil && c.pollInterval > 0 {
		c.startWatchdogLocked()
	}

	readyListeners := append([]func(bool){}, c.onReadyChange...)
	statusListeners := append([]func(wire.MessageCode){}, c.onStatusChange...)
	status := c.status
	c.mu.Unlock()

	if stateChanged {
		c.debug("readiness changed", "ready", ready)
		for _, fn := range readyListeners {
			fn(ready)
		}
	}
	if statusChanged {
		c.debug("status changed", "status", string(status))
		for _, fn := range statusListeners {
			fn(status)
		}
	}
}

// startWatchdogLocked launches the polling task. Caller holds c.mu.
func (c *Component) startWatchdogLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	w := &watchdog{cancel: cancel, done: make(chan struct{})}
	c.poller = w
	go c.watch(ctx, w, c.pollInterval)
}

// stopWatchdogLocked cancels the polling task. Caller holds c.mu.
func (c *Component) stopWatchdogLocked() {
	if c.poller != nil {
		c.poller.cancel()
		c.poller = nil
	}
}

// StopWatchdog cancels the polling task, if any. The session controller
// calls this for every component on teardown.
func (c *Component) StopWatchdog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopWatchdogLocked()
}

// watch issues a status query every interval until the component is
// ready or the task is cancelled. Query results are ignored here; the
// authoritative state arrives through inbound frame routing.
func (c *Component) watch(ctx context.Context, w *watchdog, interval time.Duration) {
	defer close(w.done)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if c.Ready() {
			c.clearWatchdog(w)
			return
		}

		qctx, cancel := context.WithTimeout(ctx, interval)
		_, _ = c.api.Query(qctx, c.id)
		cancel()

		if c.Ready() {
			c.clearWatchdog(w)
			return
		}
		timer.Reset(interval)
	}
}

// clearWatchdog drops the poller handle if w still owns it.
func (c *Component) clearWatchdog(w *watchdog) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.poller == w {
		c.poller.cancel()
		c.poller = nil
	}
}

// call wraps one outward command with pending-call accounting. The
// counter returns to its pre-call value on both paths.
func (c *Component) call(fn func() (*wire.Frame, error)) (*wire.Frame, error) {
	c.mu.Lock()
	c.pendingCalls++
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.pendingCalls--
		c.mu.Unlock()
	}()
	return fn()
}

// Enable asks the platform to deliver passenger input from the
// peripheral. On success the enabled flag is set.
func (c *Component) Enable(ctx context.Context) (*wire.Frame, error) {
	resp, err := c.call(func() (*wire.Frame, error) {
		return c.api.Enable(ctx, c.id)
	})
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
	return resp, nil
}

// Disable stops passenger input. It always ends with the enabled flag
// cleared. An OUT_OF_SEQUENCE rejection means the peripheral was
// already disabled and is absorbed as a success.
func (c *Component) Disable(ctx context.Context) (*wire.Frame, error) {
	resp, err := c.call(func() (*wire.Frame, error) {
		return c.api.Disable(ctx, c.id)
	})

	c.mu.Lock()
	c.enabled = false
	c.mu.Unlock()

	if err != nil {
		var respErr *connection.ResponseError
		if errors.As(err, &respErr) && respErr.Code == wire.CodeOutOfSequence {
			return respErr.Response, nil
		}
		return nil, err
	}
	return resp, nil
}

// Cancel aborts the peripheral's in-progress operation.
func (c *Component) Cancel(ctx context.Context) (*wire.Frame, error) {
	return c.call(func() (*wire.Frame, error) {
		return c.api.Cancel(ctx, c.id)
	})
}

// Query requests the peripheral's current state and status.
func (c *Component) Query(ctx context.Context) (*wire.Frame, error) {
	return c.call(func() (*wire.Frame, error) {
		return c.api.Query(ctx, c.id)
	})
}

// Setup pushes preparatory data records to the peripheral.
func (c *Component) Setup(ctx context.Context, recs []wire.DataRecord) (*wire.Frame, error) {
	return c.call(func() (*wire.Frame, error) {
		return c.api.Setup(ctx, c.id, recs)
	})
}

// Send pushes operational data records to the peripheral.
func (c *Component) Send(ctx context.Context, recs []wire.DataRecord) (*wire.Frame, error) {
	return c.call(func() (*wire.Frame, error) {
		return c.api.Send(ctx, c.id, recs)
	})
}

// records wraps raw payload strings as data records.
func records(data ...string) []wire.DataRecord {
	out := make([]wire.DataRecord, 0, len(data))
	for _, d := range data {
		out = append(out, wire.DataRecord{Data: d})
	}
	return out
}

// debug writes operational debug output when a logger is attached.
func (c *Component) debug(msg string, args ...any) {
	c.mu.Lock()
	logger := c.logger
	c.mu.Unlock()
	if logger != nil {
		logger.Debug(msg, append([]any{"component", c.id, "kind", c.kind.String()}, args...)...)
	}
}
