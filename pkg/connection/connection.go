package connection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/open-cuss/cuss2-go/pkg/auth"
	"github.com/open-cuss/cuss2-go/pkg/log"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// ErrAlreadyConnected is returned by Connect on a live connection.
var ErrAlreadyConnected = errors.New("already connected")

// Config configures a platform connection.
type Config struct {
	// BaseURL is the platform base URL (http, https, ws or wss).
	BaseURL string

	// TokenURL overrides the default token endpoint (<BaseURL>/oauth/token).
	TokenURL string

	// DeviceID is the kiosk device identifier. Leave empty to adopt the
	// platform-reported identifier after environment discovery.
	DeviceID string

	// ClientID and ClientSecret are the application credentials.
	ClientID     string
	ClientSecret string

	// Retry tunes the open-attempt retry loop.
	Retry RetryConfig

	// Logger receives operational debug output (optional).
	Logger *slog.Logger

	// ProtocolLogger receives protocol events (optional).
	ProtocolLogger log.Logger
}

// socket is the subset of *websocket.Conn the connection uses.
// Tests substitute a fake.
type socket interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// dialFunc establishes a socket. Injectable for tests.
type dialFunc func(ctx context.Context, url string, header http.Header) (socket, error)

// Connection owns the duplex socket, the token lifecycle and
// request/response correlation.
type Connection struct {
	mu sync.RWMutex

	cfg       Config
	socketURL string
	connID    string

	authorizer *auth.Authorizer
	refresher  *auth.Refresher

	// Current bearer token, replaced by the refresher.
	token string

	// Device identifier; adopted from the platform when unset.
	deviceID string

	// Live socket (at most one).
	sock socket
	dial dialFunc

	// Pending requests awaiting correlated responses.
	pending   map[string]chan *wire.Frame
	pendingMu sync.Mutex

	// Lifecycle
	closing   atomic.Bool
	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup

	// Callbacks
	onOpen    func()
	onPing    func()
	onAck     func(code string)
	onMessage func(*wire.Frame)
	onError   func(error)
	onClose   func(code int, reason string)

	logger *slog.Logger
	plog   log.Logger
}

// New creates a connection from the configuration. It does not touch the
// network; call Connect to authenticate and open the socket.
func New(cfg Config) (*Connection, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client credentials are required")
	}

	socketURL, err := SocketURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}

	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = wire.UnsetDeviceID
	}

	c := &Connection{
		cfg:       cfg,
		socketURL: socketURL,
		connID:    uuid.NewString(),
		deviceID:  deviceID,
		dial:      defaultDial,
		pending:   make(map[string]chan *wire.Frame),
		closeCh:   make(chan struct{}),
		logger:    cfg.Logger,
		plog:      cfg.ProtocolLogger,
	}
	c.authorizer = auth.NewAuthorizer(
		TokenURL(cfg.BaseURL, cfg.TokenURL), cfg.ClientID, cfg.ClientSecret)
	c.refresher = auth.NewRefresher(c.authorizer)
	c.refresher.OnToken(func(t *auth.Token) {
		c.mu.Lock()
		c.token = t.AccessToken
		c.mu.Unlock()
		c.debug("token refreshed", "expires_in", t.ExpiresIn)
	})
	c.refresher.OnError(func(err error) {
		c.debug("token refresh failed", "error", err)
		c.notifyError(fmt.Errorf("token refresh failed: %w", err))
	})

	return c, nil
}

// ConnectionID returns the unique identifier of this connection.
func (c *Connection) ConnectionID() string {
	return c.connID
}

// SocketURL returns the derived platform socket URL.
func (c *Connection) SocketURL() string {
	return c.socketURL
}

// DeviceID returns the current device identifier.
func (c *Connection) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.deviceID
}

// SetDeviceID replaces the device identifier. The session controller
// calls this after adopting the platform-reported identifier.
func (c *Connection) SetDeviceID(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deviceID = id
}

// AccessToken returns the current bearer token.
func (c *Connection) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// IsConnected returns true while a socket is open.
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sock != nil && !c.closing.Load()
}

// OnOpen sets the callback fired once the socket is established.
func (c *Connection) OnOpen(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onOpen = fn
}

// OnPing sets the callback fired for each platform heartbeat.
func (c *Connection) OnPing(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPing = fn
}

// OnAck sets the callback fired for acknowledgement frames.
func (c *Connection) OnAck(fn func(code string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAck = fn
}

// OnMessage sets the callback fired for every decoded inbound frame.
func (c *Connection) OnMessage(fn func(*wire.Frame)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMessage = fn
}

// OnError sets the callback fired for non-fatal errors (malformed
// frames, refresh failures).
func (c *Connection) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError = fn
}

// OnClose sets the callback fired exactly once when the connection ends.
func (c *Connection) OnClose(fn func(code int, reason string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onClose = fn
}

// Connect authenticates, starts the token refresher, and opens the
// socket, retrying with exponential backoff. Authentication failures
// propagate immediately without retry.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.RLock()
	connected := c.sock != nil
	c.mu.RUnlock()
	if connected {
		return ErrAlreadyConnected
	}

	token, err := c.authorizer.Authorize(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.token = token.AccessToken
	c.mu.Unlock()
	c.refresher.Start(token)

	backoff := NewBackoff(c.cfg.Retry)
	maxAttempts := c.cfg.Retry.withDefaults().MaxAttempts

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		header := http.Header{}
		header.Set("Authorization", "Bearer "+c.AccessToken())

		sock, err := c.dial(ctx, c.socketURL, header)
		if err == nil {
			c.mu.Lock()
			c.sock = sock
			onOpen := c.onOpen
			c.mu.Unlock()

			c.wg.Add(1)
			go c.readLoop(sock)

			c.debug("socket open", "url", c.socketURL, "attempt", attempt)
			c.logState("", "OPEN")
			if onOpen != nil {
				onOpen()
			}
			return nil
		}

		lastErr = err
		if isFatalDialError(err) {
			c.refresher.Stop()
			return err
		}

		delay := backoff.Next()
		c.debug("socket open failed", "attempt", attempt, "retry_in", delay, "error", err)

		select {
		case <-ctx.Done():
			c.refresher.Stop()
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	c.refresher.Stop()
	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, maxAttempts, lastErr)
}

// isFatalDialError classifies open failures that must not be retried:
// credential rejections and operator-initiated (normal) closes.
func isFatalDialError(err error) bool {
	var authErr *auth.AuthenticationError
	if errors.As(err, &authErr) {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure)
}

// defaultDial opens a websocket to the platform.
func defaultDial(ctx context.Context, url string, header http.Header) (socket, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 45 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, url, header)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized ||
			resp.StatusCode == http.StatusForbidden) {
			return nil, &auth.AuthenticationError{StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return conn, nil
}

// Send stamps metadata and writes the frame, filling the token and
// device id only if absent. It is a no-op when no socket is open.
func (c *Connection) Send(f *wire.Frame) error {
	c.mu.RLock()
	sock := c.sock
	c.mu.RUnlock()
	if sock == nil || c.closing.Load() {
		return nil
	}

	c.stampMeta(f, false)
	return c.writeFrame(sock, f)
}

// SendAndGetResponse stamps metadata (always overwriting the token),
// registers a one-shot waiter keyed by the frame's request identifier,
// writes the frame, and waits for the correlated response or connection
// close. Responses with a critical message code are returned as a
// *ResponseError wrapping the full response.
func (c *Connection) SendAndGetResponse(ctx context.Context, f *wire.Frame) (*wire.Frame, error) {
	c.mu.RLock()
	sock := c.sock
	c.mu.RUnlock()
	if sock == nil || c.closing.Load() {
		return nil, ErrNotConnected
	}

	c.stampMeta(f, true)
	requestID := f.Meta.RequestID

	respCh := make(chan *wire.Frame, 1)
	c.pendingMu.Lock()
	c.pending[requestID] = respCh
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, requestID)
		c.pendingMu.Unlock()
	}()

	if err := c.writeFrame(sock, f); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closeCh:
		return nil, ErrConnectionClosed
	case resp, ok := <-respCh:
		if !ok {
			return nil, ErrConnectionClosed
		}
		if resp.Meta.MessageCode.IsCritical() {
			return nil, &ResponseError{Code: resp.Meta.MessageCode, Response: resp}
		}
		return resp, nil
	}
}

// stampMeta injects the request id, token and device id. The token is
// overwritten when overwriteToken is set; the device id is only filled
// when absent or still the sentinel.
func (c *Connection) stampMeta(f *wire.Frame, overwriteToken bool) {
	if f.Meta.RequestID == "" {
		f.Meta.RequestID = wire.NewRequestID()
	}

	c.mu.RLock()
	token := c.token
	deviceID := c.deviceID
	c.mu.RUnlock()

	if overwriteToken || f.Meta.OAuthToken == "" {
		f.Meta.OAuthToken = token
	}
	if f.Meta.DeviceID == "" || f.Meta.DeviceID == wire.UnsetDeviceID {
		f.Meta.DeviceID = deviceID
	}
}

// writeFrame encodes and writes one frame.
func (c *Connection) writeFrame(sock socket, f *wire.Frame) error {
	data, err := wire.EncodeFrame(f)
	if err != nil {
		return err
	}
	if err := sock.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	c.logFrame(log.DirectionOut, f, len(data))
	return nil
}

// Close cancels the token refresher and closes the socket. A zero code
// closes with the normal close code (terminal, no retry).
func (c *Connection) Close(code int, reason string) error {
	if code == 0 {
		code = websocket.CloseNormalClosure
	}
	c.teardown(code, reason, true)
	return nil
}

// teardown runs the close sequence exactly once.
func (c *Connection) teardown(code int, reason string, sendClose bool) {
	c.closeOnce.Do(func() {
		c.closing.Store(true)
		c.refresher.Stop()

		c.mu.Lock()
		sock := c.sock
		c.sock = nil
		onClose := c.onClose
		c.mu.Unlock()

		if sock != nil {
			if sendClose {
				deadline := time.Now().Add(time.Second)
				_ = sock.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(code, reason), deadline)
			}
			_ = sock.Close()
		}

		close(c.closeCh)
		c.failPending()

		c.debug("connection closed", "code", code, "reason", reason)
		c.logState("OPEN", "CLOSED")
		if onClose != nil {
			onClose(code, reason)
		}
	})
}

// failPending releases every correlated waiter with a closed channel.
func (c *Connection) failPending() {
	c.pendingMu.Lock()
	defer c.pendingMu.Unlock()
	for _, ch := range c.pending {
		close(ch)
	}
	c.pending = make(map[string]chan *wire.Frame)
}

// readLoop reads frames until the socket fails or the connection closes.
func (c *Connection) readLoop(sock socket) {
	defer c.wg.Done()

	for {
		_, data, err := sock.ReadMessage()
		if err != nil {
			if c.closing.Load() {
				return
			}
			code, reason := closeDetails(err)
			c.teardown(code, reason, false)
			return
		}
		c.handleInbound(sock, data)
	}
}

// closeDetails extracts the close code and reason from a read error.
func closeDetails(err error) (int, string) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return closeErr.Code, closeErr.Text
	}
	return websocket.CloseAbnormalClosure, err.Error()
}

// handleInbound classifies and dispatches one inbound frame.
// Malformed frames are reported and dropped; the socket stays alive.
func (c *Connection) handleInbound(sock socket, data []byte) {
	frameType, err := wire.PeekFrameType(data)
	if err != nil {
		c.logError(err, "classify inbound frame")
		c.notifyError(fmt.Errorf("malformed frame: %w", err))
		return
	}

	switch frameType {
	case wire.FrameTypeHeartbeat:
		if pong, err := wire.EncodePong(); err == nil {
			_ = sock.WriteMessage(websocket.TextMessage, pong)
		}
		c.logControl(log.ControlPing, "")
		c.mu.RLock()
		onPing := c.onPing
		c.mu.RUnlock()
		if onPing != nil {
			onPing()
		}

	case wire.FrameTypeAck:
		code, err := wire.DecodeAckCode(data)
		if err != nil {
			c.notifyError(err)
			return
		}
		c.logControl(log.ControlAck, code)
		c.mu.RLock()
		onAck := c.onAck
		c.mu.RUnlock()
		if onAck != nil {
			onAck(code)
		}

	case wire.FrameTypeMessage:
		f, err := wire.DecodeFrame(data)
		if err != nil {
			c.logError(err, "decode inbound frame")
			c.notifyError(fmt.Errorf("malformed frame: %w", err))
			return
		}
		c.logFrame(log.DirectionIn, f, len(data))

		// Resolve the correlated waiter, if any. Each waiter is
		// single-use: removed before delivery.
		if id := f.Meta.RequestID; id != "" {
			c.pendingMu.Lock()
			ch, ok := c.pending[id]
			if ok {
				delete(c.pending, id)
			}
			c.pendingMu.Unlock()
			if ok {
				ch <- f
			}
		}

		c.mu.RLock()
		onMessage := c.onMessage
		c.mu.RUnlock()
		if onMessage != nil {
			onMessage(f)
		}
	}
}

// notifyError reports a non-fatal error to the error callback.
func (c *Connection) notifyError(err error) {
	c.mu.RLock()
	onError := c.onError
	c.mu.RUnlock()
	if onError != nil {
		onError(err)
	}
}

// debug writes operational debug output when a logger is configured.
func (c *Connection) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// logFrame records a protocol frame event.
func (c *Connection) logFrame(dir log.Direction, f *wire.Frame, size int) {
	if c.plog == nil {
		return
	}
	c.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    dir,
		Category:     log.CategoryFrame,
		DeviceID:     c.DeviceID(),
		Frame: &log.FrameEvent{
			RequestID:   f.Meta.RequestID,
			Directive:   string(f.Meta.Directive),
			ComponentID: f.Meta.ComponentID,
			MessageCode: string(f.Meta.MessageCode),
			Size:        size,
		},
	})
}

// logControl records a heartbeat or acknowledgement event.
func (c *Connection) logControl(ctrlType log.ControlType, ackCode string) {
	if c.plog == nil {
		return
	}
	c.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Category:     log.CategoryControl,
		DeviceID:     c.DeviceID(),
		Control:      &log.ControlEvent{Type: ctrlType, AckCode: ackCode},
	})
}

// logState records a connection state change event.
func (c *Connection) logState(oldState, newState string) {
	if c.plog == nil {
		return
	}
	c.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Category:     log.CategoryState,
		DeviceID:     c.DeviceID(),
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: oldState,
			NewState: newState,
		},
	})
}

// logError records an error event.
func (c *Connection) logError(err error, context string) {
	if c.plog == nil {
		return
	}
	c.plog.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: c.connID,
		Direction:    log.DirectionIn,
		Category:     log.CategoryError,
		DeviceID:     c.DeviceID(),
		Error:        &log.ErrorEventData{Message: err.Error(), Context: context},
	})
}
