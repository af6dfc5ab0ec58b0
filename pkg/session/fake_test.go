package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// fakeTransport scripts platform responses and lets tests deliver
// unsolicited frames.
type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	deviceID  string
	sent      []*wire.Frame
	closed    bool
	closeCode int

	// respond scripts the answer to one round trip. The fake echoes
	// the request id into the response meta.
	respond func(f *wire.Frame) (*wire.Frame, error)

	onMessage func(*wire.Frame)
	onError   func(error)
	onClose   func(code int, reason string)
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{deviceID: wire.UnsetDeviceID}
}

func (t *fakeTransport) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.connected = true
	return nil
}

func (t *fakeTransport) Send(f *wire.Frame) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sent = append(t.sent, f)
	return nil
}

func (t *fakeTransport) SendAndGetResponse(ctx context.Context, f *wire.Frame) (*wire.Frame, error) {
	t.mu.Lock()
	t.sent = append(t.sent, f)
	respond := t.respond
	t.mu.Unlock()

	if respond == nil {
		return &wire.Frame{Meta: wire.Meta{RequestID: f.Meta.RequestID, MessageCode: wire.CodeOK}}, nil
	}
	resp, err := respond(f)
	if resp != nil && resp.Meta.RequestID == "" {
		resp.Meta.RequestID = f.Meta.RequestID
	}
	return resp, err
}

func (t *fakeTransport) Close(code int, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	t.closeCode = code
	return nil
}

func (t *fakeTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected && !t.closed
}

func (t *fakeTransport) DeviceID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.deviceID
}

func (t *fakeTransport) SetDeviceID(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.deviceID = id
}

func (t *fakeTransport) OnOpen(fn func())                      {}
func (t *fakeTransport) OnMessage(fn func(*wire.Frame))        { t.onMessage = fn }
func (t *fakeTransport) OnError(fn func(error))                { t.onError = fn }
func (t *fakeTransport) OnClose(fn func(code int, reason string)) { t.onClose = fn }

// deliver injects an unsolicited inbound frame.
func (t *fakeTransport) deliver(f *wire.Frame) {
	t.onMessage(f)
}

// sentFrames returns a copy of everything sent so far.
func (t *fakeTransport) sentFrames() []*wire.Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*wire.Frame(nil), t.sent...)
}

// stateRequests returns the requested application states, in order.
func (t *fakeTransport) stateRequests() []wire.ApplicationState {
	var out []wire.ApplicationState
	for _, f := range t.sentFrames() {
		if f.Meta.Directive == wire.DirectiveStateRequest &&
			f.Payload != nil && f.Payload.ApplicationState != nil {
			out = append(out, f.Payload.ApplicationState.ApplicationStateCode)
		}
	}
	return out
}

// testInventory is the standard scripted peripheral set: a bag-tag
// printer (1) linked to a feeder (2) and dispenser (3), a barcode
// reader (4) and an announcement unit (5).
func testInventory() []wire.EnvironmentComponent {
	return []wire.EnvironmentComponent{
		{
			ComponentID:        1,
			ComponentType:      wire.ComponentTypeMediaOutput,
			LinkedComponentIDs: []int{2, 3},
			ComponentCharacteristics: []wire.ComponentCharacteristics{
				{MediaTypesList: []wire.MediaType{wire.MediaBaggageTag}},
			},
		},
		{ComponentID: 2, ComponentType: wire.ComponentTypeFeeder},
		{ComponentID: 3, ComponentType: wire.ComponentTypeDispenser},
		{
			ComponentID:   4,
			ComponentType: wire.ComponentTypeDataInput,
			ComponentCharacteristics: []wire.ComponentCharacteristics{
				{DsTypesList: []wire.DsType{wire.DsTypeBarcode}},
			},
		},
		{ComponentID: 5, ComponentType: wire.ComponentTypeAnnouncement},
	}
}

// scriptPlatform answers environment, component and peripheral round
// trips the way a healthy platform would.
func scriptPlatform(state wire.ApplicationState, inventory []wire.EnvironmentComponent) func(*wire.Frame) (*wire.Frame, error) {
	return func(f *wire.Frame) (*wire.Frame, error) {
		switch f.Meta.Directive {
		case wire.DirectiveEnvironment:
			return &wire.Frame{
				Meta: wire.Meta{MessageCode: wire.CodeOK, CurrentApplicationState: state},
				Payload: &wire.Payload{EnvironmentData: &wire.EnvironmentData{
					DeviceID:       "9f41ce2b-0d35-4c2f-97d2-6f5a3b8e1c04",
					SessionTimeout: 120,
				}},
			}, nil
		case wire.DirectiveComponents:
			return &wire.Frame{
				Meta:    wire.Meta{MessageCode: wire.CodeOK, CurrentApplicationState: state},
				Payload: &wire.Payload{ComponentList: inventory},
			}, nil
		default:
			return &wire.Frame{Meta: wire.Meta{MessageCode: wire.CodeOK, CurrentApplicationState: state}}, nil
		}
	}
}

// newTestController starts a session against the standard inventory.
func newTestController(t *testing.T) (*Controller, *fakeTransport) {
	t.Helper()
	tr := newFakeTransport()
	tr.respond = scriptPlatform(wire.StateInitialize, testInventory())

	c := New(tr)
	c.SetPollInterval(0)
	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return c, tr
}

// appStateFrame builds an unsolicited application state report.
func appStateFrame(state wire.ApplicationState) *wire.Frame {
	return &wire.Frame{Meta: wire.Meta{CurrentApplicationState: state}}
}

// componentFrame builds an unsolicited component state report.
func componentFrame(id int, state wire.ComponentState, code wire.MessageCode, appState wire.ApplicationState) *wire.Frame {
	return &wire.Frame{Meta: wire.Meta{
		ComponentID:             &id,
		ComponentState:          state,
		MessageCode:             code,
		CurrentApplicationState: appState,
	}}
}

// waitFor polls a condition with a bounded wait.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}
