package session

import (
	"context"

	"github.com/open-cuss/cuss2-go/pkg/connection"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// PlatformTransport is the connection surface the controller drives.
// *connection.Connection satisfies it; tests substitute a fake.
type PlatformTransport interface {
	Connect(ctx context.Context) error
	Send(f *wire.Frame) error
	SendAndGetResponse(ctx context.Context, f *wire.Frame) (*wire.Frame, error)
	Close(code int, reason string) error
	IsConnected() bool
	DeviceID() string
	SetDeviceID(id string)
	OnOpen(fn func())
	OnMessage(fn func(*wire.Frame))
	OnError(fn func(error))
	OnClose(fn func(code int, reason string))
}

var _ PlatformTransport = (*connection.Connection)(nil)
