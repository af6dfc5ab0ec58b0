package component

import (
	"context"

	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// API is the command surface components use to reach the platform. The
// session controller implements it; components never touch the socket.
type API interface {
	// Enable asks the platform to start delivering passenger input from
	// the peripheral.
	Enable(ctx context.Context, componentID int) (*wire.Frame, error)

	// Disable stops passenger input from the peripheral.
	Disable(ctx context.Context, componentID int) (*wire.Frame, error)

	// Cancel aborts the peripheral's in-progress operation.
	Cancel(ctx context.Context, componentID int) (*wire.Frame, error)

	// Query requests the peripheral's current state and status.
	Query(ctx context.Context, componentID int) (*wire.Frame, error)

	// Setup pushes preparatory data records (pectabs, templates) to the
	// peripheral.
	Setup(ctx context.Context, componentID int, records []wire.DataRecord) (*wire.Frame, error)

	// Send pushes operational data records (print streams, illumination
	// commands) to the peripheral.
	Send(ctx context.Context, componentID int, records []wire.DataRecord) (*wire.Frame, error)
}

// Device is the surface the session controller routes inbound frames
// to and drives during state synchronization. Both Component and its
// composite variants satisfy it.
type Device interface {
	ID() int
	Kind() Kind
	Required() bool
	Ready() bool
	Enabled() bool
	Status() wire.MessageCode
	UpdateState(f *wire.Frame)
	Enable(ctx context.Context) (*wire.Frame, error)
	Disable(ctx context.Context) (*wire.Frame, error)
	Query(ctx context.Context) (*wire.Frame, error)
	HandleDeactivated()
	StopWatchdog()
}
