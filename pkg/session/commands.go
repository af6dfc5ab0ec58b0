package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-cuss/cuss2-go/pkg/component"
	"github.com/open-cuss/cuss2-go/pkg/wire"
)

// ErrInvalidComponentID is raised for a negative component identifier.
var ErrInvalidComponentID = errors.New("component id must be non-negative")

// The controller is the command surface its components call through.
var _ component.API = (*Controller)(nil)

// peripheralCall runs one component-addressed round trip.
func (c *Controller) peripheralCall(ctx context.Context, directive wire.Directive, componentID int, payload *wire.Payload) (*wire.Frame, error) {
	if componentID < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidComponentID, componentID)
	}
	id := componentID
	f := &wire.Frame{
		Meta:    wire.Meta{Directive: directive, ComponentID: &id},
		Payload: payload,
	}
	return c.transport.SendAndGetResponse(ctx, f)
}

// Enable asks the platform to deliver passenger input from the
// peripheral.
func (c *Controller) Enable(ctx context.Context, componentID int) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveEnable, componentID, nil)
}

// Disable stops passenger input from the peripheral.
func (c *Controller) Disable(ctx context.Context, componentID int) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveDisable, componentID, nil)
}

// Offer presents the peripheral to the passenger without enabling
// input.
func (c *Controller) Offer(ctx context.Context, componentID int) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveOffer, componentID, nil)
}

// Cancel aborts the peripheral's in-progress operation.
func (c *Controller) Cancel(ctx context.Context, componentID int) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveCancel, componentID, nil)
}

// Query requests the peripheral's current state and status.
func (c *Controller) Query(ctx context.Context, componentID int) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveQuery, componentID, nil)
}

// Setup pushes preparatory data records to the peripheral.
func (c *Controller) Setup(ctx context.Context, componentID int, records []wire.DataRecord) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveSetup, componentID,
		&wire.Payload{DataRecords: records})
}

// Send pushes operational data records to the peripheral.
func (c *Controller) Send(ctx context.Context, componentID int, records []wire.DataRecord) (*wire.Frame, error) {
	return c.peripheralCall(ctx, wire.DirectiveSend, componentID,
		&wire.Payload{DataRecords: records})
}

// GetEnvironment fetches the platform environment.
func (c *Controller) GetEnvironment(ctx context.Context) (*wire.EnvironmentData, error) {
	f := &wire.Frame{Meta: wire.Meta{Directive: wire.DirectiveEnvironment}}
	resp, err := c.transport.SendAndGetResponse(ctx, f)
	if err != nil {
		return nil, err
	}
	if resp.Payload == nil || resp.Payload.EnvironmentData == nil {
		return nil, ErrEnvironmentMissing
	}
	return resp.Payload.EnvironmentData, nil
}

// GetComponents fetches the platform's peripheral inventory.
func (c *Controller) GetComponents(ctx context.Context) ([]wire.EnvironmentComponent, error) {
	f := &wire.Frame{Meta: wire.Meta{Directive: wire.DirectiveComponents}}
	resp, err := c.transport.SendAndGetResponse(ctx, f)
	if err != nil {
		return nil, err
	}
	if resp.Payload == nil {
		return nil, nil
	}
	return resp.Payload.ComponentList, nil
}

// StateRequest sends one raw application state request without the
// policy guards. Most callers want the Request* wrappers instead.
func (c *Controller) StateRequest(ctx context.Context, state wire.ApplicationState, reason string) (*wire.Frame, error) {
	f := &wire.Frame{
		Meta: wire.Meta{Directive: wire.DirectiveStateRequest},
		Payload: &wire.Payload{ApplicationState: &wire.ApplicationStateBody{
			ApplicationStateCode: state,
			StateChangeReason:    reason,
		}},
	}
	return c.transport.SendAndGetResponse(ctx, f)
}

// Transfer asks the platform to hand the passenger session to another
// application.
func (c *Controller) Transfer(ctx context.Context, targetApplicationID, transferData string) (*wire.Frame, error) {
	f := &wire.Frame{
		Meta: wire.Meta{Directive: wire.DirectiveTransfer},
		Payload: &wire.Payload{ApplicationTransfer: &wire.ApplicationTransfer{
			TargetApplicationID: targetApplicationID,
			TransferData:        transferData,
		}},
	}
	return c.transport.SendAndGetResponse(ctx, f)
}

// AnnouncementAPI groups the announcement component's playback
// commands.
type AnnouncementAPI struct {
	c *Controller
}

// Announcement returns the announcement command group.
func (c *Controller) Announcement() *AnnouncementAPI {
	return &AnnouncementAPI{c: c}
}

// Play starts speaking an SSML document on the announcement component.
func (a *AnnouncementAPI) Play(ctx context.Context, componentID int, ssml string) (*wire.Frame, error) {
	return a.c.peripheralCall(ctx, wire.DirectiveAnnouncementPlay, componentID,
		&wire.Payload{DataRecords: []wire.DataRecord{{
			Data:    ssml,
			DsTypes: []wire.DsType{wire.DsTypeSSML},
		}}})
}

// Pause pauses the current announcement.
func (a *AnnouncementAPI) Pause(ctx context.Context, componentID int) (*wire.Frame, error) {
	return a.c.peripheralCall(ctx, wire.DirectiveAnnouncementPause, componentID, nil)
}

// Resume resumes a paused announcement.
func (a *AnnouncementAPI) Resume(ctx context.Context, componentID int) (*wire.Frame, error) {
	return a.c.peripheralCall(ctx, wire.DirectiveAnnouncementResume, componentID, nil)
}

// Stop stops the current announcement.
func (a *AnnouncementAPI) Stop(ctx context.Context, componentID int) (*wire.Frame, error) {
	return a.c.peripheralCall(ctx, wire.DirectiveAnnouncementStop, componentID, nil)
}
