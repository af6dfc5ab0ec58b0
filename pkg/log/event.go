package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID uniquely identifies the connection (UUID).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// DeviceID is the kiosk device identifier, once known.
	DeviceID string `cbor:"5,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"6,keyasint,omitempty"`  // Decoded frames
	Control     *ControlEvent     `cbor:"7,keyasint,omitempty"`  // Heartbeat/ack
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"`  // Connection/application/component state
	Error       *ErrorEventData   `cbor:"9,keyasint,omitempty"`  // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a protocol frame (request or response).
	CategoryFrame Category = 0
	// CategoryControl indicates a heartbeat or acknowledgement.
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures one decoded protocol frame.
type FrameEvent struct {
	// RequestID correlates request/response pairs (empty for unsolicited).
	RequestID string `cbor:"1,keyasint,omitempty"`

	// Directive names the operation (outbound frames).
	Directive string `cbor:"2,keyasint,omitempty"`

	// ComponentID is the targeted peripheral, if any.
	ComponentID *int `cbor:"3,keyasint,omitempty"`

	// MessageCode is the result code (inbound frames).
	MessageCode string `cbor:"4,keyasint,omitempty"`

	// Size is the encoded frame size in bytes.
	Size int `cbor:"5,keyasint,omitempty"`
}

// ControlEvent captures heartbeat and acknowledgement traffic.
type ControlEvent struct {
	// Type of control exchange.
	Type ControlType `cbor:"1,keyasint"`

	// AckCode is the acknowledgement code, for ack events.
	AckCode string `cbor:"2,keyasint,omitempty"`
}

// ControlType indicates the type of control exchange.
type ControlType uint8

const (
	// ControlPing indicates an inbound heartbeat.
	ControlPing ControlType = 0
	// ControlPong indicates the heartbeat echo.
	ControlPong ControlType = 1
	// ControlAck indicates an acknowledgement frame.
	ControlAck ControlType = 2
)

// String returns the control type name.
func (c ControlType) String() string {
	switch c {
	case ControlPing:
		return "PING"
	case ControlPong:
		return "PONG"
	case ControlAck:
		return "ACK"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// ComponentID identifies the peripheral for component state changes.
	ComponentID *int `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a connection state change.
	StateEntityConnection StateEntity = 0
	// StateEntityApplication indicates an application state change.
	StateEntityApplication StateEntity = 1
	// StateEntityComponent indicates a peripheral state change.
	StateEntityComponent StateEntity = 2
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntityApplication:
		return "APPLICATION"
	case StateEntityComponent:
		return "COMPONENT"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Context describes what operation was being performed.
	Context string `cbor:"2,keyasint,omitempty"`
}
