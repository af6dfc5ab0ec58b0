package wire

import (
	"fmt"

	"github.com/google/uuid"
)

// UnsetDeviceID is the sentinel device identifier used before the
// platform-reported identifier is known.
const UnsetDeviceID = "00000000-0000-0000-0000-000000000000"

// NewRequestID generates a fresh request identifier.
func NewRequestID() string {
	return uuid.NewString()
}

// Meta is the metadata block carried by every frame.
type Meta struct {
	// RequestID correlates a response with its originating request.
	// Platform-initiated (unsolicited) frames carry none.
	RequestID string `json:"requestID,omitempty"`

	// Directive names the requested operation (outbound frames only).
	Directive Directive `json:"directive,omitempty"`

	// ComponentID targets a peripheral, when the directive needs one.
	ComponentID *int `json:"componentID,omitempty"`

	// DeviceID identifies the kiosk device.
	DeviceID string `json:"deviceID,omitempty"`

	// OAuthToken is the bearer token, injected by the connection.
	OAuthToken string `json:"oauthToken,omitempty"`

	// PassengerSessionID scopes a frame to one passenger interaction.
	PassengerSessionID string `json:"passengerSessionID,omitempty"`

	// MessageCode is the result code (inbound responses).
	MessageCode MessageCode `json:"messageCode,omitempty"`

	// ComponentState reports the targeted peripheral's readiness.
	ComponentState ComponentState `json:"componentState,omitempty"`

	// CurrentApplicationState reports the platform's view of the
	// application state at the time the frame was produced.
	CurrentApplicationState ApplicationState `json:"currentApplicationState,omitempty"`
}

// Frame is one message on the platform socket.
type Frame struct {
	Meta    Meta     `json:"meta"`
	Payload *Payload `json:"payload,omitempty"`
}

// Validate checks that an outbound frame carries the required metadata.
func (f *Frame) Validate() error {
	if f.Meta.RequestID == "" {
		return fmt.Errorf("frame missing requestID")
	}
	if f.Meta.Directive == "" {
		return fmt.Errorf("frame missing directive")
	}
	return nil
}

// Payload holds exactly one operation-specific body. Which field is
// populated selects the operation; never more than one is set.
type Payload struct {
	ApplicationState    *ApplicationStateBody  `json:"applicationState,omitempty"`
	ApplicationTransfer *ApplicationTransfer   `json:"applicationTransfer,omitempty"`
	DataRecords         []DataRecord           `json:"dataRecords,omitempty"`
	ScreenResolution    *ScreenResolution      `json:"screenResolution,omitempty"`
	IlluminationData    *IlluminationData      `json:"illuminationData,omitempty"`
	BaggageData         *BaggageData           `json:"baggageData,omitempty"`
	PaymentData         *PaymentData           `json:"paymentData,omitempty"`
	BiometricData       *BiometricData         `json:"biometricData,omitempty"`
	EnvironmentData     *EnvironmentData       `json:"environmentLevel,omitempty"`
	ComponentList       []EnvironmentComponent `json:"componentList,omitempty"`
}

// ApplicationStateBody carries application state in a state-request frame
// or an activation notification.
type ApplicationStateBody struct {
	// ApplicationStateCode is the requested or reported state.
	ApplicationStateCode ApplicationState `json:"applicationStateCode"`

	// StateChangeReason is free-text context for the request.
	StateChangeReason string `json:"applicationStateChangeReasonCode,omitempty"`

	// ExecutionMode distinguishes single- from multi-application mode.
	// "MAM" indicates the kiosk is running multiple tenants.
	ExecutionMode string `json:"executionMode,omitempty"`

	// AccessibleMode is set when the passenger requested accessibility aids.
	AccessibleMode bool `json:"accessibleMode,omitempty"`

	// LanguageID is the passenger-selected language (e.g. "en-US").
	LanguageID string `json:"languageID,omitempty"`

	// ExecutionOptions carries operator-supplied launch parameters.
	ExecutionOptions string `json:"executionOptions,omitempty"`
}

// ExecutionModeMultiTenant is the execution mode reported when several
// applications share the kiosk.
const ExecutionModeMultiTenant = "MAM"

// ApplicationTransfer asks the platform to hand the session to another
// application.
type ApplicationTransfer struct {
	TargetApplicationID string `json:"targetApplicationID"`
	TransferData        string `json:"transferData,omitempty"`
}

// DataRecord is one unit of peripheral data (a print stream, a read
// result, an SSML announcement, ...).
type DataRecord struct {
	Data     string   `json:"data"`
	DsTypes  []DsType `json:"dsTypes,omitempty"`
	Encoding string   `json:"encoding,omitempty"`
}

// ScreenResolution reports the kiosk display geometry.
type ScreenResolution struct {
	Vertical   int `json:"vertical"`
	Horizontal int `json:"horizontal"`
}

// IlluminationData drives an illumination peripheral.
type IlluminationData struct {
	LightColor   *LightColor `json:"lightColor,omitempty"`
	Duration     int         `json:"duration,omitempty"`
	BlinkingRate int         `json:"blinkingRate,omitempty"`
}

// LightColor is an RGB triple.
type LightColor struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

// BaggageData carries bag drop measurements and conveyance state.
type BaggageData struct {
	BaggageMeasurements *BaggageMeasurements `json:"baggageMeasurements,omitempty"`
	BagTagNumbers       []string             `json:"bagTagNumbers,omitempty"`
	HasBag              bool                 `json:"hasBag,omitempty"`
}

// BaggageMeasurements holds scale and volume readings.
type BaggageMeasurements struct {
	Weight int `json:"weight,omitempty"`
	Height int `json:"height,omitempty"`
	Length int `json:"length,omitempty"`
	Width  int `json:"width,omitempty"`
}

// PaymentData is an opaque payment peripheral exchange.
type PaymentData struct {
	Track1 string `json:"track1,omitempty"`
	Track2 string `json:"track2,omitempty"`
	Track3 string `json:"track3,omitempty"`
}

// BiometricData is an opaque biometric capture exchange.
type BiometricData struct {
	BiometricProviderID string `json:"biometricProviderID,omitempty"`
	Data                string `json:"data,omitempty"`
}
