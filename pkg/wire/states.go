package wire

// ApplicationState is the platform-side application lifecycle state.
type ApplicationState string

const (
	// StateStopped indicates the application is not running.
	StateStopped ApplicationState = "STOPPED"

	// StateInitialize indicates the application is starting up.
	StateInitialize ApplicationState = "INITIALIZE"

	// StateUnavailable indicates the application cannot serve passengers.
	StateUnavailable ApplicationState = "UNAVAILABLE"

	// StateAvailable indicates the application is ready to be activated.
	StateAvailable ApplicationState = "AVAILABLE"

	// StateActive indicates the application owns the kiosk session.
	StateActive ApplicationState = "ACTIVE"

	// StateSuspended indicates the platform has suspended the application.
	StateSuspended ApplicationState = "SUSPENDED"

	// StateDisabled indicates the operator has disabled the application.
	StateDisabled ApplicationState = "DISABLED"

	// StateReload requests a full application reload.
	StateReload ApplicationState = "RELOAD"
)

// IsValid returns true if the state is one of the defined values.
func (s ApplicationState) IsValid() bool {
	switch s {
	case StateStopped, StateInitialize, StateUnavailable, StateAvailable,
		StateActive, StateSuspended, StateDisabled, StateReload:
		return true
	default:
		return false
	}
}

// ComponentState is the readiness of a single peripheral.
type ComponentState string

const (
	// ComponentUnavailable indicates the peripheral cannot be used.
	ComponentUnavailable ComponentState = "UNAVAILABLE"

	// ComponentReady indicates the peripheral is operational.
	ComponentReady ComponentState = "READY"
)

// StateChangePair holds the current and previous application state.
// The session controller replaces the whole pair atomically on each
// observed transition.
type StateChangePair struct {
	Current  ApplicationState
	Previous ApplicationState
}
