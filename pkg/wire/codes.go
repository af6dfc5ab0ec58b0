package wire

// MessageCode is the result code carried in a response's meta block.
type MessageCode string

// General result codes.
const (
	CodeOK                    MessageCode = "OK"
	CodeCancelled             MessageCode = "CANCELLED"
	CodeWrongApplicationState MessageCode = "WRONG_APPLICATION_STATE"
	CodeOutOfSequence         MessageCode = "OUT_OF_SEQUENCE"
	CodeTimeout               MessageCode = "TIMEOUT"
	CodeSessionTimeout        MessageCode = "SESSION_TIMEOUT"
	CodeKillTimeout           MessageCode = "KILL_TIMEOUT"
	CodeSoftwareError         MessageCode = "SOFTWARE_ERROR"
	CodeCriticalSoftwareError MessageCode = "CRITICAL_SOFTWARE_ERROR"
	CodeFormatError           MessageCode = "FORMAT_ERROR"
	CodeLengthError           MessageCode = "LENGTH_ERROR"
	CodeDataMissing           MessageCode = "DATA_MISSING"
	CodeThresholdUsage        MessageCode = "THRESHOLD_USAGE"
	CodeThresholdError        MessageCode = "THRESHOLD_ERROR"
	CodeReleaseError          MessageCode = "RELEASE_ERROR"
	CodeTransferError         MessageCode = "TRANSFER_ERROR"
	CodeHardwareError         MessageCode = "HARDWARE_ERROR"
	CodeNotReachable          MessageCode = "NOT_REACHABLE"
	CodeNotResponding         MessageCode = "NOT_RESPONDING"
	CodeMediaPresent          MessageCode = "MEDIA_PRESENT"
	CodeMediaAbsent           MessageCode = "MEDIA_ABSENT"
)

// Baggage-handling fault codes reported by bag drop peripherals.
const (
	CodeBaggageFull                  MessageCode = "BAGGAGE_FULL"
	CodeBaggageUndetected            MessageCode = "BAGGAGE_UNDETECTED"
	CodeBaggageOversized             MessageCode = "BAGGAGE_OVERSIZED"
	CodeBaggageTooManyBags           MessageCode = "BAGGAGE_TOO_MANY_BAGS"
	CodeBaggageUnexpectedBag         MessageCode = "BAGGAGE_UNEXPECTED_BAG"
	CodeBaggageTooHigh               MessageCode = "BAGGAGE_TOO_HIGH"
	CodeBaggageTooLong               MessageCode = "BAGGAGE_TOO_LONG"
	CodeBaggageTooFlat               MessageCode = "BAGGAGE_TOO_FLAT"
	CodeBaggageTooShort              MessageCode = "BAGGAGE_TOO_SHORT"
	CodeBaggageInvalidData           MessageCode = "BAGGAGE_INVALID_DATA"
	CodeBaggageWeightOutOfRange      MessageCode = "BAGGAGE_WEIGHT_OUT_OF_RANGE"
	CodeBaggageJammed                MessageCode = "BAGGAGE_JAMMED"
	CodeBaggageEmergencyStop         MessageCode = "BAGGAGE_EMERGENCY_STOP"
	CodeBaggageRestless              MessageCode = "BAGGAGE_RESTLESS"
	CodeBaggageTransportBusy         MessageCode = "BAGGAGE_TRANSPORT_BUSY"
	CodeBaggageMistracked            MessageCode = "BAGGAGE_MISTRACKED"
	CodeBaggageUnexpectedChange      MessageCode = "BAGGAGE_UNEXPECTED_CHANGE"
	CodeBaggageInterferenceUser      MessageCode = "BAGGAGE_INTERFERENCE_USER"
	CodeBaggageIntrusionSafety       MessageCode = "BAGGAGE_INTRUSION_SAFETY"
	CodeBaggageNotConveyable         MessageCode = "BAGGAGE_NOT_CONVEYABLE"
	CodeBaggageIrregularBag          MessageCode = "BAGGAGE_IRREGULAR_BAG"
	CodeBaggageVolumeNotDeterminable MessageCode = "BAGGAGE_VOLUME_NOT_DETERMINABLE"
	CodeBaggageOverflowTray          MessageCode = "BAGGAGE_OVERFLOW_TRAY"
)

// nonCriticalCodes are the result codes treated as normal outcomes.
// Everything else rejects the originating request with a ResponseError.
var nonCriticalCodes = map[MessageCode]struct{}{
	CodeOK:             {},
	CodeMediaPresent:   {},
	CodeThresholdUsage: {},
}

// IsNonCritical returns true if the code is a normal outcome rather
// than an error.
func (c MessageCode) IsNonCritical() bool {
	_, ok := nonCriticalCodes[c]
	return ok
}

// IsCritical returns true if the code rejects the originating request.
func (c MessageCode) IsCritical() bool {
	return !c.IsNonCritical()
}
