package wire

import "testing"

func TestMessageCodeClassification(t *testing.T) {
	t.Run("NonCritical", func(t *testing.T) {
		for _, c := range []MessageCode{CodeOK, CodeMediaPresent, CodeThresholdUsage} {
			if !c.IsNonCritical() {
				t.Errorf("%s should be non-critical", c)
			}
			if c.IsCritical() {
				t.Errorf("%s should not be critical", c)
			}
		}
	})

	t.Run("Critical", func(t *testing.T) {
		critical := []MessageCode{
			CodeCancelled,
			CodeWrongApplicationState,
			CodeOutOfSequence,
			CodeTimeout,
			CodeSessionTimeout,
			CodeKillTimeout,
			CodeSoftwareError,
			CodeCriticalSoftwareError,
			CodeHardwareError,
			CodeNotReachable,
			CodeNotResponding,
			CodeBaggageFull,
			CodeBaggageJammed,
			CodeBaggageEmergencyStop,
			CodeBaggageWeightOutOfRange,
		}
		for _, c := range critical {
			if !c.IsCritical() {
				t.Errorf("%s should be critical", c)
			}
		}
	})

	t.Run("UnknownCodeIsCritical", func(t *testing.T) {
		// Unrecognized codes must fail closed.
		if !MessageCode("SOMETHING_NEW").IsCritical() {
			t.Error("unknown codes should be critical")
		}
	})
}

func TestApplicationStateIsValid(t *testing.T) {
	valid := []ApplicationState{
		StateStopped, StateInitialize, StateUnavailable, StateAvailable,
		StateActive, StateSuspended, StateDisabled, StateReload,
	}
	for _, s := range valid {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	if ApplicationState("").IsValid() {
		t.Error("empty state should be invalid")
	}
	if ApplicationState("BOOTING").IsValid() {
		t.Error("undefined state should be invalid")
	}
}
