package wire

import (
	"encoding/json"
	"testing"
)

func TestPeekFrameType(t *testing.T) {
	tests := []struct {
		name string
		data string
		want FrameType
	}{
		{"Heartbeat", `{"ping": 1712000000000}`, FrameTypeHeartbeat},
		{"Ack", `{"ackCode": "RECEIVED"}`, FrameTypeAck},
		{"Message", `{"meta": {"requestID": "abc", "messageCode": "OK"}}`, FrameTypeMessage},
		{"EmptyObject", `{}`, FrameTypeMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PeekFrameType([]byte(tt.data))
			if err != nil {
				t.Fatalf("PeekFrameType() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("PeekFrameType() = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("Malformed", func(t *testing.T) {
		if _, err := PeekFrameType([]byte("not json")); err == nil {
			t.Error("PeekFrameType() should fail on malformed input")
		}
	})
}

func TestEncodeFrame(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		f := &Frame{
			Meta: Meta{
				RequestID: NewRequestID(),
				Directive: DirectiveQuery,
			},
		}
		data, err := EncodeFrame(f)
		if err != nil {
			t.Fatalf("EncodeFrame() error = %v", err)
		}

		decoded, err := DecodeFrame(data)
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if decoded.Meta.RequestID != f.Meta.RequestID {
			t.Errorf("requestID = %q, want %q", decoded.Meta.RequestID, f.Meta.RequestID)
		}
		if decoded.Meta.Directive != DirectiveQuery {
			t.Errorf("directive = %q, want %q", decoded.Meta.Directive, DirectiveQuery)
		}
	})

	t.Run("MissingRequestID", func(t *testing.T) {
		f := &Frame{Meta: Meta{Directive: DirectiveQuery}}
		if _, err := EncodeFrame(f); err == nil {
			t.Error("EncodeFrame() should reject a frame without requestID")
		}
	})

	t.Run("MissingDirective", func(t *testing.T) {
		f := &Frame{Meta: Meta{RequestID: NewRequestID()}}
		if _, err := EncodeFrame(f); err == nil {
			t.Error("EncodeFrame() should reject a frame without directive")
		}
	})
}

func TestDecodeFrame(t *testing.T) {
	t.Run("ResponseMeta", func(t *testing.T) {
		raw := `{
			"meta": {
				"requestID": "r-1",
				"messageCode": "OK",
				"componentState": "READY",
				"currentApplicationState": "AVAILABLE"
			}
		}`
		f, err := DecodeFrame([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if f.Meta.MessageCode != CodeOK {
			t.Errorf("messageCode = %q, want OK", f.Meta.MessageCode)
		}
		if f.Meta.ComponentState != ComponentReady {
			t.Errorf("componentState = %q, want READY", f.Meta.ComponentState)
		}
		if f.Meta.CurrentApplicationState != StateAvailable {
			t.Errorf("currentApplicationState = %q, want AVAILABLE", f.Meta.CurrentApplicationState)
		}
	})

	t.Run("ComponentList", func(t *testing.T) {
		raw := `{
			"meta": {"requestID": "r-2", "messageCode": "OK"},
			"payload": {
				"componentList": [
					{"componentID": 1, "componentType": "FEEDER"},
					{"componentID": 2, "componentType": "MEDIA_OUTPUT",
					 "linkedComponentIDs": [1, 3],
					 "componentCharacteristics": [{"mediaTypesList": ["BAGGAGETAG"]}]}
				]
			}
		}`
		f, err := DecodeFrame([]byte(raw))
		if err != nil {
			t.Fatalf("DecodeFrame() error = %v", err)
		}
		if f.Payload == nil || len(f.Payload.ComponentList) != 2 {
			t.Fatalf("componentList not decoded: %+v", f.Payload)
		}
		printer := f.Payload.ComponentList[1]
		if !printer.HasMediaType(MediaBaggageTag) {
			t.Error("HasMediaType(BAGGAGETAG) = false, want true")
		}
		if printer.HasMediaType(MediaBoardingPass) {
			t.Error("HasMediaType(BOARDINGPASS) = true, want false")
		}
	})
}

func TestEncodePong(t *testing.T) {
	data, err := EncodePong()
	if err != nil {
		t.Fatalf("EncodePong() error = %v", err)
	}
	var m map[string]int64
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("pong is not valid JSON: %v", err)
	}
	if _, ok := m["pong"]; !ok {
		t.Error("pong frame missing pong key")
	}
}

func TestDecodeAckCode(t *testing.T) {
	code, err := DecodeAckCode([]byte(`{"ackCode": "RECEIVED"}`))
	if err != nil {
		t.Fatalf("DecodeAckCode() error = %v", err)
	}
	if code != "RECEIVED" {
		t.Errorf("ackCode = %q, want RECEIVED", code)
	}

	if _, err := DecodeAckCode([]byte(`{"meta": {}}`)); err == nil {
		t.Error("DecodeAckCode() should fail on a non-ack frame")
	}
}
