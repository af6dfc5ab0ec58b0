package wire

import (
	"encoding/json"
	"fmt"
	"time"
)

// FrameType classifies raw inbound bytes.
type FrameType int

const (
	FrameTypeUnknown FrameType = iota
	FrameTypeHeartbeat
	FrameTypeAck
	FrameTypeMessage
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameTypeHeartbeat:
		return "HEARTBEAT"
	case FrameTypeAck:
		return "ACK"
	case FrameTypeMessage:
		return "MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// envelope is the superset shape used to classify inbound frames.
type envelope struct {
	Ping    *int64  `json:"ping,omitempty"`
	AckCode *string `json:"ackCode,omitempty"`
	Meta    *Meta   `json:"meta,omitempty"`
}

// PeekFrameType examines raw bytes to determine the frame shape without
// fully decoding the payload.
func PeekFrameType(data []byte) (FrameType, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return FrameTypeUnknown, fmt.Errorf("failed to peek frame: %w", err)
	}
	switch {
	case env.Ping != nil:
		return FrameTypeHeartbeat, nil
	case env.AckCode != nil:
		return FrameTypeAck, nil
	default:
		return FrameTypeMessage, nil
	}
}

// EncodeFrame encodes an outbound frame after validating its metadata.
func EncodeFrame(f *Frame) ([]byte, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	return json.Marshal(f)
}

// DecodeFrame decodes raw bytes into a frame.
func DecodeFrame(data []byte) (*Frame, error) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}
	return &f, nil
}

// DecodeAckCode extracts the acknowledgement code from an ack frame.
func DecodeAckCode(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", fmt.Errorf("failed to decode ack: %w", err)
	}
	if env.AckCode == nil {
		return "", fmt.Errorf("not an acknowledgement frame")
	}
	return *env.AckCode, nil
}

// EncodePong encodes the heartbeat acknowledgement for an inbound ping.
func EncodePong() ([]byte, error) {
	return json.Marshal(map[string]int64{"pong": time.Now().UnixMilli()})
}
