package wire

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the only version this codec currently speaks.
const ProtocolVersion = 1

// MessageType enumerates MessageEnvelope.messageType values (§3).
type MessageType string

const (
	MessageHello       MessageType = "hello"
	MessageInputEvent  MessageType = "inputEvent"
	MessageActivate    MessageType = "activate"
	MessageActivated   MessageType = "activated"
	MessageDeactivate  MessageType = "deactivate"
	MessageDeactivated MessageType = "deactivated"
	MessagePairRequest MessageType = "pairRequest"
	MessagePairAccept  MessageType = "pairAccept"
)

// Envelope is the self-describing wrapper carried inside every frame. It is
// parseable without knowing the payload's kind; Payload is opaque to the
// transport layer and decoded separately by callers once MessageType is known.
type Envelope struct {
	ProtocolVersion int             `json:"protocolVersion"`
	MessageType     MessageType     `json:"messageType"`
	SequenceNumber  uint64          `json:"sequenceNumber"`
	MonotonicTimeNs uint64          `json:"monotonicTimeNs"`
	SourceDeviceID  string          `json:"sourceDeviceId"`
	Payload         json.RawMessage `json:"payload,omitempty"`
}

// DecodeError is returned for a malformed envelope or unknown message type.
// Per §4.1 / §7 the caller logs and drops the frame without disconnecting.
type DecodeError struct {
	Reason string
	Cause  error
}

func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("wire: decode error: %s: %v", e.Reason, e.Cause)
	}
	return fmt.Sprintf("wire: decode error: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

var knownMessageTypes = map[MessageType]struct{}{
	MessageHello:       {},
	MessageInputEvent:  {},
	MessageActivate:    {},
	MessageActivated:   {},
	MessageDeactivate:  {},
	MessageDeactivated: {},
	MessagePairRequest: {},
	MessagePairAccept:  {},
}

// EncodeEnvelope serializes env to the opaque byte sequence that gets
// wrapped by Frame before being written to the transport.
func EncodeEnvelope(env *Envelope) ([]byte, error) {
	return json.Marshal(env)
}

// DecodeEnvelope parses a deframed payload into an Envelope. It validates
// the protocol version and message type but does not interpret
// env.Payload — that is left to the kind-specific decode functions below.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Reason: "malformed envelope", Cause: err}
	}
	if env.ProtocolVersion != ProtocolVersion {
		return nil, &DecodeError{Reason: fmt.Sprintf("unsupported protocolVersion %d", env.ProtocolVersion)}
	}
	if _, ok := knownMessageTypes[env.MessageType]; !ok {
		return nil, &DecodeError{Reason: fmt.Sprintf("unknown messageType %q", env.MessageType)}
	}
	return &env, nil
}

// EncodePayload marshals a kind-specific payload value to the opaque bytes
// stored in Envelope.Payload.
func EncodePayload(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("wire: encode payload: %w", err)
	}
	return json.RawMessage(b), nil
}

// DecodePayload unmarshals env.Payload into v.
func DecodePayload(env *Envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return &DecodeError{Reason: "malformed payload", Cause: err}
	}
	return nil
}
