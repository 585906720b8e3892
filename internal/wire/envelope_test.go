package wire

import "testing"

func TestEncodeDecodeEnvelopeRoundTrip(t *testing.T) {
	payload, err := EncodePayload(ActivatePayload{NormalizedPosition: NormalizedPosition{X: 0, Y: 0.5}})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}

	env := &Envelope{
		ProtocolVersion: ProtocolVersion,
		MessageType:     MessageActivate,
		SequenceNumber:  42,
		MonotonicTimeNs: 123456789,
		SourceDeviceID:  "host-a",
		Payload:         payload,
	}

	data, err := EncodeEnvelope(env)
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}

	decoded, err := DecodeEnvelope(data)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if decoded.MessageType != MessageActivate || decoded.SequenceNumber != 42 {
		t.Fatalf("decoded = %+v, want MessageActivate/seq 42", decoded)
	}

	var ap ActivatePayload
	if err := DecodePayload(decoded, &ap); err != nil {
		t.Fatalf("DecodePayload: %v", err)
	}
	if ap.NormalizedPosition.Y != 0.5 {
		t.Errorf("NormalizedPosition.Y = %v, want 0.5", ap.NormalizedPosition.Y)
	}
}

func TestDecodeEnvelopeRejectsUnknownMessageType(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"protocolVersion":1,"messageType":"bogus","sequenceNumber":1,"monotonicTimeNs":1,"sourceDeviceId":"a"}`))
	if err == nil {
		t.Fatal("expected error for unknown messageType")
	}
	var decErr *DecodeError
	if !asDecodeError(err, &decErr) {
		t.Fatalf("expected *DecodeError, got %T", err)
	}
}

func TestDecodeEnvelopeRejectsVersionMismatch(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{"protocolVersion":99,"messageType":"hello","sequenceNumber":1,"monotonicTimeNs":1,"sourceDeviceId":"a"}`))
	if err == nil {
		t.Fatal("expected error for version mismatch")
	}
}

func TestDecodeEnvelopeRejectsMalformedJSON(t *testing.T) {
	_, err := DecodeEnvelope([]byte(`{not json`))
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func asDecodeError(err error, target **DecodeError) bool {
	de, ok := err.(*DecodeError)
	if !ok {
		return false
	}
	*target = de
	return true
}
