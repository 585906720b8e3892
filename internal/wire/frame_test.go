package wire

import (
	"bytes"
	"testing"
)

func TestFrameDeframeRoundTrip(t *testing.T) {
	b := []byte("hello")
	bPrime := []byte("world, a bit longer this time")

	buf := append(Frame(b), Frame(bPrime)...)

	frames, remainder, err := Deframe(buf)
	if err != nil {
		t.Fatalf("Deframe: %v", err)
	}
	if len(remainder) != 0 {
		t.Fatalf("expected empty remainder, got %d bytes", len(remainder))
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if !bytes.Equal(frames[0], b) {
		t.Errorf("frame[0] = %q, want %q", frames[0], b)
	}
	if !bytes.Equal(frames[1], bPrime) {
		t.Errorf("frame[1] = %q, want %q", frames[1], bPrime)
	}
}

func TestDeframerRetainsPartialTrailingBytes(t *testing.T) {
	d := NewDeframer()
	full := Frame([]byte("complete"))
	partial := Frame([]byte("incomplete-payload"))[:5]

	d.Push(append(full, partial...))
	frames, err := d.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if len(frames) != 1 || string(frames[0]) != "complete" {
		t.Fatalf("frames = %v, want [\"complete\"]", frames)
	}
	if len(d.buf) != len(partial) {
		t.Fatalf("buf retained %d bytes, want %d", len(d.buf), len(partial))
	}

	// Feed the rest of the second frame across a second Push.
	rest := Frame([]byte("incomplete-payload"))[5:]
	d.Push(rest)
	frames, err = d.Next()
	if err != nil {
		t.Fatalf("Next (2nd): %v", err)
	}
	if len(frames) != 1 || string(frames[0]) != "incomplete-payload" {
		t.Fatalf("frames = %v, want [\"incomplete-payload\"]", frames)
	}
}

func TestDeframeRejectsOversizedLength(t *testing.T) {
	oversized := make([]byte, 4)
	oversized[0] = 0xFF // length = 0xFFxxxxxx, far beyond MaxFrameSize
	oversized[1] = 0xFF
	oversized[2] = 0xFF
	oversized[3] = 0xFF

	_, _, err := Deframe(oversized)
	if err == nil {
		t.Fatal("expected error for oversized frame length")
	}
}
