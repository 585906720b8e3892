package hid

import (
	"testing"

	"github.com/edenriquez/inputshare/internal/wire"
)

func TestMockCapturerFiltersProvenanceMarker(t *testing.T) {
	m := NewMock()
	var got []wire.InputEvent
	if err := m.Start(Handlers{OnEvent: func(ev wire.InputEvent) { got = append(got, ev) }}); err != nil {
		t.Fatalf("Start: %v", err)
	}

	m.Feed(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateDown}, ProvenanceMarker)
	if len(got) != 0 {
		t.Fatalf("got %d events, want 0 (provenance-marked event must be dropped)", len(got))
	}

	m.Feed(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateDown}, 0)
	if len(got) != 1 {
		t.Fatalf("got %d events, want 1", len(got))
	}
}

func TestMockCapturerDiscardsWarpArtifactsAfterSuppression(t *testing.T) {
	m := NewMock()
	var delivered int
	var rawMoves []Point
	m.Start(Handlers{
		OnEvent:        func(wire.InputEvent) { delivered++ },
		OnRawMouseMove: func(p Point) { rawMoves = append(rawMoves, p) },
	})

	if err := m.StartSuppressing(Point{X: 100, Y: 100}, true); err != nil {
		t.Fatalf("StartSuppressing: %v", err)
	}

	for i := 0; i < discardOnEntry; i++ {
		m.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 50, DY: 50}, 0)
	}
	if delivered != 0 {
		t.Fatalf("delivered = %d during discard window, want 0", delivered)
	}

	m.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 5, DY: -3}, 0)
	if delivered != 1 {
		t.Fatalf("delivered = %d after discard window, want 1", delivered)
	}
	last := rawMoves[len(rawMoves)-1]
	if last.X != 105 || last.Y != 97 {
		t.Fatalf("virtual cursor = %+v, want (105, 97)", last)
	}
}

func TestMockInjectorTracksHeldButtons(t *testing.T) {
	inj := NewMockInjector()
	if inj.AnyButtonDown() {
		t.Fatal("AnyButtonDown true before any button event")
	}
	inj.Inject(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateDown})
	if !inj.AnyButtonDown() {
		t.Fatal("AnyButtonDown false after button down")
	}
	inj.Inject(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateUp})
	if inj.AnyButtonDown() {
		t.Fatal("AnyButtonDown true after button up")
	}
}
