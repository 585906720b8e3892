package edge

import (
	"context"
	"testing"
	"time"

	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/serialqueue"
)

func twoDisplaysSideBySide() *geometry.Geometry {
	return geometry.New([]geometry.Display{
		{Index: 0, MinX: 0, MinY: 0, Width: 1000, Height: 1000},
		{Index: 1, MinX: 1000, MinY: 0, Width: 1000, Height: 1000},
	})
}

func singleDisplay() *geometry.Geometry {
	return geometry.New([]geometry.Display{
		{Index: 0, MinX: 0, MinY: 0, Width: 1000, Height: 1000},
	})
}

type recorder struct {
	entered   chan struct{}
	triggered chan geometry.Point
	exited    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{
		entered:   make(chan struct{}, 8),
		triggered: make(chan geometry.Point, 8),
		exited:    make(chan struct{}, 8),
	}
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnEntered:   func() { r.entered <- struct{}{} },
		OnTriggered: func(p geometry.Point) { r.triggered <- p },
		OnExited:    func() { r.exited <- struct{}{} },
	}
}

func waitFor[T any](t *testing.T, ch chan T, want string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", want)
		var zero T
		return zero
	}
}

func assertEmpty[T any](t *testing.T, ch chan T, what string) {
	t.Helper()
	select {
	case <-ch:
		t.Fatalf("unexpected %s", what)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTriggeredOnlyAfterDwellAndEntered(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	r := newRecorder()
	d := New(Config{Zone: ZoneRight, EnterThreshold: 5, ExitThreshold: 20, DwellTime: 200 * time.Millisecond}, q, r.callbacks())

	geom := singleDisplay()
	q.Post(func() { d.Update(geometry.Point{X: 997, Y: 500}, geom) })

	waitFor(t, r.entered, "Entered")
	assertEmpty(t, r.triggered, "Triggered before dwell elapsed")

	pos := waitFor(t, r.triggered, "Triggered")
	if pos.X != 997 {
		t.Fatalf("Triggered position = %+v, want X=997", pos)
	}
}

func TestExitedOnlyFollowsATrigger(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	r := newRecorder()
	d := New(Config{Zone: ZoneRight, EnterThreshold: 5, ExitThreshold: 20, DwellTime: 200 * time.Millisecond}, q, r.callbacks())

	geom := singleDisplay()
	q.Post(func() { d.Update(geometry.Point{X: 997, Y: 500}, geom) })
	waitFor(t, r.entered, "Entered")

	// Leave the zone before dwell elapses: no Triggered, so no Exited either.
	q.Post(func() { d.Update(geometry.Point{X: 900, Y: 500}, geom) })
	assertEmpty(t, r.triggered, "Triggered")
	assertEmpty(t, r.exited, "Exited without a prior Triggered")
}

func TestBetweenTwoTriggeredThereIsAnExitOrArm(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	r := newRecorder()
	d := New(Config{Zone: ZoneRight, EnterThreshold: 5, ExitThreshold: 20, DwellTime: 20 * time.Millisecond}, q, r.callbacks())

	geom := singleDisplay()
	q.Post(func() { d.Update(geometry.Point{X: 997, Y: 500}, geom) })
	waitFor(t, r.entered, "Entered")
	waitFor(t, r.triggered, "first Triggered")

	// Still sitting in zone: must not re-trigger without an Exited (or ArmAfterEntry) between.
	q.Post(func() { d.Update(geometry.Point{X: 996, Y: 500}, geom) })
	assertEmpty(t, r.triggered, "re-Triggered without an intervening Exited")

	// Leave past the exit threshold: Exited fires.
	q.Post(func() { d.Update(geometry.Point{X: 900, Y: 500}, geom) })
	waitFor(t, r.exited, "Exited")

	// Re-enter and dwell again: a fresh Triggered is now legitimate.
	q.Post(func() { d.Update(geometry.Point{X: 997, Y: 500}, geom) })
	waitFor(t, r.entered, "second Entered")
	waitFor(t, r.triggered, "second Triggered")
}

func TestAdjacentDisplayCrossingNeverTriggers(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	r := newRecorder()
	d := New(Config{Zone: ZoneRight, EnterThreshold: 50, ExitThreshold: 80, DwellTime: 10 * time.Millisecond}, q, r.callbacks())

	geom := twoDisplaysSideBySide()
	// x=980 is within 50px of the interior edge at x=1000, but that edge has
	// an adjacent display and so is not a true boundary: must never trigger.
	q.Post(func() { d.Update(geometry.Point{X: 980, Y: 500}, geom) })
	q.Post(func() { d.Update(geometry.Point{X: 985, Y: 500}, geom) })
	q.Post(func() { d.Update(geometry.Point{X: 990, Y: 500}, geom) })

	assertEmpty(t, r.entered, "Entered at an interior (non-true) boundary")
	assertEmpty(t, r.triggered, "Triggered at an interior (non-true) boundary")
}

func TestParseZone(t *testing.T) {
	cases := map[string]Zone{
		"left":     ZoneLeft,
		"right":    ZoneRight,
		"topLeft":  ZoneTopLeft,
		"topRight": ZoneTopRight,
	}
	for s, want := range cases {
		got, err := ParseZone(s)
		if err != nil {
			t.Fatalf("ParseZone(%q) returned error: %v", s, err)
		}
		if got != want {
			t.Fatalf("ParseZone(%q) = %v, want %v", s, got, want)
		}
	}

	if _, err := ParseZone("bottom"); err == nil {
		t.Fatal("expected an error for an unknown zone name")
	}
}

func TestArmAfterEntryRequiresExitBeforeRetrigger(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	r := newRecorder()
	d := New(Config{Zone: ZoneRight, EnterThreshold: 5, ExitThreshold: 20, DwellTime: 20 * time.Millisecond}, q, r.callbacks())

	q.Post(func() { d.ArmAfterEntry() })
	q.Post(func() {})
	// Draining one no-op round trip to be sure ArmAfterEntry landed before we proceed.
	sync := make(chan struct{})
	q.Post(func() { close(sync) })
	<-sync

	geom := singleDisplay()
	// Still "in zone" per ArmAfterEntry, so an in-zone update must not
	// re-fire Entered nor schedule a dwell that triggers.
	q.Post(func() { d.Update(geometry.Point{X: 997, Y: 500}, geom) })
	assertEmpty(t, r.entered, "Entered right after ArmAfterEntry")
	assertEmpty(t, r.triggered, "Triggered right after ArmAfterEntry, before leaving and re-entering")
}
