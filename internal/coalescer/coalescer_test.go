package coalescer

import (
	"context"
	"testing"
	"time"

	"github.com/edenriquez/inputshare/internal/serialqueue"
	"github.com/edenriquez/inputshare/internal/wire"
)

func TestAccumulatesMovesUntilFlush(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	var sent []wire.InputEvent
	done := make(chan struct{})
	c := New(q, func(ev wire.InputEvent) { sent = append(sent, ev) }, time.Hour)

	q.Post(func() {
		c.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 1, DY: 2})
		c.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 3, DY: -1})
		c.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: -2, DY: 4})
		close(done)
	})
	<-done

	if len(sent) != 0 {
		t.Fatalf("sent = %d events before flush, want 0", len(sent))
	}

	syncDone := make(chan struct{})
	q.Post(func() {
		c.flush()
		close(syncDone)
	})
	<-syncDone

	if len(sent) != 1 {
		t.Fatalf("sent = %d events after flush, want 1", len(sent))
	}
	if sent[0].DX != 2 || sent[0].DY != 5 {
		t.Fatalf("flushed move = %+v, want dx=2 dy=5", sent[0])
	}
}

func TestOtherKindFlushesPendingFirstThenPassesThroughImmediately(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	var sent []wire.InputEvent
	c := New(q, func(ev wire.InputEvent) { sent = append(sent, ev) }, time.Hour)

	done := make(chan struct{})
	q.Post(func() {
		c.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 5, DY: 5})
		c.Feed(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateDown})
		close(done)
	})
	<-done

	if len(sent) != 2 {
		t.Fatalf("sent = %d events, want 2 (flushed move, then button)", len(sent))
	}
	if sent[0].Kind != wire.EventMouseMove {
		t.Fatalf("sent[0].Kind = %v, want mouseMove", sent[0].Kind)
	}
	if sent[1].Kind != wire.EventMouseButton {
		t.Fatalf("sent[1].Kind = %v, want mouseButton", sent[1].Kind)
	}
}

func TestPeriodicFlushPreservesDeltaSum(t *testing.T) {
	q := serialqueue.New(64)
	defer q.Drain(context.Background())

	var sum struct{ dx, dy int }
	var flushCount int
	c := New(q, func(ev wire.InputEvent) {
		sum.dx += ev.DX
		sum.dy += ev.DY
		flushCount++
	}, 2*time.Millisecond)

	done := make(chan struct{})
	q.Post(func() {
		c.Start()
		for i := 0; i < 100; i++ {
			c.Feed(wire.InputEvent{Kind: wire.EventMouseMove, DX: 1, DY: -1})
		}
		close(done)
	})
	<-done

	time.Sleep(20 * time.Millisecond)
	stopDone := make(chan struct{})
	q.Post(func() {
		c.Stop()
		close(stopDone)
	})
	<-stopDone

	if sum.dx != 100 || sum.dy != -100 {
		t.Fatalf("sum = %+v, want dx=100 dy=-100", sum)
	}
	if flushCount < 1 {
		t.Fatalf("flushCount = %d, want at least 1", flushCount)
	}
}

func TestStopFlushesPending(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	var sent []wire.InputEvent
	c := New(q, func(ev wire.InputEvent) { sent = append(sent, ev) }, time.Hour)

	done := make(chan struct{})
	q.Post(func() {
		c.Start()
		c.Feed(wire.InputEvent{Kind: wire.EventScroll, ScrollDX: 1, ScrollDY: 2})
		c.Stop()
		close(done)
	})
	<-done

	if len(sent) != 1 || sent[0].Kind != wire.EventScroll {
		t.Fatalf("sent = %+v, want one flushed scroll event", sent)
	}
}
