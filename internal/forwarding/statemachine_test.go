package forwarding

import (
	"context"
	"testing"
	"time"

	"github.com/edenriquez/inputshare/internal/serialqueue"
)

type harness struct {
	activateCount   int
	deactivateCount int
	states          []State
}

func newHarness(q *serialqueue.Queue, timeout time.Duration) (*Machine, *harness) {
	h := &harness{}
	m := New(q, Callbacks{
		OnShouldSendActivate:   func() { h.activateCount++ },
		OnShouldSendDeactivate: func() { h.deactivateCount++ },
		OnStateChanged:         func(s State) { h.states = append(h.states, s) },
	}, timeout)
	return m, h
}

func syncPost(q *serialqueue.Queue, f func()) {
	done := make(chan struct{})
	q.Post(func() {
		f()
		close(done)
	})
	<-done
}

func TestActivateFiresExactlyOnceOnIdleToActivating(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	m, h := newHarness(q, time.Second)

	syncPost(q, m.EdgeTriggered)
	if h.activateCount != 1 {
		t.Fatalf("activateCount = %d, want 1", h.activateCount)
	}
	if m.State() != Activating {
		t.Fatalf("state = %v, want activating", m.State())
	}

	// A second edgeTriggered while not idle is ignored per the tie-break rule.
	syncPost(q, m.EdgeTriggered)
	if h.activateCount != 1 {
		t.Fatalf("activateCount after repeat edgeTriggered = %d, want 1", h.activateCount)
	}
}

func TestDeactivateFiresExactlyOnceOnForwardingToReturning(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	m, h := newHarness(q, time.Second)
	syncPost(q, m.EdgeTriggered)
	syncPost(q, m.ReceivedActivated)
	if m.State() != Forwarding {
		t.Fatalf("state = %v, want forwarding", m.State())
	}

	syncPost(q, m.ReturnTriggered)
	if h.deactivateCount != 1 {
		t.Fatalf("deactivateCount = %d, want 1", h.deactivateCount)
	}
	if m.State() != Returning {
		t.Fatalf("state = %v, want returning", m.State())
	}

	// Ignored outside forwarding.
	syncPost(q, m.ReturnTriggered)
	if h.deactivateCount != 1 {
		t.Fatalf("deactivateCount after repeat returnTriggered = %d, want 1", h.deactivateCount)
	}
}

func TestActivationTimeoutReturnsToIdleWithoutDeactivate(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	m, h := newHarness(q, 30*time.Millisecond)
	syncPost(q, m.EdgeTriggered)

	deadline := time.After(2 * time.Second)
	for {
		var s State
		syncPost(q, func() { s = m.State() })
		if s == Idle {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for activation timeout to return to idle")
		case <-time.After(5 * time.Millisecond):
		}
	}

	if h.deactivateCount != 0 {
		t.Fatalf("deactivateCount = %d, want 0 (never entered forwarding)", h.deactivateCount)
	}

	// A late activated ack must be ignored now that we're back in idle.
	syncPost(q, m.ReceivedActivated)
	var s State
	syncPost(q, func() { s = m.State() })
	if s != Idle {
		t.Fatalf("state after late receivedActivated = %v, want idle", s)
	}
}

func TestReceivedDeactivateFromReceiverGoesIdleWithoutLocalEmit(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	m, h := newHarness(q, time.Second)
	syncPost(q, m.EdgeTriggered)
	syncPost(q, m.ReceivedActivated)

	syncPost(q, m.ReceivedDeactivate)
	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
	if h.deactivateCount != 0 {
		t.Fatalf("deactivateCount = %d, want 0 (receiver-initiated, no local emit)", h.deactivateCount)
	}
}

func TestResetForcesIdleFromAnyState(t *testing.T) {
	q := serialqueue.New(8)
	defer q.Drain(context.Background())

	m, _ := newHarness(q, time.Second)
	syncPost(q, m.EdgeTriggered)
	syncPost(q, m.ReceivedActivated)
	if m.State() != Forwarding {
		t.Fatalf("state = %v, want forwarding", m.State())
	}

	syncPost(q, m.Reset)
	if m.State() != Idle {
		t.Fatalf("state = %v, want idle", m.State())
	}
}
