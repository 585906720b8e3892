// Package coalescer implements C8: a rate-limited accumulator for
// mouseMove and scroll events captured while a session is forwarding. It
// runs no goroutine of its own beyond the periodic flush timer it schedules
// on the caller's serialqueue.Queue; Feed and flush must be invoked
// serialized with each other.
package coalescer

import (
	"time"

	"github.com/edenriquez/inputshare/internal/serialqueue"
	"github.com/edenriquez/inputshare/internal/wire"
)

// DefaultInterval is the reference flush period (§4.8): ~250 Hz.
const DefaultInterval = 4 * time.Millisecond

// Coalescer accumulates pending mouseMove/scroll deltas and flushes them on
// a fixed tick or immediately ahead of any other event kind.
type Coalescer struct {
	queue    *serialqueue.Queue
	send     func(wire.InputEvent)
	interval time.Duration

	pendingMove   *wire.InputEvent
	pendingScroll *wire.InputEvent
	ticker        *serialqueue.Timer
}

// New creates a Coalescer that calls send for every event it releases.
// interval of zero uses DefaultInterval.
func New(queue *serialqueue.Queue, send func(wire.InputEvent), interval time.Duration) *Coalescer {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Coalescer{queue: queue, send: send, interval: interval}
}

// Start begins the periodic flush ticker. Call once per forwarding span.
func (c *Coalescer) Start() {
	if c.ticker != nil {
		return
	}
	c.ticker = c.queue.SchedulePeriodic(c.interval, c.flush)
}

// Stop cancels the periodic ticker and flushes any pending move/scroll,
// per "on transition out of forwarding" (§4.8).
func (c *Coalescer) Stop() {
	if c.ticker != nil {
		c.ticker.Cancel()
		c.ticker = nil
	}
	c.flush()
}

// Feed accepts one captured event. mouseMove and scroll are accumulated;
// every other kind flushes pending state first, then passes through
// immediately.
func (c *Coalescer) Feed(ev wire.InputEvent) {
	switch ev.Kind {
	case wire.EventMouseMove:
		c.accumulateMove(ev)
	case wire.EventScroll:
		c.accumulateScroll(ev)
	default:
		c.flush()
		c.send(ev)
	}
}

func (c *Coalescer) accumulateMove(ev wire.InputEvent) {
	if c.pendingMove == nil {
		copied := ev
		c.pendingMove = &copied
		return
	}
	c.pendingMove.DX += ev.DX
	c.pendingMove.DY += ev.DY
	c.pendingMove.NormalizedPosition = ev.NormalizedPosition
	c.pendingMove.ModifierFlags = ev.ModifierFlags
}

func (c *Coalescer) accumulateScroll(ev wire.InputEvent) {
	if c.pendingScroll == nil {
		copied := ev
		c.pendingScroll = &copied
		return
	}
	c.pendingScroll.ScrollDX += ev.ScrollDX
	c.pendingScroll.ScrollDY += ev.ScrollDY
	c.pendingScroll.ModifierFlags = ev.ModifierFlags
}

func (c *Coalescer) flush() {
	if c.pendingMove != nil {
		ev := *c.pendingMove
		c.pendingMove = nil
		c.send(ev)
	}
	if c.pendingScroll != nil {
		ev := *c.pendingScroll
		c.pendingScroll = nil
		c.send(ev)
	}
}
