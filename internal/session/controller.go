package session

import (
	"context"
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/edenriquez/inputshare/internal/coalescer"
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/forwarding"
	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/hid"
	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/serialqueue"
	"github.com/edenriquez/inputshare/internal/transport"
	"github.com/edenriquez/inputshare/internal/wire"
)

var log = logging.L("session")

// Config parameterizes one Controller.
type Config struct {
	DeviceID string
	Geometry *geometry.Geometry

	EnterThresholdPx  int
	ExitThresholdPx   int
	DwellTime         time.Duration
	ActivationTimeout time.Duration
	CoalesceInterval  time.Duration

	// SenderZone is the local edge that, when dwelled on, hands control to
	// the peer. ReturnZone is the edge this host's receiver role watches
	// to hand control back once it's controlling the peer.
	SenderZone edge.Zone
	ReturnZone edge.Zone
}

// Controller owns one session's shared resources: the serial queue, HID
// capture/injection, and whichever of the sender/receiver roles is active.
// Only one role is active at a time on a given Controller, matching the
// send/receive CLI split, but both share the same capture/injection
// boundary and serial queue per §5 and §9.
type Controller struct {
	cfg      Config
	queue    *serialqueue.Queue
	uiQueue  *serialqueue.Queue
	observer StatusObserver

	capturer hid.Capturer
	injector hid.Injector

	sender   *senderRole
	receiver *receiverRole

	seq atomic.Uint64
}

// New creates a Controller. capturer may be nil for a receive-only host
// (capture is unsupported on that platform, or this host never initiates).
func New(cfg Config, capturer hid.Capturer, injector hid.Injector, observer StatusObserver) *Controller {
	if cfg.ActivationTimeout <= 0 {
		cfg.ActivationTimeout = forwarding.DefaultActivationTimeout
	}
	if cfg.CoalesceInterval <= 0 {
		cfg.CoalesceInterval = coalescer.DefaultInterval
	}
	if observer == nil {
		observer = NopObserver{}
	}
	c := &Controller{
		cfg:      cfg,
		queue:    serialqueue.New(256),
		uiQueue:  serialqueue.New(64),
		observer: observer,
		capturer: capturer,
		injector: injector,
	}
	return c
}

func (c *Controller) nextSequence() uint64 {
	return c.seq.Add(1)
}

func (c *Controller) notifyStatus(s Status) {
	c.uiQueue.Post(func() { c.observer.OnStatusChanged(s) })
}

func (c *Controller) notifyFatal(reason string) {
	c.uiQueue.Post(func() { c.observer.OnFatalError(reason) })
}

// RunSender dials addr and drives this host's sender role: watching the
// local edge, handing off control, and later taking it back. It blocks
// until ctx is done or the connection fails.
func (c *Controller) RunSender(ctx context.Context, addr string, tlsConfig *tls.Config) error {
	if c.capturer == nil {
		return fmt.Errorf("session: no capture adapter available on this platform")
	}
	c.notifyStatus(StatusConnecting)

	dialer := transport.NewDialer(tlsConfig)
	r := newSenderRole(c)
	lost := make(chan error, 1)
	conn, err := dialer.Dial(ctx, addr, transport.Callbacks{
		OnEnvelope: func(env *wire.Envelope) { c.queue.Post(func() { r.handleEnvelope(env) }) },
		OnDisconnected: func(err error) {
			c.queue.Post(func() { c.restoreLocalControl(err) })
			select {
			case lost <- err:
			default:
			}
		},
	})
	if err != nil {
		c.notifyStatus(StatusDisconnected)
		return err
	}
	r.conn = conn
	c.sender = r
	c.notifyStatus(StatusConnected)

	done := make(chan struct{})
	c.queue.Post(func() { r.start(); close(done) })
	<-done

	select {
	case <-ctx.Done():
		c.queue.Post(func() { c.restoreLocalControl(ctx.Err()) })
		return nil
	case err := <-lost:
		return err
	}
}

// RunReceiver listens on addr and accepts inbound sessions one at a time,
// driving this host's receiver role for each.
func (c *Controller) RunReceiver(ctx context.Context, addr string, tlsConfig *tls.Config) error {
	ln, err := transport.Listen(addr, tlsConfig)
	if err != nil {
		return err
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	for {
		r := newReceiverRole(c)
		conn, err := ln.Accept(transport.Callbacks{
			OnEnvelope:     func(env *wire.Envelope) { c.queue.Post(func() { r.handleEnvelope(env) }) },
			OnDisconnected: func(err error) { c.queue.Post(func() { c.restoreLocalControl(err) }) },
		})
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				log.Warn("accept failed", "error", err)
				continue
			}
		}
		r.conn = conn
		c.receiver = r
		c.notifyStatus(StatusConnected)
	}
}

// restoreLocalControl is the failsafe (§4.9 / §9): regardless of which role
// was active, stop coalescing and suppression, reset the state machine,
// cancel the transport, reassociate the physical cursor, and show it.
func (c *Controller) restoreLocalControl(cause error) {
	if c.sender != nil {
		c.sender.teardown()
		c.sender = nil
	}
	if c.receiver != nil {
		c.receiver.teardown()
		c.receiver = nil
	}
	if c.injector != nil {
		c.injector.ShowCursor(true)
	}
	reason := "disconnected"
	if cause != nil {
		reason = cause.Error()
	}
	log.Warn("restored local control", "cause", reason)
	c.notifyStatus(StatusDisconnected)
	if cause != nil {
		c.notifyFatal(reason)
	}
}

// Close stops the controller's serial and UI queues. Call after both
// RunSender and RunReceiver have returned.
func (c *Controller) Close(ctx context.Context) {
	c.queue.StopAccepting()
	c.queue.Drain(ctx)
	c.uiQueue.StopAccepting()
	c.uiQueue.Drain(ctx)
}
