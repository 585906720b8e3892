package session

import (
	"github.com/edenriquez/inputshare/internal/coalescer"
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/forwarding"
	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/hid"
	"github.com/edenriquez/inputshare/internal/transport"
	"github.com/edenriquez/inputshare/internal/wire"
)

// senderRole drives this host's outgoing edge: capturing local input,
// handing it off on a dwell trigger, and taking it back on the peer's
// deactivate (§4.9's "Sender role").
type senderRole struct {
	c    *Controller
	conn *transport.Conn

	detector  *edge.Detector
	sm        *forwarding.Machine
	coalescer *coalescer.Coalescer

	crossingPosition geometry.Point
}

func newSenderRole(c *Controller) *senderRole {
	r := &senderRole{c: c}

	r.sm = forwarding.New(c.queue, forwarding.Callbacks{
		OnShouldSendActivate:   r.sendActivate,
		OnShouldSendDeactivate: nil, // the sender never locally initiates deactivate (§4.7)
		OnStateChanged:         r.onStateChanged,
	}, c.cfg.ActivationTimeout)

	r.detector = edge.New(edge.Config{
		Zone:           c.cfg.SenderZone,
		EnterThreshold: c.cfg.EnterThresholdPx,
		ExitThreshold:  c.cfg.ExitThresholdPx,
		DwellTime:      c.cfg.DwellTime,
	}, c.queue, edge.Callbacks{
		OnTriggered: r.onEdgeTriggered,
	})

	r.coalescer = coalescer.New(c.queue, r.sendInputEvent, c.cfg.CoalesceInterval)
	return r
}

// start installs the capture hook. Must run on the controller's serial
// queue.
func (r *senderRole) start() {
	r.c.capturer.Start(hid.Handlers{
		OnRawMouseMove: func(p hid.Point) {
			r.c.queue.Post(func() {
				r.detector.Update(geometry.Point{X: p.X, Y: p.Y}, r.c.cfg.Geometry)
			})
		},
		OnEvent: func(ev wire.InputEvent) {
			r.c.queue.Post(func() { r.onCaptured(ev) })
		},
	})
}

func (r *senderRole) onEdgeTriggered(pos geometry.Point) {
	r.crossingPosition = pos
	r.sm.EdgeTriggered()
}

func (r *senderRole) sendActivate() {
	bounds := r.c.cfg.Geometry.Bounds
	normY := wire.ClampNormalized(float64(r.crossingPosition.Y-bounds.MinY) / float64(bounds.Height))
	payload, err := wire.EncodePayload(wire.ActivatePayload{NormalizedPosition: wire.NormalizedPosition{Y: normY}})
	if err != nil {
		log.Error("encode activate payload", "error", err)
		return
	}
	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     wire.MessageActivate,
		SequenceNumber:  r.c.nextSequence(),
		SourceDeviceID:  r.c.cfg.DeviceID,
		Payload:         payload,
	}
	if err := r.conn.SendEnvelope(env); err != nil {
		log.Warn("send activate failed", "error", err)
	}
}

func (r *senderRole) onStateChanged(s forwarding.State) {
	switch s {
	case forwarding.Forwarding:
		bounds := r.c.cfg.Geometry.Bounds
		r.c.capturer.StartSuppressing(hid.Point{X: bounds.MinX, Y: r.crossingPosition.Y}, true)
		r.coalescer.Start()
		r.c.notifyStatus(StatusForwarding)
	case forwarding.Idle:
		r.coalescer.Stop()
		r.c.capturer.StopSuppressing()
		r.detector.ArmAfterEntry()
		r.c.notifyStatus(StatusConnected)
	}
}

func (r *senderRole) onCaptured(ev wire.InputEvent) {
	if r.sm.State() != forwarding.Forwarding {
		return
	}
	r.coalescer.Feed(ev)
}

func (r *senderRole) sendInputEvent(ev wire.InputEvent) {
	payload, err := wire.EncodePayload(ev)
	if err != nil {
		log.Error("encode inputEvent payload", "error", err)
		return
	}
	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     wire.MessageInputEvent,
		SequenceNumber:  r.c.nextSequence(),
		SourceDeviceID:  r.c.cfg.DeviceID,
		Payload:         payload,
	}
	droppable := ev.Kind == wire.EventMouseMove
	var sendErr error
	if droppable {
		sendErr = r.conn.SendEnvelopeDroppable(env)
	} else {
		sendErr = r.conn.SendEnvelope(env)
	}
	if sendErr != nil {
		log.Warn("send inputEvent failed", "error", sendErr)
	}
}

// handleEnvelope processes frames arriving from the peer while this host
// is in the sender role: activated acks and deactivate requests.
func (r *senderRole) handleEnvelope(env *wire.Envelope) {
	switch env.MessageType {
	case wire.MessageActivated:
		r.sm.ReceivedActivated()
	case wire.MessageDeactivate:
		var payload wire.DeactivatePayload
		if err := wire.DecodePayload(env, &payload); err != nil {
			log.Warn("malformed deactivate payload", "error", err)
			return
		}
		r.applyReturn(payload)
		r.sm.ReceivedDeactivate()
		r.sendDeactivated()
	}
}

func (r *senderRole) sendDeactivated() {
	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     wire.MessageDeactivated,
		SequenceNumber:  r.c.nextSequence(),
		SourceDeviceID:  r.c.cfg.DeviceID,
	}
	if err := r.conn.SendEnvelope(env); err != nil {
		log.Warn("send deactivated failed", "error", err)
	}
}

// applyReturn denormalizes the peer's return Y, finds the right-boundary
// display at that Y, clamps within it, and warps the real cursor there
// (§4.9's sender-role deactivate handling).
func (r *senderRole) applyReturn(payload wire.DeactivatePayload) {
	bounds := r.c.cfg.Geometry.Bounds
	y := bounds.MinY + int(wire.ClampNormalized(payload.NormalizedY)*float64(bounds.Height))

	display, ok := r.c.cfg.Geometry.DisplayAtRightBoundary(y)
	if !ok {
		display, ok = r.c.cfg.Geometry.DisplayContaining(geometry.Point{X: bounds.MaxX() - 1, Y: y})
		if !ok {
			return
		}
	}
	clampedY := display.ClampY(y)
	target := hid.Point{X: display.MaxX() - 2, Y: clampedY}
	r.c.injector.WarpCursor(target)
}

// teardown is called from restoreLocalControl: stop coalescing and
// suppression, reset the state machine, and close the transport.
func (r *senderRole) teardown() {
	r.coalescer.Stop()
	r.c.capturer.StopSuppressing()
	r.c.capturer.Stop()
	r.sm.Reset()
	if r.conn != nil {
		r.conn.Close()
	}
}
