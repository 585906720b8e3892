package session

import (
	"github.com/edenriquez/inputshare/internal/edge"
	"github.com/edenriquez/inputshare/internal/forwarding"
	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/hid"
	"github.com/edenriquez/inputshare/internal/transport"
	"github.com/edenriquez/inputshare/internal/wire"
)

// receiverRole drives this host's incoming-control side: suppressing local
// HID, injecting the peer's events, and sending them back on the return
// edge (§4.9's "Receiver role").
type receiverRole struct {
	c    *Controller
	conn *transport.Conn

	detector *edge.Detector
	sm       *forwarding.Machine

	cursorPos   geometry.Point
	buttonsDown map[wire.MouseButton]bool
}

func newReceiverRole(c *Controller) *receiverRole {
	r := &receiverRole{c: c, buttonsDown: make(map[wire.MouseButton]bool)}

	r.sm = forwarding.New(c.queue, forwarding.Callbacks{
		OnShouldSendDeactivate: r.sendDeactivate,
		OnStateChanged:         r.onStateChanged,
	}, c.cfg.ActivationTimeout)

	r.detector = edge.New(edge.Config{
		Zone:           c.cfg.ReturnZone,
		EnterThreshold: c.cfg.EnterThresholdPx,
		ExitThreshold:  c.cfg.ExitThresholdPx,
		DwellTime:      c.cfg.DwellTime,
	}, c.queue, edge.Callbacks{
		OnTriggered: func(geometry.Point) { r.sm.ReturnTriggered() },
	})

	return r
}

func (r *receiverRole) handleEnvelope(env *wire.Envelope) {
	switch env.MessageType {
	case wire.MessageActivate:
		var payload wire.ActivatePayload
		if err := wire.DecodePayload(env, &payload); err != nil {
			log.Warn("malformed activate payload", "error", err)
			return
		}
		r.onActivate(payload)
	case wire.MessageInputEvent:
		var ev wire.InputEvent
		if err := wire.DecodePayload(env, &ev); err != nil {
			log.Warn("malformed inputEvent payload", "error", err)
			return
		}
		r.onInputEvent(ev)
	case wire.MessageDeactivated:
		r.sm.ReceivedDeactivated()
	}
}

// onActivate resolves the left-boundary display at the crossing Y (or the
// leftmost display as fallback), warps the real cursor there, arms the
// return detector, begins suppressing, and acks with `activated`.
func (r *receiverRole) onActivate(payload wire.ActivatePayload) {
	bounds := r.c.cfg.Geometry.Bounds
	y := bounds.MinY + int(wire.ClampNormalized(payload.NormalizedPosition.Y)*float64(bounds.Height))

	display, ok := r.c.cfg.Geometry.DisplayAtLeftBoundary(y)
	if !ok {
		display, ok = r.c.cfg.Geometry.LeftmostDisplay()
		if !ok {
			return
		}
	}
	clampedY := display.ClampY(y)
	target := geometry.Point{X: display.MinX + 2, Y: clampedY}
	r.cursorPos = target

	r.c.injector.WarpCursor(hid.Point{X: target.X, Y: target.Y})
	if r.c.capturer != nil {
		r.c.capturer.StartSuppressing(hid.Point{X: target.X, Y: target.Y}, false)
	}
	r.detector.ArmAfterEntry()
	r.sm.EnterForwardingDirect()

	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     wire.MessageActivated,
		SequenceNumber:  r.c.nextSequence(),
		SourceDeviceID:  r.c.cfg.DeviceID,
	}
	if err := r.conn.SendEnvelope(env); err != nil {
		log.Warn("send activated failed", "error", err)
	}
}

func (r *receiverRole) onInputEvent(ev wire.InputEvent) {
	if r.sm.State() != forwarding.Forwarding {
		return
	}
	switch ev.Kind {
	case wire.EventMouseMove:
		r.onMouseMove(ev)
	case wire.EventMouseButton:
		r.updateButton(ev.Button, ev.ButtonState)
		r.c.injector.Inject(ev)
	default:
		r.c.injector.Inject(ev)
	}
}

func (r *receiverRole) onMouseMove(ev wire.InputEvent) {
	bounds := r.c.cfg.Geometry.Bounds
	next := geometry.Point{X: r.cursorPos.X + ev.DX, Y: r.cursorPos.Y + ev.DY}
	r.cursorPos = bounds.ClampPoint(next)

	r.c.injector.WarpCursor(hid.Point{X: r.cursorPos.X, Y: r.cursorPos.Y})
	r.c.injector.Inject(ev) // injected the same way whether or not a button is held: no Injector emits a distinct drag event
	r.detector.Update(r.cursorPos, r.c.cfg.Geometry)
}

func (r *receiverRole) updateButton(button wire.MouseButton, state wire.ButtonState) {
	if state == wire.StateDown {
		r.buttonsDown[button] = true
	} else {
		delete(r.buttonsDown, button)
	}
}

func (r *receiverRole) sendDeactivate() {
	bounds := r.c.cfg.Geometry.Bounds
	normY := wire.ClampNormalized(float64(r.cursorPos.Y-bounds.MinY) / float64(bounds.Height))
	payload, err := wire.EncodePayload(wire.DeactivatePayload{NormalizedY: normY})
	if err != nil {
		log.Error("encode deactivate payload", "error", err)
		return
	}
	env := &wire.Envelope{
		ProtocolVersion: wire.ProtocolVersion,
		MessageType:     wire.MessageDeactivate,
		SequenceNumber:  r.c.nextSequence(),
		SourceDeviceID:  r.c.cfg.DeviceID,
		Payload:         payload,
	}
	if err := r.conn.SendEnvelope(env); err != nil {
		log.Warn("send deactivate failed", "error", err)
	}
	if r.c.capturer != nil {
		r.c.capturer.StopSuppressing()
	}
}

func (r *receiverRole) onStateChanged(s forwarding.State) {
	if s == forwarding.Idle {
		r.buttonsDown = make(map[wire.MouseButton]bool)
	}
}

// teardown is called from restoreLocalControl: stop suppression, clear
// held-button state, and close the transport.
func (r *receiverRole) teardown() {
	if r.c.capturer != nil {
		r.c.capturer.StopSuppressing()
	}
	r.buttonsDown = make(map[wire.MouseButton]bool)
	r.sm.Reset()
	if r.conn != nil {
		r.conn.Close()
	}
}
