// Package forwarding implements C7, the per-session forwarding state
// machine. It has no goroutines of its own: Transition methods must be
// invoked serialized (normally from a serialqueue.Queue worker), matching
// the total-ordering discipline §5 requires of session state.
package forwarding

import (
	"time"

	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/serialqueue"
)

var log = logging.L("forwarding")

// State is one of the machine's five states.
type State int

const (
	Idle State = iota
	Candidate
	Activating
	Forwarding
	Returning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Candidate:
		return "candidate"
	case Activating:
		return "activating"
	case Forwarding:
		return "forwarding"
	case Returning:
		return "returning"
	default:
		return "unknown"
	}
}

// DefaultActivationTimeout is the window the sender waits for `activated`
// before giving up and returning to idle (§5).
const DefaultActivationTimeout = 2 * time.Second

// Callbacks are invoked exactly once per corresponding outbound transition.
type Callbacks struct {
	// OnShouldSendActivate fires on the idle→activating edge.
	OnShouldSendActivate func()
	// OnShouldSendDeactivate fires on the forwarding→returning edge.
	OnShouldSendDeactivate func()
	// OnStateChanged fires on every state transition, new state only,
	// except the internal idle→candidate hop.
	OnStateChanged func(State)
}

// Machine is the C7 state machine for one session.
type Machine struct {
	queue             *serialqueue.Queue
	cb                Callbacks
	activationTimeout time.Duration

	state        State
	timeoutTimer *serialqueue.Timer
}

// New creates a Machine in the idle state. activationTimeout of zero uses
// DefaultActivationTimeout.
func New(queue *serialqueue.Queue, cb Callbacks, activationTimeout time.Duration) *Machine {
	if activationTimeout <= 0 {
		activationTimeout = DefaultActivationTimeout
	}
	return &Machine{queue: queue, cb: cb, activationTimeout: activationTimeout, state: Idle}
}

// State returns the machine's current state. Only meaningful when called
// from the serializing queue's worker.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) setState(s State) {
	m.state = s
	if m.cb.OnStateChanged != nil {
		m.cb.OnStateChanged(s)
	}
}

// EdgeTriggered handles a local edge detector firing. Per the tie-break
// rule, this is ignored unless the machine is idle (the idle→candidate hop
// is immediate and internal; callers observe `activating` next).
func (m *Machine) EdgeTriggered() {
	if m.state != Idle {
		log.Debug("edgeTriggered ignored outside idle", "state", m.state.String())
		return
	}
	m.state = Candidate
	m.setState(Activating)
	if m.cb.OnShouldSendActivate != nil {
		m.cb.OnShouldSendActivate()
	}
	m.timeoutTimer = m.queue.Schedule(m.activationTimeout, m.onActivationTimeout)
}

// ReceivedActivated handles the peer's `activated` ack. A late ack (after
// the activation timeout already fired, returning the machine to idle) is
// ignored per the tie-break rule.
func (m *Machine) ReceivedActivated() {
	if m.state != Activating {
		log.Debug("receivedActivated ignored outside activating", "state", m.state.String())
		return
	}
	m.cancelTimeout()
	m.setState(Forwarding)
}

func (m *Machine) onActivationTimeout() {
	if m.state != Activating {
		return
	}
	m.timeoutTimer = nil
	m.setState(Idle)
}

// ReturnTriggered handles the local return-edge detector firing while
// forwarding. Ignored in any other state.
func (m *Machine) ReturnTriggered() {
	if m.state != Forwarding {
		log.Debug("returnTriggered ignored outside forwarding", "state", m.state.String())
		return
	}
	m.setState(Returning)
	if m.cb.OnShouldSendDeactivate != nil {
		m.cb.OnShouldSendDeactivate()
	}
}

// ReceivedDeactivated handles the peer's ack that it has processed our
// deactivate, completing the return while the local machine was waiting in
// returning.
func (m *Machine) ReceivedDeactivated() {
	if m.state != Returning {
		log.Debug("receivedDeactivated ignored outside returning", "state", m.state.String())
		return
	}
	m.setState(Idle)
}

// ReceivedDeactivate handles the peer's request that we stop forwarding
// (the receiver-side transition triggered by its own return edge); the
// sender treats this as terminal and emits nothing locally.
func (m *Machine) ReceivedDeactivate() {
	if m.state != Forwarding {
		log.Debug("receivedDeactivate ignored outside forwarding", "state", m.state.String())
		return
	}
	m.setState(Idle)
}

// EnterForwardingDirect forces the machine directly into forwarding without
// the activate handshake, for the receiver-side instance of this machine:
// the receiver becomes forwarding the moment it accepts an `activate`, and
// never locally sends one (§4.9's receiver role).
func (m *Machine) EnterForwardingDirect() {
	m.cancelTimeout()
	m.setState(Forwarding)
}

// Reset forces the machine back to idle from any state — connection loss or
// user disconnect (§4.7's "any" row).
func (m *Machine) Reset() {
	m.cancelTimeout()
	if m.state != Idle {
		m.setState(Idle)
	}
}

func (m *Machine) cancelTimeout() {
	if m.timeoutTimer != nil {
		m.timeoutTimer.Cancel()
		m.timeoutTimer = nil
	}
}
