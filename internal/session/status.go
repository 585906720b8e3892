// Package session implements C9, binding the wire codec, transport, HID
// capture/injection, edge detection, the forwarding state machine, and the
// coalescer into one running session per connected peer pair.
package session

// Status mirrors the connection/forwarding lifecycle a UI observer cares
// about (§7's "user-visible failure behavior" and §9's thin observer
// interface — no UI types cross this boundary).
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusForwarding   Status = "forwarding"
)

// StatusObserver receives status and fatal-error notifications. Calls are
// posted from the session's UI scheduler, never from the serial queue
// driving session state (§5: "UI observers receive updates by posting onto
// a separate UI scheduler").
type StatusObserver interface {
	OnStatusChanged(status Status)
	OnFatalError(reason string)
}

// NopObserver discards every notification.
type NopObserver struct{}

func (NopObserver) OnStatusChanged(Status)    {}
func (NopObserver) OnFatalError(string)        {}
