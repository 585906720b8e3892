// Package hid defines the platform-independent contract for C4 (capture)
// and C5 (injection), generalized from the teacher's per-OS InputHandler
// (internal/remote/desktop/input*.go) which only ever injected remote
// commands and never captured local input. Capture is new surface this
// module adds; injection keeps the teacher's per-OS dispatch shape.
package hid

import (
	"errors"
	"sync"

	"github.com/edenriquez/inputshare/internal/wire"
)

// ProvenanceMarker is written into every injected event's user-data field
// so a Capturer on the same host can recognize and discard its own
// synthetic output, breaking the capture→inject→capture loop (§4.5).
const ProvenanceMarker uint64 = 0x1d5abeefcafef00d

// ErrUnsupportedPlatform is returned by Capturer/Injector constructors (or
// their methods) on platforms with no native implementation.
var ErrUnsupportedPlatform = errors.New("hid: not supported on this platform")

// Point is a location in real (non-normalized) screen coordinates.
type Point struct{ X, Y int }

// Handlers are the callbacks a Capturer drives. Both MUST return promptly:
// they run on an OS hook thread per §5 and hand off to a serial queue.
type Handlers struct {
	// OnEvent delivers one decoded, non-suppressed InputEvent.
	OnEvent func(wire.InputEvent)
	// OnRawMouseMove delivers the current (or virtual, while suppressing)
	// cursor position on every mouse movement, independent of OnEvent.
	OnRawMouseMove func(Point)
}

// Capturer installs a system-wide input hook (C4).
type Capturer interface {
	// Start installs the hook and begins delivering to h.
	Start(h Handlers) error
	// StartSuppressing pins the real cursor, optionally hides it, and
	// begins tracking a virtual cursor seeded at virtualStart. Local
	// delivery of captured events stops; OnEvent/OnRawMouseMove continue.
	StartSuppressing(virtualStart Point, hideCursor bool) error
	// StopSuppressing reattaches the physical cursor and unhides it.
	StopSuppressing() error
	// Stop tears the hook down.
	Stop() error
}

// Injector synthesizes input against the local OS HID layer (C5).
type Injector interface {
	// Inject synthesizes ev, tagging it with ProvenanceMarker.
	Inject(ev wire.InputEvent) error
	// WarpCursor moves the real cursor without generating a capturable
	// user gesture.
	WarpCursor(p Point) error
	// ShowCursor shows or hides the system cursor.
	ShowCursor(show bool) error
}

// suppressionState is the bookkeeping shared by every platform's Capturer:
// whether suppression is active, whether to discard a startup run of
// spurious warp-induced deltas, and the tracked virtual cursor position.
// Embed it in a platform-specific capturer and call its methods from the
// hook callback.
type suppressionState struct {
	mu              sync.Mutex
	suppressing     bool
	hideCursor      bool
	virtualCursor   Point
	discardRemaining int
}

// discardOnEntry bounds how many mouse-move events after StartSuppressing
// are dropped as artifacts of warping the real cursor to its pin point
// (§4.4: "the implementation warps the real cursor to a pin point on entry
// and that warp generates a spurious delta equal to the warp distance").
const discardOnEntry = 3

func (s *suppressionState) begin(virtualStart Point, hideCursor bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressing = true
	s.hideCursor = hideCursor
	s.virtualCursor = virtualStart
	s.discardRemaining = discardOnEntry
}

func (s *suppressionState) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppressing = false
	s.discardRemaining = 0
}

// observeMove reports whether a captured mouseMove should be delivered
// (false while it's one of the discarded post-entry warp artifacts), and
// updates the tracked virtual cursor by (dx, dy) when suppressing.
func (s *suppressionState) observeMove(dx, dy int) (deliver bool, virtual Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.suppressing {
		return true, Point{}
	}
	if s.discardRemaining > 0 {
		s.discardRemaining--
		return false, s.virtualCursor
	}
	s.virtualCursor.X += dx
	s.virtualCursor.Y += dy
	return true, s.virtualCursor
}

func (s *suppressionState) isSuppressing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressing
}

func (s *suppressionState) shouldHideCursor() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hideCursor
}

// buttonTracker records which mouse buttons are currently held, so an
// Injector can decide whether an incoming mouseMove should be injected as a
// drag instead of a plain move (§4.5).
type buttonTracker struct {
	mu  sync.Mutex
	set map[wire.MouseButton]bool
}

func newButtonTracker() *buttonTracker {
	return &buttonTracker{set: make(map[wire.MouseButton]bool)}
}

func (b *buttonTracker) update(button wire.MouseButton, state wire.ButtonState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if state == wire.StateDown {
		b.set[button] = true
	} else {
		delete(b.set, button)
	}
}

func (b *buttonTracker) anyDown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.set) > 0
}

func (b *buttonTracker) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.set = make(map[wire.MouseButton]bool)
}
