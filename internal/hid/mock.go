package hid

import (
	"sync"

	"github.com/edenriquez/inputshare/internal/wire"
)

// MockCapturer is an in-memory Capturer for tests and for feeding synthetic
// events in development without a real OS hook.
type MockCapturer struct {
	suppression suppressionState
	mu          sync.Mutex
	handlers    Handlers
	started     bool
}

// NewMock creates a MockCapturer.
func NewMock() *MockCapturer { return &MockCapturer{} }

func (m *MockCapturer) Start(h Handlers) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = h
	m.started = true
	return nil
}

func (m *MockCapturer) StartSuppressing(virtualStart Point, hideCursor bool) error {
	m.suppression.begin(virtualStart, hideCursor)
	return nil
}

func (m *MockCapturer) StopSuppressing() error {
	m.suppression.end()
	return nil
}

func (m *MockCapturer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = false
	return nil
}

// Feed simulates the OS hook observing a raw InputEvent, applying the same
// provenance filtering and suppression-discard rules a real platform
// Capturer would. The mock has no real cursor: while not suppressing, a
// mouse move's (DX, DY) is reported to OnRawMouseMove as the cursor position.
func (m *MockCapturer) Feed(ev wire.InputEvent, provenance uint64) {
	if provenance == ProvenanceMarker {
		return
	}
	m.mu.Lock()
	h := m.handlers
	started := m.started
	m.mu.Unlock()
	if !started {
		return
	}

	if ev.Kind == wire.EventMouseMove {
		deliver, virtual := m.suppression.observeMove(ev.DX, ev.DY)
		if h.OnRawMouseMove != nil {
			if m.suppression.isSuppressing() {
				h.OnRawMouseMove(virtual)
			} else {
				h.OnRawMouseMove(Point{X: ev.DX, Y: ev.DY})
			}
		}
		if !deliver {
			return
		}
	}
	if h.OnEvent != nil {
		h.OnEvent(ev)
	}
}

// MockInjector records injected events and cursor warps for assertions,
// and tracks held buttons like a real Injector would.
type MockInjector struct {
	mu       sync.Mutex
	buttons  *buttonTracker
	Injected []wire.InputEvent
	WarpedTo []Point
	Shown    []bool
}

// NewMockInjector creates a MockInjector.
func NewMockInjector() *MockInjector {
	return &MockInjector{buttons: newButtonTracker()}
}

func (m *MockInjector) Inject(ev wire.InputEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev.Kind == wire.EventMouseButton {
		m.buttons.update(ev.Button, ev.ButtonState)
	}
	m.Injected = append(m.Injected, ev)
	return nil
}

func (m *MockInjector) WarpCursor(p Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.WarpedTo = append(m.WarpedTo, p)
	return nil
}

func (m *MockInjector) ShowCursor(show bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Shown = append(m.Shown, show)
	return nil
}

// AnyButtonDown reports whether the injector currently believes any mouse
// button is held, used to decide move-vs-drag injection.
func (m *MockInjector) AnyButtonDown() bool {
	return m.buttons.anyDown()
}
