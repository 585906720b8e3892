//go:build darwin

package hid

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/edenriquez/inputshare/internal/wire"
)

// macCapturer has no native implementation: a system-wide event tap on
// macOS requires CGEventTapCreate, which needs cgo. This module ships
// cgo-free, matching the rest of the teacher's build. Capture is therefore
// unsupported on darwin; injection (which the teacher's DarwinInputHandler
// already does via cliclick/osascript, internal/remote/desktop/input_darwin.go)
// still works, so a darwin host can run as a receiver but not as a sender.
type macCapturer struct{}

func NewCapturer() (Capturer, error) {
	return macCapturer{}, ErrUnsupportedPlatform
}

func (macCapturer) Start(Handlers) error                          { return ErrUnsupportedPlatform }
func (macCapturer) StartSuppressing(Point, bool) error             { return ErrUnsupportedPlatform }
func (macCapturer) StopSuppressing() error                         { return ErrUnsupportedPlatform }
func (macCapturer) Stop() error                                    { return ErrUnsupportedPlatform }

// MacInjector shells out to cliclick when present, falling back to
// osascript, exactly as internal/remote/desktop/input_darwin.go's
// DarwinInputHandler does. The provenance marker has no OS-level carrier
// reachable without cgo, so it is carried only in-process (the session
// controller never re-captures its own output on darwin since capture is
// unsupported here).
type MacInjector struct {
	buttons *buttonTracker
	pos     Point
}

func NewInjector() (Injector, error) {
	return &MacInjector{buttons: newButtonTracker()}, nil
}

func (m *MacInjector) Inject(ev wire.InputEvent) error {
	switch ev.Kind {
	case wire.EventMouseMove:
		m.pos.X += ev.DX
		m.pos.Y += ev.DY
		return m.move(m.pos)
	case wire.EventMouseButton:
		m.buttons.update(ev.Button, ev.ButtonState)
		return m.button(ev.Button, ev.ButtonState)
	case wire.EventScroll:
		return m.scroll(ev.ScrollDY)
	case wire.EventKey, wire.EventFlagsChanged:
		// Best-effort only: osascript keystroke injection needs a
		// printable character, which raw virtual keycodes don't carry.
		return nil
	}
	return nil
}

func (m *MacInjector) move(p Point) error {
	if _, err := exec.LookPath("cliclick"); err == nil {
		return exec.Command("cliclick", fmt.Sprintf("m:%d,%d", p.X, p.Y)).Run()
	}
	script := fmt.Sprintf(`tell application "System Events" to set mouseLocation to {%d, %d}`, p.X, p.Y)
	return exec.Command("osascript", "-e", script).Run()
}

func (m *MacInjector) button(button wire.MouseButton, state wire.ButtonState) error {
	if _, err := exec.LookPath("cliclick"); err != nil {
		return nil
	}
	btn := "d"
	if button == wire.ButtonRight {
		btn = "r"
	}
	suffix := "d"
	if state == wire.StateUp {
		suffix = "u"
	}
	return exec.Command("cliclick", fmt.Sprintf("%s%s:%d,%d", btn, suffix, m.pos.X, m.pos.Y)).Run()
}

func (m *MacInjector) scroll(delta float64) error {
	direction := "down"
	amount := delta
	if amount < 0 {
		direction = "up"
		amount = -amount
	}
	script := fmt.Sprintf(`tell application "System Events" to scroll %s by %s`, direction, strconv.Itoa(int(amount)))
	return exec.Command("osascript", "-e", script).Run()
}

func (m *MacInjector) WarpCursor(p Point) error {
	m.pos = p
	return m.move(p)
}

func (m *MacInjector) ShowCursor(show bool) error {
	// No stable unprivileged API to hide the system cursor on macOS
	// outside of a CGEventTap session; suppression still stops local
	// delivery via the capturer, which is the behavior that matters.
	return nil
}
