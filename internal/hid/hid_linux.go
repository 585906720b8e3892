//go:build linux

package hid

import (
	"os/exec"
	"strconv"

	"github.com/edenriquez/inputshare/internal/wire"
)

// linuxCapturer has no native implementation: capturing a system-wide
// input stream on Linux needs either an evdev grab (root, and a fixed
// device path) or an X11/Wayland extension, neither of which has a
// dependency-free pure-Go path. internal/remote/desktop/input_linux.go's
// LinuxInputHandler is injection-only for the same reason; this mirrors
// that split. A Linux host can run as a receiver but not as a sender.
type linuxCapturer struct{}

func NewCapturer() (Capturer, error) {
	return linuxCapturer{}, ErrUnsupportedPlatform
}

func (linuxCapturer) Start(Handlers) error              { return ErrUnsupportedPlatform }
func (linuxCapturer) StartSuppressing(Point, bool) error { return ErrUnsupportedPlatform }
func (linuxCapturer) StopSuppressing() error             { return ErrUnsupportedPlatform }
func (linuxCapturer) Stop() error                        { return ErrUnsupportedPlatform }

// LinuxInjector shells out to xdotool, adapted from
// internal/remote/desktop/input_linux.go's LinuxInputHandler.
type LinuxInjector struct {
	buttons *buttonTracker
	pos     Point
}

func NewInjector() (Injector, error) {
	return &LinuxInjector{buttons: newButtonTracker()}, nil
}

func (l *LinuxInjector) Inject(ev wire.InputEvent) error {
	switch ev.Kind {
	case wire.EventMouseMove:
		l.pos.X += ev.DX
		l.pos.Y += ev.DY
		return exec.Command("xdotool", "mousemove", strconv.Itoa(l.pos.X), strconv.Itoa(l.pos.Y)).Run()
	case wire.EventMouseButton:
		l.buttons.update(ev.Button, ev.ButtonState)
		return l.button(ev.Button, ev.ButtonState)
	case wire.EventScroll:
		return l.scroll(ev.ScrollDY)
	case wire.EventKey, wire.EventFlagsChanged:
		return l.key(ev)
	}
	return nil
}

func (l *LinuxInjector) button(button wire.MouseButton, state wire.ButtonState) error {
	btn := "1"
	switch button {
	case wire.ButtonRight:
		btn = "3"
	case wire.ButtonOther:
		btn = "2"
	}
	action := "mousedown"
	if state == wire.StateUp {
		action = "mouseup"
	}
	return exec.Command("xdotool", action, btn).Run()
}

func (l *LinuxInjector) scroll(delta float64) error {
	button := "4" // wheel up
	clicks := int(delta)
	if clicks < 0 {
		button = "5" // wheel down
		clicks = -clicks
	}
	return exec.Command("xdotool", "click", "--repeat", strconv.Itoa(clicks), button).Run()
}

func (l *LinuxInjector) key(ev wire.InputEvent) error {
	action := "keydown"
	if ev.KeyState == wire.StateUp {
		action = "keyup"
	}
	return exec.Command("xdotool", action, strconv.Itoa(int(ev.Keycode))).Run()
}

func (l *LinuxInjector) WarpCursor(p Point) error {
	l.pos = p
	return exec.Command("xdotool", "mousemove", strconv.Itoa(p.X), strconv.Itoa(p.Y)).Run()
}

func (l *LinuxInjector) ShowCursor(show bool) error {
	return nil
}
