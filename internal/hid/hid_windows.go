//go:build windows

package hid

import (
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/edenriquez/inputshare/internal/logging"
	"github.com/edenriquez/inputshare/internal/wire"
)

var log = logging.L("hid")

var (
	user32           = syscall.NewLazyDLL("user32.dll")
	procSetHook      = user32.NewProc("SetWindowsHookExW")
	procUnhookHook   = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHook = user32.NewProc("CallNextHookEx")
	procGetMessage   = user32.NewProc("GetMessageW")
	procSendInput    = user32.NewProc("SendInput")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procShowCursor   = user32.NewProc("ShowCursor")
	procGetMetrics   = user32.NewProc("GetSystemMetrics")
)

const (
	whMouseLL    = 14
	whKeyboardLL = 13

	wmMouseMove  = 0x0200
	wmLButtonDn  = 0x0201
	wmLButtonUp  = 0x0202
	wmRButtonDn  = 0x0204
	wmRButtonUp  = 0x0205
	wmMButtonDn  = 0x0207
	wmMButtonUp  = 0x0208
	wmMouseWheel = 0x020A
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	smCXVirtualScreen = 78
	smCYVirtualScreen = 79

	inputMouse    = 0
	inputKeyboard = 1

	mouseEventFMove       = 0x0001
	mouseEventFLeftDown   = 0x0002
	mouseEventFLeftUp     = 0x0004
	mouseEventFRightDown  = 0x0008
	mouseEventFRightUp    = 0x0010
	mouseEventFMiddleDown = 0x0020
	mouseEventFMiddleUp   = 0x0040
	mouseEventFWheel      = 0x0800
	mouseEventFAbsolute   = 0x8000
	mouseEventFVirtualDsk = 0x4000

	keyEventFKeyUp    = 0x0002
	keyEventFScancode = 0x0008
)

type msllhookstruct struct {
	pt          windows.Point
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type kbdllhookstruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type mouseInput struct {
	dx, dy      int32
	mouseData   uint32
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

type keybdInput struct {
	wVk         uint16
	wScan       uint16
	dwFlags     uint32
	time        uint32
	dwExtraInfo uintptr
}

// WinCapturer installs low-level mouse/keyboard hooks (WH_MOUSE_LL,
// WH_KEYBOARD_LL), generalizing the teacher's WindowsInputHandler pattern
// (internal/remote/desktop/input_windows.go) from injection-only to also
// capturing raw local input.
type WinCapturer struct {
	suppression suppressionState

	mu         sync.Mutex
	handlers   Handlers
	mouseHook  uintptr
	kbdHook    uintptr
	stop       chan struct{}
	lastPoint  windows.Point
	haveLast   bool
}

func NewCapturer() (Capturer, error) {
	return &WinCapturer{}, nil
}

func (c *WinCapturer) Start(h Handlers) error {
	c.mu.Lock()
	c.handlers = h
	c.stop = make(chan struct{})
	c.mu.Unlock()

	ready := make(chan error, 1)
	go c.run(ready)
	return <-ready
}

// run pumps a message loop on a locked OS thread: low-level hooks must be
// installed and serviced from the same thread per the Windows hook API.
func (c *WinCapturer) run(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	mouseCB := syscall.NewCallback(c.mouseHookProc)
	kbdCB := syscall.NewCallback(c.kbdHookProc)

	mh, _, _ := procSetHook.Call(whMouseLL, mouseCB, 0, 0)
	if mh == 0 {
		ready <- fmt.Errorf("hid: SetWindowsHookExW(WH_MOUSE_LL): %w", windows.GetLastError())
		return
	}
	kh, _, _ := procSetHook.Call(whKeyboardLL, kbdCB, 0, 0)
	if kh == 0 {
		procUnhookHook.Call(mh)
		ready <- fmt.Errorf("hid: SetWindowsHookExW(WH_KEYBOARD_LL): %w", windows.GetLastError())
		return
	}

	c.mu.Lock()
	c.mouseHook = mh
	c.kbdHook = kh
	c.mu.Unlock()
	log.Debug("hid hooks installed")
	ready <- nil

	var msg struct {
		hwnd    uintptr
		message uint32
		wParam  uintptr
		lParam  uintptr
		time    uint32
		pt      windows.Point
	}
	for {
		select {
		case <-c.stop:
			procUnhookHook.Call(mh)
			procUnhookHook.Call(kh)
			return
		default:
		}
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		if int32(ret) <= 0 {
			continue
		}
	}
}

func (c *WinCapturer) mouseHookProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		info := (*msllhookstruct)(unsafe.Pointer(lParam))
		if info.dwExtraInfo != uintptr(ProvenanceMarker) {
			c.handleMouse(uint32(wParam), info)
		}
	}
	ret, _, _ := procCallNextHook.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (c *WinCapturer) handleMouse(msg uint32, info *msllhookstruct) {
	c.mu.Lock()
	h := c.handlers
	last := c.lastPoint
	haveLast := c.haveLast
	c.lastPoint = info.pt
	c.haveLast = true
	c.mu.Unlock()

	if msg == wmMouseMove {
		dx, dy := 0, 0
		if haveLast {
			dx = int(info.pt.X - last.X)
			dy = int(info.pt.Y - last.Y)
		}
		deliver, virtual := c.suppression.observeMove(dx, dy)
		if h.OnRawMouseMove != nil {
			if c.suppression.isSuppressing() {
				h.OnRawMouseMove(Point{X: virtual.X, Y: virtual.Y})
			} else {
				h.OnRawMouseMove(Point{X: int(info.pt.X), Y: int(info.pt.Y)})
			}
		}
		if deliver && h.OnEvent != nil {
			h.OnEvent(wire.InputEvent{Kind: wire.EventMouseMove, DX: dx, DY: dy})
		}
		return
	}

	if h.OnEvent == nil {
		return
	}
	switch msg {
	case wmLButtonDn:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateDown})
	case wmLButtonUp:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonLeft, ButtonState: wire.StateUp})
	case wmRButtonDn:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonRight, ButtonState: wire.StateDown})
	case wmRButtonUp:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonRight, ButtonState: wire.StateUp})
	case wmMButtonDn:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonOther, ButtonState: wire.StateDown})
	case wmMButtonUp:
		h.OnEvent(wire.InputEvent{Kind: wire.EventMouseButton, Button: wire.ButtonOther, ButtonState: wire.StateUp})
	case wmMouseWheel:
		delta := float64(int16(info.mouseData >> 16))
		h.OnEvent(wire.InputEvent{Kind: wire.EventScroll, ScrollDY: delta})
	}
}

func (c *WinCapturer) kbdHookProc(nCode int32, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		info := (*kbdllhookstruct)(unsafe.Pointer(lParam))
		if info.dwExtraInfo != uintptr(ProvenanceMarker) {
			c.mu.Lock()
			h := c.handlers
			c.mu.Unlock()
			if h.OnEvent != nil {
				state := wire.StateDown
				if wParam == wmKeyUp || wParam == wmSysKeyUp {
					state = wire.StateUp
				}
				h.OnEvent(wire.InputEvent{Kind: wire.EventKey, Keycode: uint16(info.vkCode), KeyState: state})
			}
		}
	}
	ret, _, _ := procCallNextHook.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

// StartSuppressing recenters and optionally hides the cursor and starts
// virtual-position tracking. The hooks still pass every event on through
// CallNextHookEx, so local applications keep receiving captured input while
// suppressing.
func (c *WinCapturer) StartSuppressing(virtualStart Point, hideCursor bool) error {
	vx, _, _ := procGetMetrics.Call(smCXVirtualScreen)
	vy, _, _ := procGetMetrics.Call(smCYVirtualScreen)
	centerX := int32(vx) / 2
	centerY := int32(vy) / 2
	procSetCursorPos.Call(uintptr(centerX), uintptr(centerY))
	if hideCursor {
		procShowCursor.Call(0)
	}
	c.suppression.begin(virtualStart, hideCursor)
	return nil
}

func (c *WinCapturer) StopSuppressing() error {
	if c.suppression.shouldHideCursor() {
		procShowCursor.Call(1)
	}
	c.suppression.end()
	return nil
}

func (c *WinCapturer) Stop() error {
	c.mu.Lock()
	stop := c.stop
	c.mu.Unlock()
	if stop != nil {
		close(stop)
		log.Debug("hid hooks torn down")
	}
	return nil
}

// WinInjector synthesizes input via SendInput, tagging every event with
// ProvenanceMarker in dwExtraInfo so WinCapturer ignores its own output.
// Adapted from input_windows.go's per-event SendInput calls.
type WinInjector struct {
	buttons *buttonTracker
}

func NewInjector() (Injector, error) {
	return &WinInjector{buttons: newButtonTracker()}, nil
}

func (w *WinInjector) Inject(ev wire.InputEvent) error {
	switch ev.Kind {
	case wire.EventMouseMove:
		return w.injectMove(ev)
	case wire.EventMouseButton:
		w.buttons.update(ev.Button, ev.ButtonState)
		return w.injectButton(ev)
	case wire.EventScroll:
		return w.injectScroll(ev)
	case wire.EventKey, wire.EventFlagsChanged:
		return w.injectKey(ev)
	}
	return nil
}

func (w *WinInjector) injectMove(ev wire.InputEvent) error {
	mi := mouseInput{
		dx: int32(ev.DX), dy: int32(ev.DY),
		dwFlags:     mouseEventFMove,
		dwExtraInfo: uintptr(ProvenanceMarker),
	}
	return sendMouseInput(mi)
}

func (w *WinInjector) injectButton(ev wire.InputEvent) error {
	var flags uint32
	switch {
	case ev.Button == wire.ButtonLeft && ev.ButtonState == wire.StateDown:
		flags = mouseEventFLeftDown
	case ev.Button == wire.ButtonLeft && ev.ButtonState == wire.StateUp:
		flags = mouseEventFLeftUp
	case ev.Button == wire.ButtonRight && ev.ButtonState == wire.StateDown:
		flags = mouseEventFRightDown
	case ev.Button == wire.ButtonRight && ev.ButtonState == wire.StateUp:
		flags = mouseEventFRightUp
	case ev.Button == wire.ButtonOther && ev.ButtonState == wire.StateDown:
		flags = mouseEventFMiddleDown
	case ev.Button == wire.ButtonOther && ev.ButtonState == wire.StateUp:
		flags = mouseEventFMiddleUp
	}
	mi := mouseInput{dwFlags: flags, dwExtraInfo: uintptr(ProvenanceMarker)}
	return sendMouseInput(mi)
}

func (w *WinInjector) injectScroll(ev wire.InputEvent) error {
	mi := mouseInput{
		mouseData:   uint32(int32(ev.ScrollDY)),
		dwFlags:     mouseEventFWheel,
		dwExtraInfo: uintptr(ProvenanceMarker),
	}
	return sendMouseInput(mi)
}

func (w *WinInjector) injectKey(ev wire.InputEvent) error {
	var flags uint32
	if ev.KeyState == wire.StateUp {
		flags = keyEventFKeyUp
	}
	ki := keybdInput{wVk: ev.Keycode, dwFlags: flags, dwExtraInfo: uintptr(ProvenanceMarker)}
	return sendKeybdInput(ki)
}

func sendMouseInput(mi mouseInput) error {
	type input struct {
		inputType uint32
		_         [4]byte
		mi        mouseInput
	}
	inp := input{inputType: inputMouse, mi: mi}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("hid: SendInput(mouse): %w", err)
	}
	return nil
}

func sendKeybdInput(ki keybdInput) error {
	type input struct {
		inputType uint32
		_         [4]byte
		ki        keybdInput
	}
	inp := input{inputType: inputKeyboard, ki: ki}
	ret, _, err := procSendInput.Call(1, uintptr(unsafe.Pointer(&inp)), unsafe.Sizeof(inp))
	if ret == 0 {
		return fmt.Errorf("hid: SendInput(keyboard): %w", err)
	}
	return nil
}

func (w *WinInjector) WarpCursor(p Point) error {
	ret, _, err := procSetCursorPos.Call(uintptr(p.X), uintptr(p.Y))
	if ret == 0 {
		return fmt.Errorf("hid: SetCursorPos: %w", err)
	}
	return nil
}

func (w *WinInjector) ShowCursor(show bool) error {
	v := uintptr(0)
	if show {
		v = 1
	}
	procShowCursor.Call(v)
	return nil
}
