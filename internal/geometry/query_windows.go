//go:build windows

package geometry

import (
	"fmt"
	"syscall"
	"unsafe"
)

var (
	user32                  = syscall.NewLazyDLL("user32.dll")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
	procGetMonitorInfoW     = user32.NewProc("GetMonitorInfoW")
)

type winRect struct{ Left, Top, Right, Bottom int32 }

type monitorInfoEx struct {
	CbSize   uint32
	Monitor  winRect
	WorkArea winRect
	Flags    uint32
	Device   [32]uint16
}

const monitorInfofPrimary = 0x1

// Query enumerates connected displays via the Win32 multi-monitor API
// (EnumDisplayMonitors/GetMonitorInfoW), the source §4.3's "refreshed on
// session start" virtual screen draws from on Windows.
func Query() (*Geometry, error) {
	var displays []Display
	cb := syscall.NewCallback(func(hMonitor uintptr, _ uintptr, _ uintptr, _ uintptr) uintptr {
		var info monitorInfoEx
		info.CbSize = uint32(unsafe.Sizeof(info))
		procGetMonitorInfoW.Call(hMonitor, uintptr(unsafe.Pointer(&info)))
		displays = append(displays, Display{
			Index:     len(displays),
			Name:      syscall.UTF16ToString(info.Device[:]),
			MinX:      int(info.Monitor.Left),
			MinY:      int(info.Monitor.Top),
			Width:     int(info.Monitor.Right - info.Monitor.Left),
			Height:    int(info.Monitor.Bottom - info.Monitor.Top),
			IsPrimary: info.Flags&monitorInfofPrimary != 0,
		})
		return 1
	})
	procEnumDisplayMonitors.Call(0, 0, cb, 0)
	if len(displays) == 0 {
		return nil, fmt.Errorf("geometry: no displays found")
	}
	return New(displays), nil
}
