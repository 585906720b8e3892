//go:build !windows

package geometry

// Query is the darwin/linux fallback. Multi-monitor enumeration is
// genuinely heterogeneous across Cocoa/CoreGraphics and the various Linux
// compositors; until one is wired in, a single display at
// the platform's common default resolution stands in, matching the
// teacher's own ListMonitors stub for non-Windows builds.
func Query() (*Geometry, error) {
	return New([]Display{{
		Index:     0,
		Name:      "Default",
		Width:     1920,
		Height:    1080,
		IsPrimary: true,
	}}), nil
}
