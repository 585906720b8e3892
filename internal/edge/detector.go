// Package edge implements C6: a dwell-based edge trigger with hysteresis for
// one configured screen zone. A Detector is driven by position updates and
// reports Entered/Triggered/Exited to the forwarding state machine; it holds
// no goroutines of its own; the dwell timer is scheduled on the caller's
// serialqueue.Queue so all callbacks land back on that queue's single worker,
// preserving the total ordering §5 requires.
package edge

import (
	"fmt"
	"time"

	"github.com/edenriquez/inputshare/internal/geometry"
	"github.com/edenriquez/inputshare/internal/serialqueue"
)

// Zone names a screen edge a Detector watches.
type Zone int

const (
	ZoneLeft Zone = iota
	ZoneRight
	ZoneTopLeft
	ZoneTopRight
)

func (z Zone) String() string {
	switch z {
	case ZoneLeft:
		return "left"
	case ZoneRight:
		return "right"
	case ZoneTopLeft:
		return "topLeft"
	case ZoneTopRight:
		return "topRight"
	default:
		return "unknown"
	}
}

// ParseZone parses a --edge flag value ("left", "right", "topLeft",
// "topRight") into a Zone.
func ParseZone(s string) (Zone, error) {
	switch s {
	case "left":
		return ZoneLeft, nil
	case "right":
		return ZoneRight, nil
	case "topLeft":
		return ZoneTopLeft, nil
	case "topRight":
		return ZoneTopRight, nil
	default:
		return 0, fmt.Errorf("edge: unknown zone %q (want left, right, topLeft, or topRight)", s)
	}
}

// Config parameterizes a Detector per the zone it watches.
type Config struct {
	Zone Zone
	// EnterThreshold is the distance in pixels from the boundary at which
	// the cursor is considered in zone.
	EnterThreshold int
	// ExitThreshold is strictly greater than EnterThreshold; crossing back
	// out past it clears in-zone state.
	ExitThreshold int
	// DwellTime is how long the cursor must stay in zone before Triggered.
	DwellTime time.Duration
}

// Callbacks receives a Detector's emissions. At most one of these fires per
// state transition (leaving the zone before a trigger, and ArmAfterEntry,
// fire none); nil callbacks are simply skipped.
type Callbacks struct {
	OnEntered   func()
	OnTriggered func(pos geometry.Point)
	OnExited    func()
}

// Detector tracks one zone's in-zone/dwell/triggered state. Not safe for
// concurrent use; callers must serialize Update calls (normally by running
// them on a serialqueue.Queue).
type Detector struct {
	cfg   Config
	queue *serialqueue.Queue
	cb    Callbacks

	inZone       bool
	hasTriggered bool
	lastPos      geometry.Point
	dwellTimer   *serialqueue.Timer
}

// New creates a Detector that schedules its dwell timer on queue.
func New(cfg Config, queue *serialqueue.Queue, cb Callbacks) *Detector {
	return &Detector{cfg: cfg, queue: queue, cb: cb}
}

// Update feeds a newly observed cursor position against the current display
// geometry. Must be called serialized with the Detector's own timer
// callbacks (i.e. from the same serialqueue worker).
func (d *Detector) Update(pos geometry.Point, geom *geometry.Geometry) {
	d.lastPos = pos
	inZoneNow := d.satisfiesEnter(pos, geom)

	switch {
	case inZoneNow && !d.inZone:
		d.enter()
	case d.inZone && !inZoneNow && d.satisfiesExit(pos, geom):
		d.exit()
	}
}

func (d *Detector) satisfiesEnter(pos geometry.Point, geom *geometry.Geometry) bool {
	dist, ok := d.boundaryDistance(pos, geom)
	if !ok {
		return false
	}
	return dist <= float64(d.cfg.EnterThreshold)
}

// satisfiesExit reports whether pos has moved out past the exit threshold
// (or off of a true boundary entirely, e.g. having crossed onto an adjacent
// display), clearing in-zone state.
func (d *Detector) satisfiesExit(pos geometry.Point, geom *geometry.Geometry) bool {
	dist, ok := d.boundaryDistance(pos, geom)
	if !ok {
		return true
	}
	return dist > float64(d.cfg.ExitThreshold)
}

// boundaryDistance returns the distance from pos to the boundary its zone
// watches, and whether that boundary is a true screen edge at pos (per
// geometry's adjacency rule). A non-true boundary (cursor moved onto an
// adjacent display) never satisfies in-zone.
func (d *Detector) boundaryDistance(pos geometry.Point, geom *geometry.Geometry) (float64, bool) {
	switch d.cfg.Zone {
	case ZoneLeft, ZoneTopLeft:
		dist := geom.DistanceToLeftBoundary(pos)
		if isInf(dist) {
			return 0, false
		}
		return dist, true
	case ZoneRight, ZoneTopRight:
		dist := geom.DistanceToRightBoundary(pos)
		if isInf(dist) {
			return 0, false
		}
		return dist, true
	default:
		return 0, false
	}
}

func isInf(f float64) bool {
	return f > 1e18
}

func (d *Detector) enter() {
	d.inZone = true
	d.hasTriggered = false
	if d.dwellTimer != nil {
		d.dwellTimer.Cancel()
	}
	if d.cb.OnEntered != nil {
		d.cb.OnEntered()
	}
	d.dwellTimer = d.queue.Schedule(d.cfg.DwellTime, d.onDwellFired)
}

// onDwellFired runs on the serialqueue when the dwell timer elapses.
func (d *Detector) onDwellFired() {
	if !d.inZone || d.hasTriggered {
		return
	}
	d.hasTriggered = true
	if d.cb.OnTriggered != nil {
		d.cb.OnTriggered(d.lastPos)
	}
}

func (d *Detector) exit() {
	wasTriggered := d.hasTriggered
	d.inZone = false
	d.hasTriggered = false
	if d.dwellTimer != nil {
		d.dwellTimer.Cancel()
		d.dwellTimer = nil
	}
	if wasTriggered && d.cb.OnExited != nil {
		d.cb.OnExited()
	}
}

// ArmAfterEntry forces in-zone-but-not-yet-triggered state after a handoff,
// so the cursor must leave the exit threshold and re-enter before the next
// Triggered can fire (§4.6).
func (d *Detector) ArmAfterEntry() {
	d.inZone = true
	d.hasTriggered = false
	if d.dwellTimer != nil {
		d.dwellTimer.Cancel()
		d.dwellTimer = nil
	}
}

// Reset clears all state without emitting Exited, used when a session tears
// down or the geometry changes out from under the detector.
func (d *Detector) Reset() {
	if d.dwellTimer != nil {
		d.dwellTimer.Cancel()
		d.dwellTimer = nil
	}
	d.inZone = false
	d.hasTriggered = false
}
