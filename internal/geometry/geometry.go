// Package geometry implements C3: the multi-display virtual screen and its
// boundary queries. A Display whose left or right edge at a given Y has no
// adjacent display is a "true screen boundary" per the GLOSSARY.
package geometry

import "math"

// Point is a location in the single, shared coordinate space (top-left
// origin, matching the underlying OS per §4.3).
type Point struct {
	X, Y int
}

// Display is one physical display's rectangle within the virtual screen,
// generalized from the teacher's per-monitor MonitorInfo shape
// (internal/remote/desktop/monitor.go: Index/Name/Width/Height/X/Y/IsPrimary).
type Display struct {
	Index     int
	Name      string
	MinX      int
	MinY      int
	Width     int
	Height    int
	IsPrimary bool
}

// MaxX returns the display's right edge (exclusive).
func (d Display) MaxX() int { return d.MinX + d.Width }

// MaxY returns the display's bottom edge (exclusive).
func (d Display) MaxY() int { return d.MinY + d.Height }

func (d Display) contains(p Point) bool {
	return p.X >= d.MinX && p.X < d.MaxX() && p.Y >= d.MinY && p.Y < d.MaxY()
}

func (d Display) centerDistance(p Point) float64 {
	cx := float64(d.MinX) + float64(d.Width)/2
	cy := float64(d.MinY) + float64(d.Height)/2
	dx := float64(p.X) - cx
	dy := float64(p.Y) - cy
	return math.Hypot(dx, dy)
}

// Bounds is the virtual screen: the axis-aligned union of all Displays.
type Bounds struct {
	MinX, MinY, Width, Height int
}

func (b Bounds) MaxX() int { return b.MinX + b.Width }
func (b Bounds) MaxY() int { return b.MinY + b.Height }

// Geometry holds the virtual screen and its constituent displays, refreshed
// on session start (and optionally on topology change) per §3's Lifecycle.
type Geometry struct {
	Bounds   Bounds
	Displays []Display
}

// New computes the virtual screen bounds as the union of displays.
func New(displays []Display) *Geometry {
	g := &Geometry{Displays: displays}
	g.Bounds = unionBounds(displays)
	return g
}

func unionBounds(displays []Display) Bounds {
	if len(displays) == 0 {
		return Bounds{}
	}
	minX, minY := displays[0].MinX, displays[0].MinY
	maxX, maxY := displays[0].MaxX(), displays[0].MaxY()
	for _, d := range displays[1:] {
		if d.MinX < minX {
			minX = d.MinX
		}
		if d.MinY < minY {
			minY = d.MinY
		}
		if d.MaxX() > maxX {
			maxX = d.MaxX()
		}
		if d.MaxY() > maxY {
			maxY = d.MaxY()
		}
	}
	return Bounds{MinX: minX, MinY: minY, Width: maxX - minX, Height: maxY - minY}
}

// DisplayContaining returns the display rect containing point, or else the
// nearest display by center distance (§4.3).
func (g *Geometry) DisplayContaining(p Point) (Display, bool) {
	if len(g.Displays) == 0 {
		return Display{}, false
	}
	for _, d := range g.Displays {
		if d.contains(p) {
			return d, true
		}
	}
	nearest := g.Displays[0]
	nearestDist := nearest.centerDistance(p)
	for _, d := range g.Displays[1:] {
		if dist := d.centerDistance(p); dist < nearestDist {
			nearest = d
			nearestDist = dist
		}
	}
	return nearest, true
}

// yOverlaps reports whether two displays share any Y range — the condition
// for being "adjacent" along a vertical edge.
func yOverlaps(a, b Display) bool {
	return a.MinY < b.MaxY() && b.MinY < a.MaxY()
}

// hasAdjacentOnRight reports whether some other display sits immediately to
// the right of d (its MinX equals d's MaxX) and shares Y range with it.
func (g *Geometry) hasAdjacentOnRight(d Display) bool {
	for _, other := range g.Displays {
		if other.Index == d.Index {
			continue
		}
		if other.MinX == d.MaxX() && yOverlaps(d, other) {
			return true
		}
	}
	return false
}

// hasAdjacentOnLeft reports whether some other display sits immediately to
// the left of d (its MaxX equals d's MinX) and shares Y range with it.
func (g *Geometry) hasAdjacentOnLeft(d Display) bool {
	for _, other := range g.Displays {
		if other.Index == d.Index {
			continue
		}
		if other.MaxX() == d.MinX && yOverlaps(d, other) {
			return true
		}
	}
	return false
}

// displayAtY returns the first display whose vertical extent contains y, or
// false if no display does.
func (g *Geometry) displayAtY(y int) (Display, bool) {
	for _, d := range g.Displays {
		if y >= d.MinY && y < d.MaxY() {
			return d, true
		}
	}
	return Display{}, false
}

// DisplayAtRightBoundary returns the display whose right edge at y is a true
// screen boundary (no adjacent display on that side), or false if none.
func (g *Geometry) DisplayAtRightBoundary(y int) (Display, bool) {
	for _, d := range g.Displays {
		if y >= d.MinY && y < d.MaxY() && !g.hasAdjacentOnRight(d) {
			return d, true
		}
	}
	return Display{}, false
}

// DisplayAtLeftBoundary returns the display whose left edge at y is a true
// screen boundary, or false if none.
func (g *Geometry) DisplayAtLeftBoundary(y int) (Display, bool) {
	for _, d := range g.Displays {
		if y >= d.MinY && y < d.MaxY() && !g.hasAdjacentOnLeft(d) {
			return d, true
		}
	}
	return Display{}, false
}

// DistanceToRightBoundary returns the signed distance from p to its
// display's right edge, or +∞ if that display has an adjacent display on
// the right (i.e. the edge is not a true screen boundary).
func (g *Geometry) DistanceToRightBoundary(p Point) float64 {
	d, ok := g.DisplayContaining(p)
	if !ok || g.hasAdjacentOnRight(d) {
		return math.Inf(1)
	}
	return float64(d.MaxX() - p.X)
}

// DistanceToLeftBoundary returns the signed distance from p to its display's
// left edge, or +∞ if that display has an adjacent display on the left.
func (g *Geometry) DistanceToLeftBoundary(p Point) float64 {
	d, ok := g.DisplayContaining(p)
	if !ok || g.hasAdjacentOnLeft(d) {
		return math.Inf(1)
	}
	return float64(p.X - d.MinX)
}

// LeftmostDisplay returns the display with the smallest MinX, used as the
// receiver's fallback when no display has a true left boundary at the
// crossing Y (§4.9).
func (g *Geometry) LeftmostDisplay() (Display, bool) {
	if len(g.Displays) == 0 {
		return Display{}, false
	}
	leftmost := g.Displays[0]
	for _, d := range g.Displays[1:] {
		if d.MinX < leftmost.MinX {
			leftmost = d
		}
	}
	return leftmost, true
}

// ClampY clamps y to the display's own vertical bounds.
func (d Display) ClampY(y int) int {
	if y < d.MinY {
		return d.MinY
	}
	if y >= d.MaxY() {
		return d.MaxY() - 1
	}
	return y
}

// ClampPoint clamps p to the virtual screen bounds (§4.9's "clamp to the
// virtual bounds" used when reconstructing receiverCursorPos).
func (b Bounds) ClampPoint(p Point) Point {
	out := p
	if out.X < b.MinX {
		out.X = b.MinX
	}
	if out.X >= b.MaxX() {
		out.X = b.MaxX() - 1
	}
	if out.Y < b.MinY {
		out.Y = b.MinY
	}
	if out.Y >= b.MaxY() {
		out.Y = b.MaxY() - 1
	}
	return out
}
