package geometry

import (
	"math"
	"testing"
)

func twoSideBySide() *Geometry {
	// Left display 0..1000, right display 1000..2000, same Y range.
	return New([]Display{
		{Index: 0, MinX: 0, MinY: 0, Width: 1000, Height: 1200},
		{Index: 1, MinX: 1000, MinY: 0, Width: 1000, Height: 1200},
	})
}

func TestUnionBounds(t *testing.T) {
	g := twoSideBySide()
	if g.Bounds != (Bounds{MinX: 0, MinY: 0, Width: 2000, Height: 1200}) {
		t.Fatalf("bounds = %+v", g.Bounds)
	}
}

func TestInteriorBoundaryIsNotATrueBoundary(t *testing.T) {
	g := twoSideBySide()

	// The right edge of display 0 (x=1000) has display 1 adjacent: not a
	// true boundary. Only display 1's right edge (x=2000) qualifies.
	if d, ok := g.DisplayAtRightBoundary(600); ok {
		if d.Index == 0 {
			t.Fatalf("interior edge between displays incorrectly reported as a true boundary")
		}
	}

	dist := g.DistanceToRightBoundary(Point{X: 999, Y: 600})
	if !math.IsInf(dist, 1) {
		t.Fatalf("DistanceToRightBoundary at interior edge = %v, want +Inf", dist)
	}
}

func TestTrueOuterBoundary(t *testing.T) {
	g := twoSideBySide()

	d, ok := g.DisplayAtRightBoundary(600)
	if !ok || d.Index != 1 {
		t.Fatalf("DisplayAtRightBoundary(600) = %+v, %v, want display 1", d, ok)
	}

	dist := g.DistanceToRightBoundary(Point{X: 1998, Y: 600})
	if dist != 2 {
		t.Fatalf("DistanceToRightBoundary = %v, want 2", dist)
	}
}

func TestLeftBoundarySymmetric(t *testing.T) {
	g := twoSideBySide()

	d, ok := g.DisplayAtLeftBoundary(600)
	if !ok || d.Index != 0 {
		t.Fatalf("DisplayAtLeftBoundary(600) = %+v, %v, want display 0", d, ok)
	}

	if _, ok := g.DisplayAtLeftBoundary(600); !ok {
		t.Fatal("expected a left boundary at y=600")
	}

	dist := g.DistanceToLeftBoundary(Point{X: 1001, Y: 600})
	if !math.IsInf(dist, 1) {
		t.Fatalf("DistanceToLeftBoundary at interior edge = %v, want +Inf", dist)
	}
}

func TestDisplayContainingFallsBackToNearest(t *testing.T) {
	g := twoSideBySide()
	d, ok := g.DisplayContaining(Point{X: -50, Y: 600})
	if !ok || d.Index != 0 {
		t.Fatalf("DisplayContaining(out of bounds) = %+v, %v, want display 0", d, ok)
	}
}

func TestClampPoint(t *testing.T) {
	g := twoSideBySide()
	p := g.Bounds.ClampPoint(Point{X: 5000, Y: -10})
	if p.X != 1999 || p.Y != 0 {
		t.Fatalf("ClampPoint = %+v", p)
	}
}

func TestNonAdjacentDisplaysAtDifferentYRanges(t *testing.T) {
	// Displays share an X edge but not a Y range: not adjacent, so both are
	// true boundaries at y values outside the overlap.
	g := New([]Display{
		{Index: 0, MinX: 0, MinY: 0, Width: 1000, Height: 600},
		{Index: 1, MinX: 1000, MinY: 700, Width: 1000, Height: 600},
	})
	if _, ok := g.DisplayAtRightBoundary(300); !ok {
		t.Fatal("expected display 0's right edge to be a true boundary (no Y overlap with display 1)")
	}
}
