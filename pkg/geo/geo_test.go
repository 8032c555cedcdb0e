package geo

import (
	"math"
	"sort"
	"testing"

	"github.com/ctessum/geom"
)

const tolerance = 0.01

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{Pt(x0, y0), Pt(x1, y0), Pt(x1, y1), Pt(x0, y1)}}
}

func TestSignedAreaSquare(t *testing.T) {
	sq := square(0, 0, 10, 10)
	if !approxEqual(SignedArea(sq[0]), 100, tolerance) {
		t.Errorf("expected area 100, got %f", SignedArea(sq[0]))
	}
	rev := geom.Path{Pt(0, 0), Pt(0, 10), Pt(10, 10), Pt(10, 0)}
	if !approxEqual(SignedArea(rev), -100, tolerance) {
		t.Errorf("expected clockwise area -100, got %f", SignedArea(rev))
	}
}

func TestContains(t *testing.T) {
	sq := square(0, 0, 10, 10)
	if !Contains(sq, Pt(5, 5)) {
		t.Error("expected (5,5) inside square")
	}
	if Contains(sq, Pt(15, 5)) {
		t.Error("expected (15,5) outside square")
	}
	if Contains(sq, Pt(-1, 5)) {
		t.Error("expected (-1,5) outside square")
	}
}

func TestContainsHole(t *testing.T) {
	donut := geom.Polygon{
		{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10)},
		{Pt(4, 4), Pt(6, 4), Pt(6, 6), Pt(4, 6)},
	}
	if Contains(donut, Pt(5, 5)) {
		t.Error("expected (5,5) inside the hole to be outside")
	}
	if !Contains(donut, Pt(2, 2)) {
		t.Error("expected (2,2) inside the ring")
	}
}

func TestContainsMultiPolygon(t *testing.T) {
	mp := geom.MultiPolygon{square(0, 0, 1, 1), square(5, 5, 6, 6)}
	if !Contains(mp, Pt(5.5, 5.5)) {
		t.Error("expected point in second part to be inside")
	}
	if Contains(mp, Pt(3, 3)) {
		t.Error("expected point between parts to be outside")
	}
}

func TestPerimeter(t *testing.T) {
	if !approxEqual(Perimeter(square(0, 0, 10, 10)), 40, tolerance) {
		t.Errorf("expected perimeter 40, got %f", Perimeter(square(0, 0, 10, 10)))
	}
	closed := geom.Polygon{{Pt(0, 0), Pt(10, 0), Pt(10, 10), Pt(0, 10), Pt(0, 0)}}
	if !approxEqual(Perimeter(closed), 40, tolerance) {
		t.Errorf("expected explicitly closed ring perimeter 40, got %f", Perimeter(closed))
	}
}

func TestSharedBoundaryAdjacentSquares(t *testing.T) {
	land := square(0, 0, 10, 10)
	sea := square(10, 0, 20, 5)
	got := SharedBoundaryLength(land, sea, DefaultTolerance)
	if !approxEqual(got, 5, tolerance) {
		t.Errorf("expected shared coast 5, got %f", got)
	}
}

func TestSharedBoundaryDisjoint(t *testing.T) {
	got := SharedBoundaryLength(square(0, 0, 1, 1), square(3, 3, 4, 4), DefaultTolerance)
	if got != 0 {
		t.Errorf("expected no shared boundary, got %f", got)
	}
}

func TestIntersectionLengthTouching(t *testing.T) {
	got := IntersectionLength(square(0, 0, 10, 10), square(10, 2, 30, 8), DefaultTolerance)
	if !approxEqual(got, 6, tolerance) {
		t.Errorf("expected 6, got %f", got)
	}
	if Intersects(square(0, 0, 1, 1), square(2, 0, 3, 1), DefaultTolerance) {
		t.Error("expected separated squares not to intersect")
	}
}

func TestIndexCandidates(t *testing.T) {
	polys := []geom.Polygonal{square(0, 0, 1, 1), square(10, 10, 11, 11), square(0.5, 0.5, 2, 2)}
	ix := NewIndex(polys)
	got := ix.Candidates(&geom.Bounds{Min: Pt(0.2, 0.2), Max: Pt(0.8, 0.8)}, DefaultTolerance)
	sort.Ints(got)
	if len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("expected candidates [0 2], got %v", got)
	}
}

func TestIndexCandidatesTouching(t *testing.T) {
	ix := NewIndex([]geom.Polygonal{square(0, 0, 10, 10)})
	got := ix.Candidates(square(10, 0, 20, 5).Bounds(), DefaultTolerance)
	if len(got) != 1 {
		t.Errorf("expected touching polygon as candidate, got %v", got)
	}
}

func TestIndexCandidatesWithinTolerance(t *testing.T) {
	ix := NewIndex([]geom.Polygonal{square(0, 0, 10, 10)})
	gap := square(10.5, 0, 20, 5).Bounds()
	if got := ix.Candidates(gap, DefaultTolerance); len(got) != 0 {
		t.Errorf("expected no candidate across the gap, got %v", got)
	}
	if got := ix.Candidates(gap, 1); len(got) != 1 {
		t.Errorf("expected candidate within tolerance 1, got %v", got)
	}
}

func TestIntersectsAtSingleVertex(t *testing.T) {
	a := square(0, 0, 10, 10)
	b := square(10, 10, 20, 20)
	if !Intersects(a, b, DefaultTolerance) {
		t.Error("expected squares touching at a corner to intersect")
	}
	if got := IntersectionLength(a, b, DefaultTolerance); got != 0 {
		t.Errorf("expected no shared length at a corner, got %f", got)
	}
	if !Intersects(square(0, 0, 10, 10), square(2, 2, 4, 4), DefaultTolerance) {
		t.Error("expected contained square to intersect")
	}
}

func TestIntersectionLengthOverlapping(t *testing.T) {
	got := IntersectionLength(square(0, 0, 10, 10), square(8, 0, 20, 10), DefaultTolerance)
	if !approxEqual(got, 24, tolerance) {
		t.Errorf("expected perimeter of 2x10 overlap 24, got %f", got)
	}
}
