package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// DefaultTolerance is the collinearity tolerance, in CRS units, used to
// decide whether two boundary edges coincide.
const DefaultTolerance = 1e-7

type edge struct {
	a, b geom.Point
	box  geom.Bounds
}

func edgesOf(poly geom.Polygonal) []edge {
	var edges []edge
	for _, p := range poly.Polygons() {
		for _, ring := range p {
			forEachEdge(ring, func(a, b geom.Point) {
				edges = append(edges, edge{
					a: a,
					b: b,
					box: geom.Bounds{
						Min: geom.Point{X: math.Min(a.X, b.X), Y: math.Min(a.Y, b.Y)},
						Max: geom.Point{X: math.Max(a.X, b.X), Y: math.Max(a.Y, b.Y)},
					},
				})
			})
		}
	}
	return edges
}

// overlap returns the length along which segment q lies on segment p.
func overlap(p, q edge, tol float64) float64 {
	d := sub(p.b, p.a)
	l := length(d)
	if l < tol {
		return 0
	}
	if math.Abs(cross(d, sub(q.a, p.a)))/l > tol || math.Abs(cross(d, sub(q.b, p.a)))/l > tol {
		return 0
	}
	t1 := dot(sub(q.a, p.a), d) / l
	t2 := dot(sub(q.b, p.a), d) / l
	lo := math.Max(0, math.Min(t1, t2))
	hi := math.Min(l, math.Max(t1, t2))
	return math.Max(0, hi-lo)
}

// SharedBoundaryLength returns the length of the line along which the
// boundaries of a and b coincide, for example the coast an administrative
// unit shares with an exclusive economic zone.
func SharedBoundaryLength(a, b geom.Polygonal, tol float64) float64 {
	ea := edgesOf(a)
	eb := edgesOf(b)
	grow := func(box geom.Bounds) *geom.Bounds {
		return &geom.Bounds{
			Min: geom.Point{X: box.Min.X - tol, Y: box.Min.Y - tol},
			Max: geom.Point{X: box.Max.X + tol, Y: box.Max.Y + tol},
		}
	}
	total := 0.0
	for _, p := range ea {
		pb := grow(p.box)
		for _, q := range eb {
			if !BoundsOverlap(pb, &q.box) {
				continue
			}
			total += overlap(p, q, tol)
		}
	}
	return total
}

// IntersectionLength returns the length of the geometry a ∩ b: the
// perimeter of the overlap when the two overlap in area, otherwise the
// length of their shared boundary.
func IntersectionLength(a, b geom.Polygonal, tol float64) float64 {
	if !BoundsOverlap(a.Bounds(), b.Bounds()) {
		return 0
	}
	if inter := a.Intersection(b); inter != nil && inter.Area() > tol*tol {
		return Perimeter(inter)
	}
	return SharedBoundaryLength(a, b, tol)
}

// Intersects reports whether a and b share any point, including polygons
// that only touch at a single vertex.
func Intersects(a, b geom.Polygonal, tol float64) bool {
	ab := a.Bounds()
	grown := &geom.Bounds{
		Min: geom.Point{X: ab.Min.X - tol, Y: ab.Min.Y - tol},
		Max: geom.Point{X: ab.Max.X + tol, Y: ab.Max.Y + tol},
	}
	if !BoundsOverlap(grown, b.Bounds()) {
		return false
	}
	if inter := a.Intersection(b); inter != nil && inter.Area() > tol*tol {
		return true
	}
	eb := edgesOf(b)
	for _, p := range edgesOf(a) {
		for _, q := range eb {
			if segmentDistance(p, q) <= tol {
				return true
			}
		}
	}
	return false
}

// segmentDistance returns the smallest distance between segments p and q.
func segmentDistance(p, q edge) float64 {
	dp := sub(p.b, p.a)
	dq := sub(q.b, q.a)
	d1 := cross(dp, sub(q.a, p.a))
	d2 := cross(dp, sub(q.b, p.a))
	d3 := cross(dq, sub(p.a, q.a))
	d4 := cross(dq, sub(p.b, q.a))
	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) && ((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return 0
	}
	return math.Min(
		math.Min(pointSegmentDistance(q.a, p), pointSegmentDistance(q.b, p)),
		math.Min(pointSegmentDistance(p.a, q), pointSegmentDistance(p.b, q)),
	)
}

func pointSegmentDistance(pt geom.Point, s edge) float64 {
	d := sub(s.b, s.a)
	l2 := dot(d, d)
	if l2 == 0 {
		return Distance(pt, s.a)
	}
	t := math.Max(0, math.Min(1, dot(sub(pt, s.a), d)/l2))
	return Distance(pt, geom.Point{X: s.a.X + t*d.X, Y: s.a.Y + t*d.Y})
}
