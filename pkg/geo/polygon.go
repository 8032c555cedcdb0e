package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// SignedArea returns the signed area of a ring using the shoelace formula.
// Positive for counterclockwise winding, negative for clockwise.
func SignedArea(ring geom.Path) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	area := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += ring[i].X * ring[j].Y
		area -= ring[j].X * ring[i].Y
	}
	return area / 2
}

// RingContains reports whether pt lies inside the ring using ray casting.
func RingContains(ring geom.Path, pt geom.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi := ring[i]
		vj := ring[j]
		if (vi.Y > pt.Y) != (vj.Y > pt.Y) &&
			pt.X < (vj.X-vi.X)*(pt.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// Contains reports whether pt lies inside poly. Rings are combined with the
// even-odd rule, so holes are excluded; a multipolygon contains pt when any
// of its parts does.
func Contains(poly geom.Polygonal, pt geom.Point) bool {
	for _, p := range poly.Polygons() {
		inside := false
		for _, ring := range p {
			if RingContains(ring, pt) {
				inside = !inside
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// Perimeter returns the total length of all rings of poly.
func Perimeter(poly geom.Polygonal) float64 {
	total := 0.0
	for _, p := range poly.Polygons() {
		for _, ring := range p {
			forEachEdge(ring, func(a, b geom.Point) {
				total += Distance(a, b)
			})
		}
	}
	return total
}

// BoundsArea returns the area of an axis-aligned bounding box.
func BoundsArea(b *geom.Bounds) float64 {
	if b == nil {
		return 0
	}
	return math.Max(0, b.Max.X-b.Min.X) * math.Max(0, b.Max.Y-b.Min.Y)
}

// BoundsOverlap reports whether two boxes intersect or touch.
func BoundsOverlap(a, b *geom.Bounds) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X &&
		a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}

// forEachEdge calls fn for every edge of the closed ring, including the
// closing edge when the ring does not repeat its first vertex.
func forEachEdge(ring geom.Path, fn func(a, b geom.Point)) {
	n := len(ring)
	if n < 2 {
		return
	}
	for i := 0; i < n-1; i++ {
		fn(ring[i], ring[i+1])
	}
	if ring[0] != ring[n-1] {
		fn(ring[n-1], ring[0])
	}
}
