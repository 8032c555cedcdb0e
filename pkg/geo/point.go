// Package geo provides the planar geometry the aggregation and coastal
// allocation steps need on top of github.com/ctessum/geom: point-in-polygon
// tests, ring perimeters, shared-boundary lengths and a bounds index.
package geo

import (
	"math"

	"github.com/ctessum/geom"
)

// Pt is a shorthand constructor for geom.Point.
func Pt(x, y float64) geom.Point {
	return geom.Point{X: x, Y: y}
}

func sub(p, q geom.Point) geom.Point {
	return geom.Point{X: p.X - q.X, Y: p.Y - q.Y}
}

func dot(p, q geom.Point) float64 {
	return p.X*q.X + p.Y*q.Y
}

// cross returns the z-component of the 3D cross product.
func cross(p, q geom.Point) float64 {
	return p.X*q.Y - p.Y*q.X
}

func length(p geom.Point) float64 {
	return math.Hypot(p.X, p.Y)
}

// Distance returns the Euclidean distance from p to q.
func Distance(p, q geom.Point) float64 {
	return length(sub(p, q))
}
