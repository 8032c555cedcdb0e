// Package raster holds co-registered 2-D grids, their georeferencing and the
// boolean mask algebra the eligibility classification is built from.
package raster

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrShapeMismatch is returned when co-registered grids differ in shape.
	ErrShapeMismatch = errors.New("raster shapes differ")

	// ErrRotatedTransform is returned for affine transforms with rotation or
	// a south-up orientation, which the aggregation code does not support.
	ErrRotatedTransform = errors.New("only north-up transforms are supported")
)

// Value is the set of pixel types used by the pipeline.
type Value interface {
	~uint8 | ~int16 | ~int32 | ~float32 | ~float64
}

// Grid is a row-major 2-D raster.
type Grid[T Value] struct {
	Rows   int
	Cols   int
	Values []T
}

// New returns a zero-valued grid.
func New[T Value](rows, cols int) *Grid[T] {
	return &Grid[T]{Rows: rows, Cols: cols, Values: make([]T, rows*cols)}
}

// Filled returns a grid with every pixel set to v.
func Filled[T Value](rows, cols int, v T) *Grid[T] {
	g := New[T](rows, cols)
	for i := range g.Values {
		g.Values[i] = v
	}
	return g
}

// FromRows builds a grid from nested rows, which must all have equal length.
func FromRows[T Value](rows [][]T) (*Grid[T], error) {
	if len(rows) == 0 {
		return New[T](0, 0), nil
	}
	cols := len(rows[0])
	g := New[T](len(rows), cols)
	for r, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", r, len(row), cols, ErrShapeMismatch)
		}
		copy(g.Values[r*cols:], row)
	}
	return g, nil
}

// Shape returns rows and columns.
func (g *Grid[T]) Shape() (int, int) {
	return g.Rows, g.Cols
}

// At returns the pixel at row r, column c.
func (g *Grid[T]) At(r, c int) T {
	return g.Values[r*g.Cols+c]
}

// Set assigns the pixel at row r, column c.
func (g *Grid[T]) Set(r, c int, v T) {
	g.Values[r*g.Cols+c] = v
}

// Clone returns a deep copy.
func (g *Grid[T]) Clone() *Grid[T] {
	out := &Grid[T]{Rows: g.Rows, Cols: g.Cols, Values: make([]T, len(g.Values))}
	copy(out.Values, g.Values)
	return out
}

// Shaped is anything with a raster shape.
type Shaped interface {
	Shape() (int, int)
}

// CheckShapes verifies that all grids share the shape of the first one.
func CheckShapes(grids ...Shaped) error {
	if len(grids) < 2 {
		return nil
	}
	rows, cols := grids[0].Shape()
	for i, g := range grids[1:] {
		r, c := g.Shape()
		if r != rows || c != cols {
			return fmt.Errorf("grid %d is %dx%d, want %dx%d: %w", i+1, r, c, rows, cols, ErrShapeMismatch)
		}
	}
	return nil
}

// Transform is an affine georeferencing transform in rasterio order:
//
//	x = A*col + B*row + C
//	y = D*col + E*row + F
type Transform struct {
	A, B, C, D, E, F float64
}

// Apply maps fractional pixel coordinates to world coordinates.
func (t Transform) Apply(col, row float64) (x, y float64) {
	return t.A*col + t.B*row + t.C, t.D*col + t.E*row + t.F
}

// PixelCentre returns the world coordinates of the centre of pixel (row, col).
func (t Transform) PixelCentre(row, col int) (x, y float64) {
	return t.Apply(float64(col)+0.5, float64(row)+0.5)
}

// IsNorthUp reports whether the transform has no rotation and rows grow southwards.
func (t Transform) IsNorthUp() bool {
	return t.B == 0 && t.D == 0 && t.A > 0 && t.E < 0
}

// Window returns the half-open pixel window [r0,r1) x [c0,c1) covering the
// world rectangle (minX,minY)-(maxX,maxY), clipped to a rows x cols raster.
// ok is false when the rectangle lies completely outside the raster.
func (t Transform) Window(minX, minY, maxX, maxY float64, rows, cols int) (r0, r1, c0, c1 int, ok bool) {
	c0 = int(math.Floor((minX - t.C) / t.A))
	c1 = int(math.Ceil((maxX - t.C) / t.A))
	r0 = int(math.Floor((maxY - t.F) / t.E))
	r1 = int(math.Ceil((minY - t.F) / t.E))
	c0, c1 = max(c0, 0), min(c1, cols)
	r0, r1 = max(r0, 0), min(r1, rows)
	if c0 >= c1 || r0 >= r1 {
		return 0, 0, 0, 0, false
	}
	return r0, r1, c0, c1, true
}

// Meta carries the georeferencing shared by a stack of co-registered grids.
type Meta struct {
	Transform Transform
	CRS       string
	NoData    *float64
}

// IsNoData reports whether v equals the nodata sentinel.
func (m Meta) IsNoData(v float64) bool {
	if m.NoData == nil {
		return false
	}
	if math.IsNaN(*m.NoData) {
		return math.IsNaN(v)
	}
	return v == *m.NoData
}
