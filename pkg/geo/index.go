package geo

import (
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
)

type indexed struct {
	geom.Polygonal
	key int
}

// Index is a bounds index over a fixed slice of polygons. It answers
// candidate queries without touching the full geometries.
type Index struct {
	tree *rtree.Rtree
}

// NewIndex indexes polys by their position in the slice.
func NewIndex(polys []geom.Polygonal) *Index {
	tree := rtree.NewTree(25, 50)
	for i, p := range polys {
		tree.Insert(&indexed{Polygonal: p, key: i})
	}
	return &Index{tree: tree}
}

// Candidates returns the positions of all polygons whose bounds intersect or
// come within tol of b.
func (ix *Index) Candidates(b *geom.Bounds, tol float64) []int {
	q := &geom.Bounds{
		Min: geom.Point{X: b.Min.X - tol, Y: b.Min.Y - tol},
		Max: geom.Point{X: b.Max.X + tol, Y: b.Max.Y + tol},
	}
	hits := ix.tree.SearchIntersect(q)
	keys := make([]int, 0, len(hits))
	for _, h := range hits {
		if item, ok := h.(*indexed); ok {
			keys = append(keys, item.key)
		}
	}
	return keys
}
