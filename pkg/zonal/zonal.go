// Package zonal computes per-polygon statistics over rasters. A pixel belongs
// to a polygon when its centre lies inside it.
package zonal

import (
	"context"
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
)

// Stat summarises the pixels of one geometry. Valid is false when no pixel
// centre falls inside the geometry, e.g. for geometries outside the raster.
type Stat struct {
	Sum   float64
	Count int
	Valid bool
}

// Mean returns the unweighted mean, or NaN for invalid stats.
func (s Stat) Mean() float64 {
	if !s.Valid || s.Count == 0 {
		return math.NaN()
	}
	return s.Sum / float64(s.Count)
}

// Aggregator overlays geometries on rasters sharing one georeferencing.
type Aggregator struct {
	meta   raster.Meta
	rows   int
	cols   int
	pool   *Pool
	logger *zap.Logger
}

// NewAggregator returns an aggregator for rows x cols rasters with meta.
// workers bounds the number of geometries processed concurrently.
func NewAggregator(meta raster.Meta, rows, cols, workers int, logger *zap.Logger) (*Aggregator, error) {
	if !meta.Transform.IsNorthUp() {
		return nil, raster.ErrRotatedTransform
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		meta:   meta,
		rows:   rows,
		cols:   cols,
		pool:   NewPool(workers),
		logger: logger,
	}, nil
}

// pixels calls fn with the flat index of every pixel whose centre lies in g.
func (a *Aggregator) pixels(g geom.Polygonal, fn func(idx int)) {
	b := g.Bounds()
	if b == nil {
		return
	}
	r0, r1, c0, c1, ok := a.meta.Transform.Window(b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, a.rows, a.cols)
	if !ok {
		return
	}
	for r := r0; r < r1; r++ {
		for c := c0; c < c1; c++ {
			x, y := a.meta.Transform.PixelCentre(r, c)
			if geo.Contains(g, geo.Pt(x, y)) {
				fn(r*a.cols + c)
			}
		}
	}
}

func (a *Aggregator) check(grids ...raster.Shaped) error {
	for _, g := range grids {
		r, c := g.Shape()
		if r != a.rows || c != a.cols {
			return fmt.Errorf("raster is %dx%d, aggregator expects %dx%d: %w", r, c, a.rows, a.cols, raster.ErrShapeMismatch)
		}
	}
	return nil
}

func (a *Aggregator) isNoData(v float64) bool {
	return math.IsNaN(v) || a.meta.IsNoData(v)
}

// Stats computes sum and count of values for each geometry. Nodata pixels
// are excluded.
func (a *Aggregator) Stats(ctx context.Context, values *raster.Grid[float64], geoms []geom.Polygonal) ([]Stat, error) {
	if err := a.check(values); err != nil {
		return nil, err
	}
	out := make([]Stat, len(geoms))
	err := a.pool.Run(ctx, geoms, func(_ context.Context, i int) error {
		var s Stat
		a.pixels(geoms[i], func(idx int) {
			v := values.Values[idx]
			if a.isNoData(v) {
				return
			}
			s.Sum += v
			s.Count++
		})
		s.Valid = s.Count > 0
		out[i] = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sum returns the per-geometry sums of values; geometries without pixels
// sum to zero.
func (a *Aggregator) Sum(ctx context.Context, values *raster.Grid[float64], geoms []geom.Polygonal) ([]float64, error) {
	stats, err := a.Stats(ctx, values, geoms)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = s.Sum
	}
	return out, nil
}

// Mean returns the per-geometry means of values; NaN where no pixel counts.
func (a *Aggregator) Mean(ctx context.Context, values *raster.Grid[float64], geoms []geom.Polygonal) ([]float64, error) {
	stats, err := a.Stats(ctx, values, geoms)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(stats))
	for i, s := range stats {
		out[i] = s.Mean()
	}
	return out, nil
}

// Count returns the number of valid pixels per geometry.
func (a *Aggregator) Count(ctx context.Context, values *raster.Grid[float64], geoms []geom.Polygonal) ([]int, error) {
	stats, err := a.Stats(ctx, values, geoms)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(stats))
	for i, s := range stats {
		out[i] = s.Count
	}
	return out, nil
}

// CountByClass counts pixels per class value for each geometry, like a
// categorical zonal statistic.
func CountByClass[T raster.Value](ctx context.Context, a *Aggregator, classes *raster.Grid[T], geoms []geom.Polygonal) ([]map[T]int, error) {
	if err := a.check(classes); err != nil {
		return nil, err
	}
	out := make([]map[T]int, len(geoms))
	err := a.pool.Run(ctx, geoms, func(_ context.Context, i int) error {
		counts := make(map[T]int)
		a.pixels(geoms[i], func(idx int) {
			counts[classes.Values[idx]]++
		})
		out[i] = counts
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
