package zonal

import (
	"context"
	"runtime"
	"sort"

	"github.com/ctessum/geom"
	"golang.org/x/sync/errgroup"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
)

// Pool maps work over geometries with a bounded number of goroutines. Each
// task writes to its own result slot, so tasks share nothing but read-only
// inputs.
type Pool struct {
	workers int
}

// NewPool returns a pool of the given size; sizes below one use the number
// of CPUs.
func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn once per geometry index. Geometries with larger bounds are
// scheduled first to even out the load. The first error cancels the
// remaining work.
func (p *Pool) Run(ctx context.Context, geoms []geom.Polygonal, fn func(ctx context.Context, i int) error) error {
	order := make([]int, len(geoms))
	size := make([]float64, len(geoms))
	for i, g := range geoms {
		order[i] = i
		size[i] = geo.BoundsArea(g.Bounds())
	}
	sort.SliceStable(order, func(a, b int) bool {
		return size[order[a]] > size[order[b]]
	})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, i := range order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}
	return g.Wait()
}
