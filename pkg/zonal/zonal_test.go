package zonal

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
)

// 4x4 raster of 1x1 pixels with its top left corner at (0,4).
var testMeta = raster.Meta{
	Transform: raster.Transform{A: 1, E: -1, F: 4},
	CRS:       "EPSG:3035",
}

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{geo.Pt(x0, y0), geo.Pt(x1, y0), geo.Pt(x1, y1), geo.Pt(x0, y1)}}
}

func newAggregator(t *testing.T) *Aggregator {
	t.Helper()
	a, err := NewAggregator(testMeta, 4, 4, 2, nil)
	require.NoError(t, err)
	return a
}

func TestStatsPixelCentres(t *testing.T) {
	a := newAggregator(t)
	values := raster.Filled(4, 4, 1.0)
	values.Set(3, 0, 5)
	geoms := []geom.Polygonal{
		square(0, 0, 2, 2),
		square(0, 0, 4, 4),
		square(10, 10, 11, 11),
		square(0.6, 0.6, 0.9, 0.9),
	}
	stats, err := a.Stats(context.Background(), values, geoms)
	require.NoError(t, err)

	assert.Equal(t, Stat{Sum: 8, Count: 4, Valid: true}, stats[0])
	assert.Equal(t, Stat{Sum: 20, Count: 16, Valid: true}, stats[1])
	assert.False(t, stats[2].Valid)
	assert.Equal(t, 0.0, stats[2].Sum)
	assert.False(t, stats[3].Valid, "no pixel centre inside")
	assert.True(t, math.IsNaN(stats[2].Mean()))
	assert.Equal(t, 2.0, stats[0].Mean())
}

func TestStatsExcludesNoData(t *testing.T) {
	nodata := -1.0
	meta := testMeta
	meta.NoData = &nodata
	a, err := NewAggregator(meta, 4, 4, 1, nil)
	require.NoError(t, err)
	values := raster.Filled(4, 4, 2.0)
	values.Set(0, 0, nodata)
	values.Set(0, 1, math.NaN())

	sums, err := a.Sum(context.Background(), values, []geom.Polygonal{square(0, 0, 4, 4)})
	require.NoError(t, err)
	assert.Equal(t, 28.0, sums[0])
	counts, err := a.Count(context.Background(), values, []geom.Polygonal{square(0, 0, 4, 4)})
	require.NoError(t, err)
	assert.Equal(t, 14, counts[0])
}

func TestRotatedTransformRejected(t *testing.T) {
	meta := testMeta
	meta.Transform.B = 0.1
	_, err := NewAggregator(meta, 4, 4, 1, nil)
	assert.ErrorIs(t, err, raster.ErrRotatedTransform)
}

func TestShapeMismatch(t *testing.T) {
	a := newAggregator(t)
	_, err := a.Sum(context.Background(), raster.New[float64](3, 4), nil)
	assert.ErrorIs(t, err, raster.ErrShapeMismatch)
}

func TestMaskedSum(t *testing.T) {
	a := newAggregator(t)
	values := raster.Filled(4, 4, 1.0)
	cats := raster.New[eligibility.Category](4, 4)
	cats.Set(3, 0, eligibility.RooftopPV)
	cats.Set(3, 1, eligibility.OffshoreWind)
	cats.Set(0, 3, eligibility.RooftopPV)

	sums, err := a.MaskedSum(context.Background(), values, cats,
		[]eligibility.Category{eligibility.RooftopPV}, []geom.Polygonal{square(0, 0, 2, 2), square(2, 2, 4, 4)})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, sums)
}

func TestEligibilityTableConservesArea(t *testing.T) {
	a := newAggregator(t)
	area, err := raster.PixelAreas(testMeta, 4, 4)
	require.NoError(t, err)
	cats := raster.New[eligibility.Category](4, 4)
	cats.Set(2, 0, eligibility.OnshoreWindForest)
	cats.Set(3, 0, eligibility.OnshoreWindForest)
	cats.Set(3, 1, eligibility.RooftopPV)
	units := []geo.Feature{
		{ID: "left", Geometry: square(0, 0, 2, 4)},
		{ID: "right", Geometry: square(2, 0, 4, 4)},
	}

	tb, err := a.EligibilityTable(context.Background(), area, cats, units, eligibility.Category.AreaColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "right"}, tb.IDs())

	pixel := 1e-6 // 1 m² pixels in km²
	forest, err := tb.Get("left", eligibility.OnshoreWindForest.AreaColumn())
	require.NoError(t, err)
	assert.InDelta(t, 2*pixel, forest, 1e-15)
	for i := range units {
		assert.InDelta(t, 8*pixel, tb.RowSum(i), 1e-15)
	}
}

func TestCountByClassAndWaterStats(t *testing.T) {
	a := newAggregator(t)
	lc := raster.Filled(4, 4, eligibility.RainfedCroplands)
	lc.Set(0, 0, eligibility.WaterBodies)
	lc.Set(0, 1, eligibility.LandCoverNoData)
	lc.Set(3, 3, eligibility.PostFlooding)

	counts, err := CountByClass(context.Background(), a, lc, []geom.Polygonal{square(0, 0, 4, 4), square(0, 2, 2, 4)})
	require.NoError(t, err)
	assert.Equal(t, 13, counts[0][eligibility.RainfedCroplands])
	assert.Equal(t, 1, counts[0][eligibility.PostFlooding])

	water := AggregateWaterStats(counts)
	assert.Equal(t, []int{1, 1}, water[WaterKey])
	assert.Equal(t, []int{14, 2}, water[NotWaterKey])
	assert.Equal(t, []int{1, 1}, water[NoDataKey])
}

func TestAggregateWaterStats(t *testing.T) {
	counts := []map[eligibility.LandCover]int{
		{11: 3, 14: 6, 230: 10},
		{14: 7, 230: 14},
	}
	got := AggregateWaterStats(counts)
	assert.Equal(t, map[string][]int{
		WaterKey:    {0, 0},
		NotWaterKey: {9, 7},
		NoDataKey:   {10, 14},
	}, got)
}

func TestPoolRunsLargestFirst(t *testing.T) {
	p := NewPool(1)
	geoms := []geom.Polygonal{square(0, 0, 1, 1), square(0, 0, 3, 3), square(0, 0, 2, 2)}
	var mu sync.Mutex
	var order []int
	err := p.Run(context.Background(), geoms, func(_ context.Context, i int) error {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, i)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 0}, order)
}

func TestPoolPropagatesError(t *testing.T) {
	p := NewPool(2)
	boom := errors.New("boom")
	geoms := []geom.Polygonal{square(0, 0, 1, 1), square(0, 0, 2, 2)}
	err := p.Run(context.Background(), geoms, func(_ context.Context, i int) error {
		if i == 0 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, p.Workers())
}
