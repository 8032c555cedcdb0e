package zonal

import (
	"context"
	"fmt"

	"github.com/ctessum/geom"
	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

// MaskedSum sums, per geometry, the values of pixels whose category is one
// of wanted. Other pixels count as zero.
func (a *Aggregator) MaskedSum(ctx context.Context, values *raster.Grid[float64], categories *raster.Grid[eligibility.Category],
	wanted []eligibility.Category, geoms []geom.Polygonal) ([]float64, error) {
	if err := a.check(values, categories); err != nil {
		return nil, err
	}
	masked := values.Clone()
	keep := raster.In(categories, wanted...)
	for i, ok := range keep.Bits {
		if !ok {
			masked.Values[i] = 0
		}
	}
	return a.Sum(ctx, masked, geoms)
}

// EligibilityTable sums values per unit and category. column names the
// table column of each category, usually Category.AreaColumn or
// Category.EnergyColumn.
func (a *Aggregator) EligibilityTable(ctx context.Context, values *raster.Grid[float64], categories *raster.Grid[eligibility.Category],
	units []geo.Feature, column func(eligibility.Category) string) (*table.Table, error) {
	if err := a.check(values, categories); err != nil {
		return nil, err
	}
	all := eligibility.All()
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	cols := make([]string, len(all))
	colOf := make(map[eligibility.Category]int, len(all))
	for j, c := range all {
		cols[j] = column(c)
		colOf[c] = j
	}
	out, err := table.New(ids, cols)
	if err != nil {
		return nil, err
	}

	sums := make([][]float64, len(units))
	geoms := geo.Polygonals(units)
	err = a.pool.Run(ctx, geoms, func(_ context.Context, i int) error {
		row := make([]float64, len(all))
		var bad error
		a.pixels(geoms[i], func(idx int) {
			v := values.Values[idx]
			if a.isNoData(v) {
				return
			}
			j, ok := colOf[categories.Values[idx]]
			if !ok {
				bad = fmt.Errorf("unit %s: code %d: %w", units[i].ID, categories.Values[idx], eligibility.ErrUnknownCategory)
				return
			}
			row[j] += v
		})
		sums[i] = row
		return bad
	})
	if err != nil {
		return nil, err
	}
	for i, row := range sums {
		for j, v := range row {
			out.SetAt(i, j, v)
		}
	}
	a.logger.Debug("aggregated eligibility",
		zap.Int("units", len(units)),
		zap.Float64("total", out.Total()),
	)
	return out, nil
}
