package potential

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/zonal"
)

// AllocateCapacityFactors assigns capacity factors given on regions, for
// example NUTS2 regions, to units. A unit overlapping a single region takes
// its values; otherwise values are weighted by the overlapping area. Units
// overlapping no region get NaN and can be filled by FillCapacityFactors.
func AllocateCapacityFactors(ctx context.Context, units, regions []geo.Feature, regionCFs *table.Table,
	pool *zonal.Pool, logger *zap.Logger) (*table.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	regionIDs := make([]string, len(regions))
	for i, r := range regions {
		regionIDs[i] = r.ID
	}
	cfs, err := regionCFs.Reindex(regionIDs)
	if err != nil {
		return nil, fmt.Errorf("allocating capacity factors: %w", err)
	}
	unitIDs := make([]string, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	out, err := table.New(unitIDs, cfs.Columns())
	if err != nil {
		return nil, err
	}
	_, ncols := cfs.Dims()
	rows := make([][]float64, len(units))
	index := geo.NewIndex(geo.Polygonals(regions))

	err = pool.Run(ctx, geo.Polygonals(units), func(_ context.Context, i int) error {
		unit := units[i]
		var hits []int
		var weights []float64
		for _, k := range index.Candidates(unit.Bounds(), geo.DefaultTolerance) {
			inter := unit.Geometry.Intersection(regions[k].Geometry)
			if inter == nil {
				continue
			}
			if a := inter.Area(); a > 0 {
				hits = append(hits, k)
				weights = append(weights, a)
			}
		}
		row := make([]float64, ncols)
		switch len(hits) {
		case 0:
			for j := range row {
				row[j] = math.NaN()
			}
		case 1:
			row = cfs.Row(hits[0])
		default:
			floats.Scale(1/floats.Sum(weights), weights)
			for j := range row {
				for n, k := range hits {
					row[j] += weights[n] * cfs.At(k, j)
				}
			}
		}
		rows[i] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) > 0 && math.IsNaN(row[0]) {
			logger.Warn("unit overlaps no capacity factor region", zap.String("unit", unitIDs[i]))
		}
		for j, v := range row {
			out.SetAt(i, j, v)
		}
	}
	return out, nil
}
