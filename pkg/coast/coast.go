// Package coast allocates the offshore potential of exclusive economic zones
// to the coastal units that share a coast with them.
package coast

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/validation"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/zonal"
)

// EEZ is an exclusive economic zone with its owning country and area.
type EEZ struct {
	geo.Feature
	AreaKm2 float64
}

// Options configure Build.
type Options struct {
	// ContinentalCode is the country code of a unit covering the whole
	// study area. Such a unit is a candidate for every EEZ.
	ContinentalCode string

	// Tolerance is the collinearity tolerance of coast length computation.
	Tolerance float64

	Workers int
	Logger  *zap.Logger

	// Report, if set, receives an info result for every dropped EEZ.
	Report *validation.Report
}

// Build returns the units x EEZs share matrix. Each column holds the share
// of the EEZ's potential that goes to each unit. Columns sum to one, or to
// zero when no unit of the EEZ's country touches it.
func Build(ctx context.Context, units []geo.Feature, eezs []EEZ, opts Options) (*table.Table, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = geo.DefaultTolerance
	}
	unitIDs := make([]string, len(units))
	for i, u := range units {
		unitIDs[i] = u.ID
	}
	eezIDs := make([]string, len(eezs))
	eezGeoms := make([]geo.Feature, len(eezs))
	for j, e := range eezs {
		eezIDs[j] = e.ID
		eezGeoms[j] = e.Feature
	}
	out, err := table.New(unitIDs, eezIDs)
	if err != nil {
		return nil, fmt.Errorf("shared coast matrix: %w", err)
	}

	index := geo.NewIndex(geo.Polygonals(units))
	shares := make([]map[int]float64, len(eezs))
	pool := zonal.NewPool(opts.Workers)
	err = pool.Run(ctx, geo.Polygonals(eezGeoms), func(_ context.Context, j int) error {
		shares[j] = shareOfCoast(eezs[j], units, index, opts.ContinentalCode, tol)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for j, s := range shares {
		if len(s) == 0 {
			logger.Warn("no shared coast found, ignoring eez",
				zap.String("eez", eezs[j].Name),
				zap.String("id", eezs[j].ID),
				zap.Float64("area_km2", eezs[j].AreaKm2),
			)
			if opts.Report != nil {
				opts.Report.AddInfo(validation.Result{
					Level:       validation.LevelAllocation,
					Message:     fmt.Sprintf("no shared coast found for %s, ignoring eez", eezs[j].Name),
					Path:        eezs[j].ID,
					ActualValue: eezs[j].AreaKm2,
				})
			}
			continue
		}
		for i, v := range s {
			out.SetAt(i, j, v)
		}
	}
	if err := CheckColumns(out); err != nil {
		return nil, err
	}
	return out, nil
}

func shareOfCoast(eez EEZ, units []geo.Feature, index *geo.Index, continental string, tol float64) map[int]float64 {
	var hits []int
	for _, i := range index.Candidates(eez.Bounds(), tol) {
		u := units[i]
		if u.CountryCode != eez.CountryCode && (continental == "" || u.CountryCode != continental) {
			continue
		}
		if geo.Intersects(eez.Geometry, u.Geometry, tol) {
			hits = append(hits, i)
		}
	}
	switch len(hits) {
	case 0:
		return nil
	case 1:
		return map[int]float64{hits[0]: 1}
	}
	lengths := make(map[int]float64, len(hits))
	total := 0.0
	for _, i := range hits {
		l := geo.IntersectionLength(eez.Geometry, units[i].Geometry, tol)
		lengths[i] = l
		total += l
	}
	// Units touching only at points have no coast length to weigh.
	if total == 0 {
		for _, i := range hits {
			lengths[i] = 1 / float64(len(hits))
		}
		return lengths
	}
	for i := range lengths {
		lengths[i] /= total
	}
	return lengths
}

// CheckColumns verifies that every column of the share matrix sums to a
// value in (0.99, 1.01) or to exactly zero.
func CheckColumns(matrix *table.Table) error {
	for _, col := range matrix.Columns() {
		sum, err := matrix.ColumnSum(col)
		if err != nil {
			return err
		}
		if sum != 0 && (sum <= 0.99 || sum >= 1.01) {
			return fmt.Errorf("shares of eez %s sum to %g: %w", col, sum, validation.ErrToleranceExceeded)
		}
	}
	return nil
}

// Allocate distributes per-EEZ quantities onto units: the result is the
// share matrix times the EEZ table, so it has one row per unit and the
// columns of eezTable.
func Allocate(matrix, eezTable *table.Table) (*table.Table, error) {
	out, err := table.Product(matrix, eezTable)
	if err != nil {
		return nil, fmt.Errorf("allocating eez potentials: %w", err)
	}
	return out, nil
}

// CheckAllocation compares the total allocated to units with the total of
// the EEZ table using validation.AllocationTolerance.
func CheckAllocation(r *validation.Report, eezTable, allocated *table.Table) error {
	return validation.CheckTotal(r, validation.LevelAllocation, "allocated offshore potential",
		allocated.Total(), eezTable.Total(), validation.AllocationTolerance)
}

// Merge appends the allocated offshore columns to the onshore table.
func Merge(onshore, offshore *table.Table) (*table.Table, error) {
	return table.Join(onshore, offshore)
}
