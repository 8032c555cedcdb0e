package potential

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

// ErrMissingCapacityFactor is returned when a unit with eligible area has
// no capacity factor, even after falling back to its country's average.
var ErrMissingCapacityFactor = errors.New("missing capacity factor")

// Capacity factor table columns.
const (
	PVCapacityFactor       = "pv_capacity_factor"
	FlatPVCapacityFactor   = "flat_pv_capacity_factor"
	TiltedPVCapacityFactor = "tilted_pv_capacity_factor"
	OnshoreCapacityFactor  = "onshore_capacity_factor"
	OffshoreCapacityFactor = "offshore_capacity_factor"
)

// CapacityFactor returns the capacity factor of a load or supply time
// series: its mean divided by its maximum.
func CapacityFactor(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	mx := floats.Max(series)
	if mx == 0 {
		return math.NaN()
	}
	return floats.Sum(series) / float64(len(series)) / mx
}

// AverageCapacityFactor returns the mean of capacity factors weighted by
// demand.
func AverageCapacityFactor(cfs, demands []float64) (float64, error) {
	if len(cfs) != len(demands) {
		return 0, fmt.Errorf("%d capacity factors for %d demands", len(cfs), len(demands))
	}
	total := floats.Sum(demands)
	if total == 0 {
		return 0, fmt.Errorf("total demand is zero")
	}
	return floats.Dot(cfs, demands) / total, nil
}

// FillCapacityFactors replaces missing (NaN) capacity factors of a unit with
// the average of the units of the same country. Offshore values still missing
// afterwards take the unit's onshore value. Any value still missing then is
// an error wrapping ErrMissingCapacityFactor.
func FillCapacityFactors(cfs *table.Table, countryOf map[string]string, logger *zap.Logger) (*table.Table, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := cfs.Clone()
	ids := out.IDs()
	cols := out.Columns()
	for j, col := range cols {
		sum := make(map[string]float64)
		n := make(map[string]int)
		for i, id := range ids {
			if v := out.At(i, j); !math.IsNaN(v) {
				sum[countryOf[id]] += v
				n[countryOf[id]]++
			}
		}
		for i, id := range ids {
			if !math.IsNaN(out.At(i, j)) {
				continue
			}
			country := countryOf[id]
			if n[country] == 0 {
				continue
			}
			mean := sum[country] / float64(n[country])
			out.SetAt(i, j, mean)
			logger.Warn("capacity factor missing, using country average",
				zap.String("unit", id),
				zap.String("country", country),
				zap.String("column", col),
				zap.Float64("value", mean),
			)
		}
	}
	on, hasOn := out.ColumnIndex(OnshoreCapacityFactor)
	off, hasOff := out.ColumnIndex(OffshoreCapacityFactor)
	if hasOn && hasOff {
		for i := range ids {
			if math.IsNaN(out.At(i, off)) {
				out.SetAt(i, off, out.At(i, on))
			}
		}
	}
	for i, id := range ids {
		for j, col := range cols {
			if math.IsNaN(out.At(i, j)) {
				return nil, fmt.Errorf("unit %s column %s: %w", id, col, ErrMissingCapacityFactor)
			}
		}
	}
	return out, nil
}
