package potential

import (
	"fmt"
	"time"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
)

// Year is the duration yields are computed for.
const Year = 365 * 24 * time.Hour

// WattToWattHours converts constant power in [k|M|G|T]W held for d into
// energy in [k|M|G|T]Wh.
func WattToWattHours(watt float64, d time.Duration) float64 {
	return watt * d.Seconds() / 3600
}

// CapacityFactorLayers are per-pixel capacity factors of each technology.
type CapacityFactorLayers struct {
	RooftopPV    *raster.Grid[float64]
	OpenFieldPV  *raster.Grid[float64]
	OnshoreWind  *raster.Grid[float64]
	OffshoreWind *raster.Grid[float64]
}

// CapacityFactorMap picks, per pixel, the capacity factor of the technology
// built on the pixel's category. Not eligible pixels get nodata.
func CapacityFactorMap(categories *raster.Grid[eligibility.Category], cf CapacityFactorLayers,
	preferPV bool, nodata float64) (*raster.Grid[float64], error) {
	if cf.RooftopPV == nil || cf.OpenFieldPV == nil || cf.OnshoreWind == nil || cf.OffshoreWind == nil {
		return nil, fmt.Errorf("capacity factor map: missing capacity factor layer")
	}
	if err := raster.CheckShapes(categories, cf.RooftopPV, cf.OpenFieldPV, cf.OnshoreWind, cf.OffshoreWind); err != nil {
		return nil, fmt.Errorf("capacity factor map: %w", err)
	}
	mixed := cf.OnshoreWind
	if preferPV {
		mixed = cf.OpenFieldPV
	}
	out := raster.New[float64](categories.Rows, categories.Cols)
	for i, c := range categories.Values {
		switch {
		case c == eligibility.NotEligible:
			out.Values[i] = nodata
		case c == eligibility.RooftopPV:
			out.Values[i] = cf.RooftopPV.Values[i]
		case c.IsMixedUse():
			out.Values[i] = mixed.Values[i]
		case c.IsWindOnly():
			out.Values[i] = cf.OnshoreWind.Values[i]
		case c.IsOffshore():
			out.Values[i] = cf.OffshoreWind.Values[i]
		default:
			return nil, fmt.Errorf("pixel %d code %d: %w", i, uint8(c), eligibility.ErrUnknownCategory)
		}
	}
	return out, nil
}

// ElectricityYield returns the annual yield of every pixel in TWh from its
// capacity in MW and its capacity factor. Pixels with nodata capacity
// factors yield zero.
func ElectricityYield(capacityMW, cf *raster.Grid[float64], nodata float64) (*raster.Grid[float64], error) {
	if err := raster.CheckShapes(capacityMW, cf); err != nil {
		return nil, fmt.Errorf("electricity yield: %w", err)
	}
	out := raster.New[float64](capacityMW.Rows, capacityMW.Cols)
	for i, f := range cf.Values {
		if f == nodata {
			continue
		}
		out.Values[i] = capacityMW.Values[i] * WattToWattHours(f, Year) / 1e6
	}
	return out, nil
}
