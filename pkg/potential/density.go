// Package potential converts eligible land into installable capacity and
// annual electricity yield, and groups potentials by technology.
package potential

import (
	"fmt"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
)

// PowerDensities are maximum installable power densities in MW/km².
type PowerDensities struct {
	PVOnTiltedRoofs float64 `mapstructure:"pv-on-tilted-roofs" yaml:"pv-on-tilted-roofs" validate:"gt=0"`
	PVOnFlatAreas   float64 `mapstructure:"pv-on-flat-areas" yaml:"pv-on-flat-areas" validate:"gt=0"`
	OnshoreWind     float64 `mapstructure:"onshore-wind" yaml:"onshore-wind" validate:"gt=0"`
	OffshoreWind    float64 `mapstructure:"offshore-wind" yaml:"offshore-wind" validate:"gt=0"`
}

// Rooftop returns the density of rooftop PV given the share of flat roofs.
func (d PowerDensities) Rooftop(flatRoofShare float64) float64 {
	return d.PVOnFlatAreas*flatRoofShare + d.PVOnTiltedRoofs*(1-flatRoofShare)
}

// PowerDensity returns the power density of a category in MW/km². Mixed-use
// land carries open field PV when preferPV is set and onshore wind otherwise.
func PowerDensity(c eligibility.Category, preferPV bool, d PowerDensities, flatRoofShare float64) float64 {
	mixed := d.OnshoreWind
	if preferPV {
		mixed = d.PVOnFlatAreas
	}
	switch c {
	case eligibility.NotEligible:
		return 0
	case eligibility.RooftopPV:
		return d.Rooftop(flatRoofShare)
	case eligibility.OnshoreWindAndPVOther, eligibility.OnshoreWindAndPVFarmland,
		eligibility.OnshoreWindAndPVOtherProtected, eligibility.OnshoreWindAndPVFarmlandProtected:
		return mixed
	case eligibility.OnshoreWindOther, eligibility.OnshoreWindFarmland, eligibility.OnshoreWindForest,
		eligibility.OnshoreWindOtherProtected, eligibility.OnshoreWindFarmlandProtected, eligibility.OnshoreWindForestProtected:
		return d.OnshoreWind
	case eligibility.OffshoreWind, eligibility.OffshoreWindProtected:
		return d.OffshoreWind
	}
	panic("unhandled eligibility category " + c.String())
}

// TechnicallyEligibleArea returns the usable area of every pixel in km². It
// is the pixel area, except on rooftop pixels where only the building
// footprint scaled by the rooftop correction factor counts.
func TechnicallyEligibleArea(pixelArea *raster.Grid[float64], categories *raster.Grid[eligibility.Category],
	buildingShare *raster.Grid[float64], rooftopCorrection float64) (*raster.Grid[float64], error) {
	if err := raster.CheckShapes(pixelArea, categories, buildingShare); err != nil {
		return nil, fmt.Errorf("eligible area: %w", err)
	}
	out := pixelArea.Clone()
	for i, c := range categories.Values {
		if c == eligibility.RooftopPV {
			out.Values[i] = pixelArea.Values[i] * buildingShare.Values[i] * rooftopCorrection
		}
	}
	return out, nil
}

// Capacities returns the installable capacity of every pixel in MW.
func Capacities(area *raster.Grid[float64], categories *raster.Grid[eligibility.Category],
	d PowerDensities, flatRoofShare float64, preferPV bool) (*raster.Grid[float64], error) {
	if err := raster.CheckShapes(area, categories); err != nil {
		return nil, fmt.Errorf("capacities: %w", err)
	}
	density := make(map[eligibility.Category]float64)
	for _, c := range eligibility.All() {
		density[c] = PowerDensity(c, preferPV, d, flatRoofShare)
	}
	out := raster.New[float64](area.Rows, area.Cols)
	for i, c := range categories.Values {
		pd, ok := density[c]
		if !ok {
			return nil, fmt.Errorf("pixel %d code %d: %w", i, uint8(c), eligibility.ErrUnknownCategory)
		}
		out.Values[i] = area.Values[i] * pd
	}
	return out, nil
}
