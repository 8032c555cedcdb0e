package potential

import (
	"fmt"
	"math"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

type unitCapacityFactors struct {
	rooftop, openField, onshore, offshore float64
}

func (u unitCapacityFactors) of(c eligibility.Category, preferPV bool) float64 {
	switch {
	case c == eligibility.NotEligible:
		return 0
	case c == eligibility.RooftopPV:
		return u.rooftop
	case c.IsMixedUse():
		if preferPV {
			return u.openField
		}
		return u.onshore
	case c.IsWindOnly():
		return u.onshore
	case c.IsOffshore():
		return u.offshore
	}
	panic("unhandled eligibility category " + c.String())
}

func readCapacityFactors(cfs *table.Table, flatRoofShare float64) ([]unitCapacityFactors, error) {
	col := func(name string) ([]float64, error) {
		v, err := cfs.Column(name)
		if err != nil {
			return nil, fmt.Errorf("capacity factors: %w", err)
		}
		return v, nil
	}
	onshore, err := col(OnshoreCapacityFactor)
	if err != nil {
		return nil, err
	}
	offshore, err := col(OffshoreCapacityFactor)
	if err != nil {
		return nil, err
	}
	out := make([]unitCapacityFactors, len(onshore))
	if cfs.HasColumn(PVCapacityFactor) {
		pv, _ := col(PVCapacityFactor)
		for i := range out {
			out[i] = unitCapacityFactors{rooftop: pv[i], openField: pv[i], onshore: onshore[i], offshore: offshore[i]}
		}
		return out, nil
	}
	flat, err := col(FlatPVCapacityFactor)
	if err != nil {
		return nil, err
	}
	tilted, err := col(TiltedPVCapacityFactor)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i] = unitCapacityFactors{
			rooftop:   flat[i]*flatRoofShare + tilted[i]*(1-flatRoofShare),
			openField: flat[i],
			onshore:   onshore[i],
			offshore:  offshore[i],
		}
	}
	return out, nil
}

// UnconstrainedPotentials turns a per-unit table of eligible areas (one
// area column per category) into annual yields per category in TWh. cfs
// holds per-unit capacity factors, see FillCapacityFactors. A unit with
// eligible area in a category but no capacity factor for it is an error.
func UnconstrainedPotentials(areas, cfs *table.Table, d PowerDensities, flatRoofShare float64, preferPV bool) (*table.Table, error) {
	ids := areas.IDs()
	aligned, err := cfs.Reindex(ids)
	if err != nil {
		return nil, fmt.Errorf("aligning capacity factors: %w", err)
	}
	unitCFs, err := readCapacityFactors(aligned, flatRoofShare)
	if err != nil {
		return nil, err
	}
	cats := eligibility.All()
	cols := make([]string, len(cats))
	for j, c := range cats {
		cols[j] = c.EnergyColumn()
	}
	out, err := table.New(ids, cols)
	if err != nil {
		return nil, err
	}
	for j, c := range cats {
		area, err := areas.Column(c.AreaColumn())
		if err != nil {
			return nil, fmt.Errorf("unconstrained potentials: %w", err)
		}
		density := PowerDensity(c, preferPV, d, flatRoofShare)
		for i := range ids {
			capacity := area[i] * density
			if capacity == 0 {
				continue
			}
			cf := unitCFs[i].of(c, preferPV)
			if math.IsNaN(cf) {
				return nil, fmt.Errorf("unit %s category %s: %w", ids[i], c, ErrMissingCapacityFactor)
			}
			out.SetAt(i, j, WattToWattHours(capacity*cf, Year)/1e6)
		}
	}
	return out, nil
}
