package potential

import (
	"context"
	"fmt"
	"strings"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/zonal"
)

// Technology is a renewable generation technology.
type Technology int

const (
	RooftopPV Technology = iota
	OpenFieldPV
	OnshoreWind
	OffshoreWind
)

// Technologies returns all technologies in order.
func Technologies() []Technology {
	return []Technology{RooftopPV, OpenFieldPV, OnshoreWind, OffshoreWind}
}

func (t Technology) String() string {
	switch t {
	case RooftopPV:
		return "ROOFTOP_PV"
	case OpenFieldPV:
		return "OPEN_FIELD_PV"
	case OnshoreWind:
		return "ONSHORE_WIND"
	case OffshoreWind:
		return "OFFSHORE_WIND"
	}
	return fmt.Sprintf("Technology(%d)", int(t))
}

// IsPV reports whether t is a PV technology, which draws on PV-priority
// maps and tables.
func (t Technology) IsPV() bool {
	return t == RooftopPV || t == OpenFieldPV
}

// IsOffshore reports whether t is built at sea.
func (t Technology) IsOffshore() bool {
	return t == OffshoreWind
}

// EligibleOn returns the categories t can be built on.
func (t Technology) EligibleOn() []eligibility.Category {
	var out []eligibility.Category
	for _, c := range eligibility.Eligible() {
		var ok bool
		switch t {
		case RooftopPV:
			ok = c == eligibility.RooftopPV
		case OpenFieldPV:
			ok = c.IsMixedUse()
		case OnshoreWind:
			ok = c.IsMixedUse() || c.IsWindOnly()
		case OffshoreWind:
			ok = c.IsOffshore()
		}
		if ok {
			out = append(out, c)
		}
	}
	return out
}

// AreaColumn is the table column of the technology's area in km².
func (t Technology) AreaColumn() string {
	return strings.ToLower(t.String()) + eligibility.AreaSuffix
}

// CapacityColumn is the table column of the technology's capacity in MW.
func (t Technology) CapacityColumn() string {
	return strings.ToLower(t.String()) + eligibility.CapacitySuffix
}

// EnergyColumn is the table column of the technology's yield in TWh/a.
func (t Technology) EnergyColumn() string {
	return strings.ToLower(t.String()) + eligibility.EnergySuffix
}

// TechnologyPotentials sums constrained per-category yields into yields per
// technology. PV technologies and offshore wind read the PV-priority table,
// onshore wind reads the wind-priority table.
func TechnologyPotentials(preferPV, preferWind *table.Table) (*table.Table, error) {
	techs := Technologies()
	cols := make([]string, len(techs))
	for j, t := range techs {
		cols[j] = t.EnergyColumn()
	}
	ids := preferPV.IDs()
	wind, err := preferWind.Reindex(ids)
	if err != nil {
		return nil, fmt.Errorf("technology potentials: %w", err)
	}
	out, err := table.New(ids, cols)
	if err != nil {
		return nil, err
	}
	for j, t := range techs {
		src := preferPV
		if t == OnshoreWind {
			src = wind
		}
		sum := make([]float64, len(ids))
		for _, c := range t.EligibleOn() {
			col, err := src.Column(c.EnergyColumn())
			if err != nil {
				return nil, fmt.Errorf("technology potentials: %w", err)
			}
			for i, v := range col {
				sum[i] += v
			}
		}
		if err := out.SetColumn(cols[j], sum); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// TechnologyPotentialsFromRaster sums per-pixel yields of the eligible
// categories of each technology over features. PV technologies sum the PV
// map, wind technologies the wind map.
func TechnologyPotentialsFromRaster(ctx context.Context, agg *zonal.Aggregator, pvYield, windYield *raster.Grid[float64],
	categories *raster.Grid[eligibility.Category], features []geo.Feature, techs []Technology) (*table.Table, error) {
	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = f.ID
	}
	cols := make([]string, len(techs))
	for j, t := range techs {
		cols[j] = t.EnergyColumn()
	}
	out, err := table.New(ids, cols)
	if err != nil {
		return nil, err
	}
	geoms := geo.Polygonals(features)
	for j, t := range techs {
		m := windYield
		if t.IsPV() {
			m = pvYield
		}
		sums, err := agg.MaskedSum(ctx, m, categories, t.EligibleOn(), geoms)
		if err != nil {
			return nil, fmt.Errorf("%s potentials: %w", t, err)
		}
		if err := out.SetColumn(cols[j], sums); err != nil {
			return nil, err
		}
	}
	return out, nil
}
