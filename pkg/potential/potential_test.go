package potential

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/zonal"
)

var testDensities = PowerDensities{
	PVOnTiltedRoofs: 160,
	PVOnFlatAreas:   80,
	OnshoreWind:     8,
	OffshoreWind:    15,
}

func TestWattToWattHours(t *testing.T) {
	tests := []struct {
		watt     float64
		duration time.Duration
		want     float64
	}{
		{10, 60 * time.Minute, 10},
		{6, 30 * time.Minute, 3},
		{1.0 / 8760, Year, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, WattToWattHours(tt.watt, tt.duration), 1e-12)
	}
}

func TestAverageCapacityFactor(t *testing.T) {
	got, err := AverageCapacityFactor([]float64{1, 0}, []float64{2.0 / 3, 1.0 / 3})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, got, 1e-12)

	_, err = AverageCapacityFactor([]float64{1}, []float64{1, 2})
	assert.Error(t, err)
	_, err = AverageCapacityFactor([]float64{1}, []float64{0})
	assert.Error(t, err)
}

func TestCapacityFactor(t *testing.T) {
	assert.InDelta(t, 0.5, CapacityFactor([]float64{0, 1, 0.5, 0.5}), 1e-12)
	assert.True(t, math.IsNaN(CapacityFactor(nil)))
	assert.True(t, math.IsNaN(CapacityFactor([]float64{0, 0})))
}

func TestPowerDensity(t *testing.T) {
	assert.Equal(t, 0.0, PowerDensity(eligibility.NotEligible, true, testDensities, 0.5))
	assert.Equal(t, 120.0, PowerDensity(eligibility.RooftopPV, true, testDensities, 0.5))
	assert.Equal(t, 80.0, PowerDensity(eligibility.OnshoreWindAndPVFarmland, true, testDensities, 0.5))
	assert.Equal(t, 8.0, PowerDensity(eligibility.OnshoreWindAndPVFarmlandProtected, false, testDensities, 0.5))
	assert.Equal(t, 8.0, PowerDensity(eligibility.OnshoreWindForest, true, testDensities, 0.5))
	assert.Equal(t, 15.0, PowerDensity(eligibility.OffshoreWindProtected, true, testDensities, 0.5))
	for _, c := range eligibility.All() {
		assert.NotPanics(t, func() { PowerDensity(c, true, testDensities, 0.5) })
	}
}

func TestTechnicallyEligibleArea(t *testing.T) {
	area := raster.Filled(1, 2, 2.0)
	cats, err := raster.FromRows([][]eligibility.Category{{eligibility.RooftopPV, eligibility.OnshoreWindForest}})
	require.NoError(t, err)
	building, err := raster.FromRows([][]float64{{0.5, 0.9}})
	require.NoError(t, err)

	got, err := TechnicallyEligibleArea(area, cats, building, 0.8)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.8, 2}, got.Values, 1e-12)
}

func TestCapacitiesAndYield(t *testing.T) {
	cats, err := raster.FromRows([][]eligibility.Category{{
		eligibility.NotEligible, eligibility.OnshoreWindAndPVOther, eligibility.OffshoreWind,
	}})
	require.NoError(t, err)
	area := raster.Filled(1, 3, 1.0)

	pvCap, err := Capacities(area, cats, testDensities, 0.5, true)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 80, 15}, pvCap.Values)
	windCap, err := Capacities(area, cats, testDensities, 0.5, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 8, 15}, windCap.Values)

	layers := CapacityFactorLayers{
		RooftopPV:    raster.Filled(1, 3, 0.11),
		OpenFieldPV:  raster.Filled(1, 3, 0.12),
		OnshoreWind:  raster.Filled(1, 3, 0.25),
		OffshoreWind: raster.Filled(1, 3, 0.4),
	}
	nodata := -1.0
	cf, err := CapacityFactorMap(cats, layers, true, nodata)
	require.NoError(t, err)
	assert.Equal(t, []float64{nodata, 0.12, 0.4}, cf.Values)

	y, err := ElectricityYield(pvCap, cf, nodata)
	require.NoError(t, err)
	assert.Equal(t, 0.0, y.Values[0])
	assert.InDelta(t, 80*0.12*8760/1e6, y.Values[1], 1e-12)
	assert.InDelta(t, 15*0.4*8760/1e6, y.Values[2], 1e-12)
}

func TestCapacityFactorMapMissingLayer(t *testing.T) {
	_, err := CapacityFactorMap(raster.New[eligibility.Category](1, 1), CapacityFactorLayers{}, true, -1)
	assert.Error(t, err)
}

func areaTable(t *testing.T, ids []string, values map[eligibility.Category][]float64) *table.Table {
	t.Helper()
	cats := eligibility.All()
	cols := make([]string, len(cats))
	for j, c := range cats {
		cols[j] = c.AreaColumn()
	}
	tb := table.MustNew(ids, cols)
	for c, v := range values {
		require.NoError(t, tb.SetColumn(c.AreaColumn(), v))
	}
	return tb
}

func TestUnconstrainedPotentials(t *testing.T) {
	areas := areaTable(t, []string{"a", "b"}, map[eligibility.Category][]float64{
		eligibility.RooftopPV:             {1, 0},
		eligibility.OnshoreWindAndPVOther: {2, 0},
		eligibility.OffshoreWind:          {0, 3},
	})
	cfs := table.MustNew([]string{"b", "a"}, []string{PVCapacityFactor, OnshoreCapacityFactor, OffshoreCapacityFactor})
	require.NoError(t, cfs.SetColumn(PVCapacityFactor, []float64{0.1, 0.1}))
	require.NoError(t, cfs.SetColumn(OnshoreCapacityFactor, []float64{0.2, 0.3}))
	require.NoError(t, cfs.SetColumn(OffshoreCapacityFactor, []float64{0.5, math.NaN()}))

	pv, err := UnconstrainedPotentials(areas, cfs, testDensities, 0.5, true)
	require.NoError(t, err)
	h := 8760 / 1e6
	get := func(tb *table.Table, id string, c eligibility.Category) float64 {
		v, err := tb.Get(id, c.EnergyColumn())
		require.NoError(t, err)
		return v
	}
	assert.InDelta(t, 1*120*0.1*h, get(pv, "a", eligibility.RooftopPV), 1e-12)
	assert.InDelta(t, 2*80*0.1*h, get(pv, "a", eligibility.OnshoreWindAndPVOther), 1e-12)
	assert.InDelta(t, 3*15*0.5*h, get(pv, "b", eligibility.OffshoreWind), 1e-12)

	wind, err := UnconstrainedPotentials(areas, cfs, testDensities, 0.5, false)
	require.NoError(t, err)
	assert.InDelta(t, 2*8*0.3*h, get(wind, "a", eligibility.OnshoreWindAndPVOther), 1e-12)
}

func TestUnconstrainedPotentialsMissingCapacityFactor(t *testing.T) {
	areas := areaTable(t, []string{"a"}, map[eligibility.Category][]float64{eligibility.OffshoreWind: {1}})
	cfs := table.MustNew([]string{"a"}, []string{PVCapacityFactor, OnshoreCapacityFactor, OffshoreCapacityFactor})
	require.NoError(t, cfs.SetColumn(OffshoreCapacityFactor, []float64{math.NaN()}))
	_, err := UnconstrainedPotentials(areas, cfs, testDensities, 0.5, true)
	assert.ErrorIs(t, err, ErrMissingCapacityFactor)
}

func TestFillCapacityFactors(t *testing.T) {
	cfs := table.MustNew([]string{"de1", "de2", "de3", "ch1"}, []string{OnshoreCapacityFactor, OffshoreCapacityFactor})
	nan := math.NaN()
	require.NoError(t, cfs.SetColumn(OnshoreCapacityFactor, []float64{0.2, 0.4, nan, 0.1}))
	require.NoError(t, cfs.SetColumn(OffshoreCapacityFactor, []float64{0.5, nan, nan, nan}))
	countries := map[string]string{"de1": "DEU", "de2": "DEU", "de3": "DEU", "ch1": "CHE"}

	out, err := FillCapacityFactors(cfs, countries, nil)
	require.NoError(t, err)
	on, _ := out.Column(OnshoreCapacityFactor)
	off, _ := out.Column(OffshoreCapacityFactor)
	assert.InDeltaSlice(t, []float64{0.2, 0.4, 0.3, 0.1}, on, 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.1}, off, 1e-12)
}

func TestFillCapacityFactorsStillMissing(t *testing.T) {
	cfs := table.MustNew([]string{"x"}, []string{PVCapacityFactor})
	require.NoError(t, cfs.SetColumn(PVCapacityFactor, []float64{math.NaN()}))
	_, err := FillCapacityFactors(cfs, map[string]string{"x": "XXX"}, nil)
	assert.ErrorIs(t, err, ErrMissingCapacityFactor)
}

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{geo.Pt(x0, y0), geo.Pt(x1, y0), geo.Pt(x1, y1), geo.Pt(x0, y1)}}
}

func TestAllocateCapacityFactors(t *testing.T) {
	regions := []geo.Feature{
		{ID: "r1", Geometry: square(0, 0, 2, 2)},
		{ID: "r2", Geometry: square(2, 0, 4, 2)},
	}
	cfs := table.MustNew([]string{"r2", "r1"}, []string{OnshoreCapacityFactor})
	require.NoError(t, cfs.SetColumn(OnshoreCapacityFactor, []float64{0.4, 0.2}))
	units := []geo.Feature{
		{ID: "inside", Geometry: square(0.5, 0.5, 1.5, 1.5)},
		{ID: "across", Geometry: square(1, 0, 4, 1)},
		{ID: "outside", Geometry: square(10, 10, 11, 11)},
	}

	out, err := AllocateCapacityFactors(context.Background(), units, regions, cfs, zonal.NewPool(2), nil)
	require.NoError(t, err)
	col, err := out.Column(OnshoreCapacityFactor)
	require.NoError(t, err)
	assert.InDelta(t, 0.2, col[0], 1e-9)
	assert.InDelta(t, (1*0.2+2*0.4)/3, col[1], 1e-9)
	assert.True(t, math.IsNaN(col[2]))
}

func TestTechnologyColumns(t *testing.T) {
	assert.Equal(t, "rooftop_pv_twh_per_year", RooftopPV.EnergyColumn())
	assert.Equal(t, "offshore_wind_km2", OffshoreWind.AreaColumn())
	assert.Equal(t, "open_field_pv_mw", OpenFieldPV.CapacityColumn())
	assert.Len(t, OnshoreWind.EligibleOn(), 10)
	assert.Len(t, OpenFieldPV.EligibleOn(), 4)
	assert.Equal(t, []eligibility.Category{eligibility.RooftopPV}, RooftopPV.EligibleOn())
	assert.Equal(t, eligibility.Offshore(), OffshoreWind.EligibleOn())
}

func TestTechnologyPotentials(t *testing.T) {
	cats := eligibility.All()
	cols := make([]string, len(cats))
	for j, c := range cats {
		cols[j] = c.EnergyColumn()
	}
	pv := table.MustNew([]string{"u"}, cols)
	wind := table.MustNew([]string{"u"}, cols)
	pv.Apply(func(string, float64) float64 { return 1 })
	wind.Apply(func(string, float64) float64 { return 2 })

	out, err := TechnologyPotentials(pv, wind)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 20, 2}, out.Row(0))
}

func TestTechnologyPotentialsFromRaster(t *testing.T) {
	meta := raster.Meta{Transform: raster.Transform{A: 1, E: -1, F: 1}}
	agg, err := zonal.NewAggregator(meta, 1, 3, 1, nil)
	require.NoError(t, err)
	cats, err := raster.FromRows([][]eligibility.Category{{
		eligibility.RooftopPV, eligibility.OnshoreWindAndPVFarmland, eligibility.OnshoreWindForest,
	}})
	require.NoError(t, err)
	pvYield, _ := raster.FromRows([][]float64{{1, 2, 0}})
	windYield, _ := raster.FromRows([][]float64{{0, 0, 5}})
	units := []geo.Feature{{ID: "u", Geometry: square(0, 0, 3, 1)}}

	out, err := TechnologyPotentialsFromRaster(context.Background(), agg, pvYield, windYield, cats, units, Technologies())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 5, 0}, out.Row(0))
}
