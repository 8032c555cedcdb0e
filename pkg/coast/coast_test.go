package coast

import (
	"context"
	"testing"

	"github.com/ctessum/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/validation"
)

func square(x0, y0, x1, y1 float64) geom.Polygon {
	return geom.Polygon{{geo.Pt(x0, y0), geo.Pt(x1, y0), geo.Pt(x1, y1), geo.Pt(x0, y1)}}
}

func unit(id, country string, g geom.Polygon) geo.Feature {
	return geo.Feature{ID: id, Name: id, CountryCode: country, Geometry: g}
}

func eez(id, country string, area float64, g geom.Polygon) EEZ {
	return EEZ{Feature: unit(id, country, g), AreaKm2: area}
}

var (
	testUnits = []geo.Feature{
		unit("a", "DEU", square(0, 0, 10, 10)),
		unit("b", "DEU", square(0, 10, 10, 30)),
		unit("c", "FRA", square(0, -10, 10, 0)),
		unit("eur", "EUR", square(200, 0, 210, 10)),
	}
	testEEZs = []EEZ{
		eez("e1", "DEU", 300, square(10, 0, 20, 30)),
		eez("e2", "FRA", 100, square(10, -10, 20, 0)),
		eez("e3", "ITA", 100, square(100, 100, 110, 110)),
		eez("e4", "NOR", 100, square(210, 0, 220, 10)),
	}
)

func buildTestMatrix(t *testing.T, report *validation.Report) *table.Table {
	t.Helper()
	m, err := Build(context.Background(), testUnits, testEEZs, Options{
		ContinentalCode: "EUR",
		Workers:         2,
		Report:          report,
	})
	require.NoError(t, err)
	return m
}

func share(t *testing.T, m *table.Table, unitID, eezID string) float64 {
	t.Helper()
	v, err := m.Get(unitID, eezID)
	require.NoError(t, err)
	return v
}

func TestBuildSharesByCoastLength(t *testing.T) {
	report := validation.NewReport()
	m := buildTestMatrix(t, report)

	assert.InDelta(t, 1.0/3, share(t, m, "a", "e1"), 1e-9)
	assert.InDelta(t, 2.0/3, share(t, m, "b", "e1"), 1e-9)
	assert.Zero(t, share(t, m, "c", "e1"), "units of other countries are no candidates")

	assert.Equal(t, 1.0, share(t, m, "c", "e2"))
	assert.Zero(t, share(t, m, "a", "e2"))

	assert.Equal(t, 1.0, share(t, m, "eur", "e4"), "continental unit is a candidate for every eez")

	for _, id := range m.IDs() {
		assert.Zero(t, share(t, m, id, "e3"))
	}
	require.Len(t, report.Info, 1)
	assert.Equal(t, "e3", report.Info[0].Path)
	assert.True(t, report.Valid)
}

func TestBuildIncludesUnitsTouchingAtAPoint(t *testing.T) {
	units := []geo.Feature{
		unit("a", "DEU", square(0, 0, 10, 10)),
		unit("b", "DEU", square(0, 30, 10, 40)),
		unit("c", "DEU", square(0, 50, 10, 60)),
	}
	eezs := []EEZ{
		eez("corner", "DEU", 10, square(10, 10, 20, 20)),
		eez("edge", "DEU", 10, square(10, 40, 20, 50)),
	}
	m, err := Build(context.Background(), units, eezs, Options{Workers: 1})
	require.NoError(t, err)

	assert.Equal(t, 1.0, share(t, m, "a", "corner"), "single point contact takes the whole eez")
	assert.Zero(t, share(t, m, "b", "corner"))
	assert.InDelta(t, 0.5, share(t, m, "b", "edge"), 1e-9, "point contacts only split evenly")
	assert.InDelta(t, 0.5, share(t, m, "c", "edge"), 1e-9)
}

func TestBuildHonoursTolerance(t *testing.T) {
	units := []geo.Feature{unit("a", "DEU", square(0, 0, 10, 10))}
	eezs := []EEZ{eez("e", "DEU", 10, square(10.5, 0, 20, 10))}

	m, err := Build(context.Background(), units, eezs, Options{Workers: 1})
	require.NoError(t, err)
	assert.Zero(t, share(t, m, "a", "e"))

	m, err = Build(context.Background(), units, eezs, Options{Workers: 1, Tolerance: 1})
	require.NoError(t, err)
	assert.Equal(t, 1.0, share(t, m, "a", "e"))
}

func TestColumnsSumToOneOrZero(t *testing.T) {
	m := buildTestMatrix(t, nil)
	for _, col := range m.Columns() {
		sum, err := m.ColumnSum(col)
		require.NoError(t, err)
		assert.True(t, sum == 0 || (sum > 0.99 && sum < 1.01), "column %s sums to %g", col, sum)
	}
	require.NoError(t, CheckColumns(m))
}

func TestCheckColumnsRejectsPartialShares(t *testing.T) {
	m := table.MustNew([]string{"a", "b"}, []string{"e"})
	require.NoError(t, m.SetColumn("e", []float64{0.5, 0.4}))
	assert.ErrorIs(t, CheckColumns(m), validation.ErrToleranceExceeded)
}

func TestAllocateAndCheck(t *testing.T) {
	m := buildTestMatrix(t, nil)
	col := eligibility.OffshoreWind.AreaColumn()
	eezTable := table.MustNew([]string{"e4", "e3", "e2", "e1"}, []string{col})
	require.NoError(t, eezTable.SetColumn(col, []float64{10, 50, 30, 300}))

	allocated, err := Allocate(m, eezTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "eur"}, allocated.IDs())
	got, err := allocated.Column(col)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{100, 200, 30, 10}, got, 1e-9)

	report := validation.NewReport()
	err = CheckAllocation(report, eezTable, allocated)
	assert.ErrorIs(t, err, validation.ErrToleranceExceeded, "potential of e3 is dropped")
	assert.False(t, report.Valid)

	allocatedOnly, err := eezTable.Reindex([]string{"e1", "e2", "e4"})
	require.NoError(t, err)
	assert.NoError(t, CheckAllocation(validation.NewReport(), allocatedOnly, allocated))
}

func TestMerge(t *testing.T) {
	onshore := table.MustNew([]string{"a", "b"}, []string{"on"})
	offshore := table.MustNew([]string{"b", "a"}, []string{"off"})
	require.NoError(t, offshore.SetColumn("off", []float64{2, 1}))

	merged, err := Merge(onshore, offshore)
	require.NoError(t, err)
	assert.Equal(t, []string{"on", "off"}, merged.Columns())
	assert.Equal(t, []float64{0, 1}, merged.Row(0))
}
