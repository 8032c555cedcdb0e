package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/coast"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/geo"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/potential"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/scenario"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/validation"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/zonal"
)

// cfNoData marks pixels without a capacity factor.
const cfNoData = -1

// referenceAreaColumn holds the geometric unit areas checked by areas.
const referenceAreaColumn = "area_km2"

func (a *app) runClassify(ctx context.Context, stackURI, out string) error {
	s, err := a.readStack(ctx, stackURI)
	if err != nil {
		return err
	}
	var in eligibility.Inputs
	if in.LandCover, err = raster.Layer[eligibility.LandCover](s, layerLandCover); err != nil {
		return err
	}
	if in.Slope, err = raster.Layer[float64](s, layerSlope); err != nil {
		return err
	}
	if in.Bathymetry, err = raster.Layer[float64](s, layerBathymetry); err != nil {
		return err
	}
	if in.ProtectedAreas, err = raster.Layer[uint8](s, layerProtectedAreas); err != nil {
		return err
	}
	if in.BuildingShare, err = raster.Layer[float64](s, layerBuildingShare); err != nil {
		return err
	}
	if in.UrbanGreenShare, err = raster.Layer[float64](s, layerUrbanGreenShare); err != nil {
		return err
	}

	classifier, err := eligibility.NewClassifier(a.cfg.Parameters.Thresholds(), a.logger)
	if err != nil {
		return err
	}
	categories, err := classifier.Classify(in)
	if err != nil {
		return fmt.Errorf("classifying %s: %w", stackURI, err)
	}
	summary, err := eligibility.Summary(categories)
	if err != nil {
		return err
	}
	printCategorySummary(os.Stderr, summary)

	if err := raster.Put(s, layerEligibility, categories); err != nil {
		return err
	}
	return a.writeStack(out, s)
}

// eligibilityInputs reads the layers shared by the area and raster
// potential commands.
func eligibilityInputs(s *raster.Stack) (*raster.Grid[eligibility.Category], *raster.Grid[float64], *raster.Grid[float64], error) {
	categories, err := raster.Layer[eligibility.Category](s, layerEligibility)
	if err != nil {
		return nil, nil, nil, err
	}
	buildingShare, err := raster.Layer[float64](s, layerBuildingShare)
	if err != nil {
		return nil, nil, nil, err
	}
	pixelAreas, err := raster.PixelAreas(s.Meta, s.Rows, s.Cols)
	if err != nil {
		return nil, nil, nil, err
	}
	return categories, buildingShare, pixelAreas, nil
}

func (a *app) runAreas(ctx context.Context, stackURI, unitsURI, referenceURI, out string) error {
	s, err := a.readStack(ctx, stackURI)
	if err != nil {
		return err
	}
	units, err := a.readFeatures(ctx, unitsURI)
	if err != nil {
		return err
	}
	categories, buildingShare, pixelAreas, err := eligibilityInputs(s)
	if err != nil {
		return err
	}
	eligibleArea, err := potential.TechnicallyEligibleArea(pixelAreas, categories, buildingShare,
		a.cfg.Parameters.RooftopCorrectionFactor)
	if err != nil {
		return err
	}
	agg, err := zonal.NewAggregator(s.Meta, s.Rows, s.Cols, a.workers, a.logger)
	if err != nil {
		return err
	}
	areas, err := agg.EligibilityTable(ctx, eligibleArea, categories, units, eligibility.Category.AreaColumn)
	if err != nil {
		return err
	}

	if referenceURI != "" {
		if err := a.checkAreaConservation(ctx, agg, pixelAreas, categories, units, referenceURI); err != nil {
			return err
		}
	}
	return a.writeTable(out, areas)
}

// checkAreaConservation compares the per-category pixel areas of every
// unit with the unit's reference area.
func (a *app) checkAreaConservation(ctx context.Context, agg *zonal.Aggregator, pixelAreas *raster.Grid[float64],
	categories *raster.Grid[eligibility.Category], units []geo.Feature, referenceURI string) error {
	reference, err := a.readTable(ctx, referenceURI)
	if err != nil {
		return err
	}
	values, err := reference.Column(referenceAreaColumn)
	if err != nil {
		return fmt.Errorf("%s: %w", referenceURI, err)
	}
	want := make(map[string]float64, len(values))
	for i, id := range reference.IDs() {
		want[id] = values[i]
	}
	byCategory, err := agg.EligibilityTable(ctx, pixelAreas, categories, units, eligibility.Category.AreaColumn)
	if err != nil {
		return err
	}
	r := validation.NewReport()
	checkErr := validation.CheckAreaConservation(r, byCategory, want, validation.AreaTolerance)
	if !r.Valid || len(r.Warnings) > 0 {
		printValidationReport(os.Stderr, r)
	}
	return checkErr
}

func (a *app) runWater(ctx context.Context, stackURI, unitsURI, out string) error {
	s, err := a.readStack(ctx, stackURI)
	if err != nil {
		return err
	}
	units, err := a.readFeatures(ctx, unitsURI)
	if err != nil {
		return err
	}
	landCover, err := raster.Layer[eligibility.LandCover](s, layerLandCover)
	if err != nil {
		return err
	}
	agg, err := zonal.NewAggregator(s.Meta, s.Rows, s.Cols, a.workers, a.logger)
	if err != nil {
		return err
	}
	counts, err := zonal.CountByClass(ctx, agg, landCover, geo.Polygonals(units))
	if err != nil {
		return err
	}
	stats := zonal.AggregateWaterStats(counts)
	keys := []string{zonal.WaterKey, zonal.NotWaterKey, zonal.NoDataKey}
	t, err := table.New(ids(units), keys)
	if err != nil {
		return err
	}
	for j, key := range keys {
		for i, n := range stats[key] {
			t.SetAt(i, j, float64(n))
		}
	}
	return a.writeTable(out, t)
}

func (a *app) runPotentials(ctx context.Context, areasURI, cfURI, unitsURI, regionsURI string, preferPV bool, out string) error {
	areas, err := a.readTable(ctx, areasURI)
	if err != nil {
		return err
	}
	cfs, err := a.readTable(ctx, cfURI)
	if err != nil {
		return err
	}
	units, err := a.readFeatures(ctx, unitsURI)
	if err != nil {
		return err
	}
	if regionsURI != "" {
		regions, err := a.readFeatures(ctx, regionsURI)
		if err != nil {
			return err
		}
		cfs, err = potential.AllocateCapacityFactors(ctx, units, regions, cfs, zonal.NewPool(a.workers), a.logger)
		if err != nil {
			return err
		}
	}
	countryOf := make(map[string]string, len(units))
	for _, u := range units {
		countryOf[u.ID] = u.CountryCode
	}
	cfs, err = potential.FillCapacityFactors(cfs, countryOf, a.logger)
	if err != nil {
		return err
	}

	p := a.cfg.Parameters
	potentials, err := potential.UnconstrainedPotentials(areas, cfs, p.PowerDensity, p.FlatRoofShare, preferPV)
	if err != nil {
		return err
	}
	a.logger.Info("unconstrained potentials",
		zap.Bool("prefer_pv", preferPV),
		zap.Float64("total_twh_per_year", potentials.Total()),
	)
	return a.writeTable(out, potentials)
}

func (a *app) runConstrain(ctx context.Context, pvURI, windURI, scenarioName, out, techOut string) error {
	sc, err := a.cfg.Scenario(scenarioName)
	if err != nil {
		return err
	}
	pv, err := a.readTable(ctx, pvURI)
	if err != nil {
		return err
	}
	wind := pv
	if windURI != "" {
		if wind, err = a.readTable(ctx, windURI); err != nil {
			return err
		}
	}

	engine := scenario.NewEngine(sc, a.logger)
	constrained, err := engine.ConstrainPair(pv, wind)
	if err != nil {
		return err
	}
	upper, err := scenario.NewEngine(scenario.Unrestricted(), a.logger).ConstrainPair(pv, wind)
	if err != nil {
		return err
	}
	if err := scenario.CheckMonotonic(upper, constrained); err != nil {
		return fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	a.logger.Info("constrained potentials",
		zap.String("scenario", sc.Name),
		zap.Float64("total_twh_per_year", constrained.Total()),
		zap.Float64("unrestricted_twh_per_year", upper.Total()),
	)

	if techOut != "" {
		pvOnly, err := engine.Constrain(pv)
		if err != nil {
			return err
		}
		windOnly, err := engine.Constrain(wind)
		if err != nil {
			return err
		}
		byTechnology, err := potential.TechnologyPotentials(pvOnly, windOnly)
		if err != nil {
			return err
		}
		if err := a.writeTable(techOut, byTechnology); err != nil {
			return err
		}
	}
	return a.writeTable(out, constrained)
}

func (a *app) runRasterPotentials(ctx context.Context, stackURI, unitsURI, scenarioName, out, stackOut string) error {
	sc, err := a.cfg.Scenario(scenarioName)
	if err != nil {
		return err
	}
	s, err := a.readStack(ctx, stackURI)
	if err != nil {
		return err
	}
	units, err := a.readFeatures(ctx, unitsURI)
	if err != nil {
		return err
	}
	categories, buildingShare, pixelAreas, err := eligibilityInputs(s)
	if err != nil {
		return err
	}
	var cf potential.CapacityFactorLayers
	if cf.RooftopPV, err = raster.Layer[float64](s, layerCFRooftopPV); err != nil {
		return err
	}
	if cf.OpenFieldPV, err = raster.Layer[float64](s, layerCFOpenFieldPV); err != nil {
		return err
	}
	if cf.OnshoreWind, err = raster.Layer[float64](s, layerCFOnshoreWind); err != nil {
		return err
	}
	if cf.OffshoreWind, err = raster.Layer[float64](s, layerCFOffshoreWind); err != nil {
		return err
	}

	p := a.cfg.Parameters
	area, err := potential.TechnicallyEligibleArea(pixelAreas, categories, buildingShare, p.RooftopCorrectionFactor)
	if err != nil {
		return err
	}
	yields := make(map[bool]*raster.Grid[float64], 2)
	for _, preferPV := range []bool{true, false} {
		capacity, err := potential.Capacities(area, categories, p.PowerDensity, p.FlatRoofShare, preferPV)
		if err != nil {
			return err
		}
		cfMap, err := potential.CapacityFactorMap(categories, cf, preferPV, cfNoData)
		if err != nil {
			return err
		}
		if yields[preferPV], err = potential.ElectricityYield(capacity, cfMap, cfNoData); err != nil {
			return err
		}
	}

	pv, wind, err := scenario.NewEngine(sc, a.logger).ApplyToRaster(yields[true], yields[false], categories)
	if err != nil {
		return err
	}
	pv, wind, err = scenario.DecideBetweenPVAndWind(pv, wind, pv, wind, categories)
	if err != nil {
		return err
	}

	agg, err := zonal.NewAggregator(s.Meta, s.Rows, s.Cols, a.workers, a.logger)
	if err != nil {
		return err
	}
	byTechnology, err := potential.TechnologyPotentialsFromRaster(ctx, agg, pv, wind, categories, units,
		potential.Technologies())
	if err != nil {
		return err
	}

	if stackOut != "" {
		result := &raster.Stack{Meta: s.Meta, Rows: s.Rows, Cols: s.Cols}
		if err := raster.Put(result, layerEligibility, categories); err != nil {
			return err
		}
		if err := raster.Put(result, layerPVYield, pv); err != nil {
			return err
		}
		if err := raster.Put(result, layerWindYield, wind); err != nil {
			return err
		}
		if err := a.writeStack(stackOut, result); err != nil {
			return err
		}
	}
	return a.writeTable(out, byTechnology)
}

func (a *app) runSharedCoast(ctx context.Context, unitsURI, eezURI, eezTableURI, out string) error {
	units, err := a.readFeatures(ctx, unitsURI)
	if err != nil {
		return err
	}
	features, err := a.readFeatures(ctx, eezURI)
	if err != nil {
		return err
	}
	var areas *table.Table
	if eezTableURI != "" {
		if areas, err = a.readTable(ctx, eezTableURI); err != nil {
			return err
		}
	}
	eezs := make([]coast.EEZ, len(features))
	for j, f := range features {
		eezs[j] = coast.EEZ{Feature: f}
		if areas == nil {
			continue
		}
		if i, ok := areas.RowIndex(f.ID); ok {
			eezs[j].AreaKm2 = areas.RowSum(i)
		}
	}

	r := validation.NewReport()
	matrix, err := coast.Build(ctx, units, eezs, coast.Options{
		ContinentalCode: a.cfg.Parameters.ContinentalUnitCode,
		Workers:         a.workers,
		Logger:          a.logger,
		Report:          r,
	})
	if err != nil {
		return err
	}
	if len(r.Info) > 0 {
		printValidationReport(os.Stderr, r)
	}
	return a.writeTable(out, matrix)
}

func (a *app) runAllocateEEZ(ctx context.Context, matrixURI, eezTableURI, onshoreURI, out string) error {
	matrix, err := a.readTable(ctx, matrixURI)
	if err != nil {
		return err
	}
	if err := coast.CheckColumns(matrix); err != nil {
		return err
	}
	eezTable, err := a.readTable(ctx, eezTableURI)
	if err != nil {
		return err
	}
	allocated, err := coast.Allocate(matrix, eezTable)
	if err != nil {
		return err
	}

	// Dropped EEZs have all-zero columns and are excluded from the check.
	var kept []string
	for _, id := range matrix.Columns() {
		if sum, _ := matrix.ColumnSum(id); sum != 0 {
			kept = append(kept, id)
		}
	}
	allocatedEEZs, err := eezTable.Reindex(kept)
	if err != nil {
		return err
	}
	r := validation.NewReport()
	if dropped := len(matrix.Columns()) - len(kept); dropped > 0 {
		r.AddInfo(validation.Result{
			Level:       validation.LevelAllocation,
			Message:     fmt.Sprintf("%d eez without shared coast not allocated", dropped),
			Path:        matrixURI,
			ActualValue: eezTable.Total() - allocatedEEZs.Total(),
		})
	}
	if err := coast.CheckAllocation(r, allocatedEEZs, allocated); err != nil {
		printValidationReport(os.Stderr, r)
		return err
	}

	if onshoreURI != "" {
		onshore, err := a.readTable(ctx, onshoreURI)
		if err != nil {
			return err
		}
		offshore, err := allocated.Reindex(onshore.IDs())
		if err != nil {
			return err
		}
		if allocated, err = coast.Merge(onshore, offshore); err != nil {
			return err
		}
	}
	return a.writeTable(out, allocated)
}

func (a *app) runValidate(asJSON bool) error {
	r := validation.ValidateSchema(a.cfg)
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(r); err != nil {
			return err
		}
	} else {
		printValidationReport(os.Stdout, r)
	}
	return r.Err()
}
