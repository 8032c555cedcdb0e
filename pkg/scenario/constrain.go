package scenario

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/raster"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

// Engine applies a scenario to unconstrained potentials.
type Engine struct {
	Scenario Scenario
	Logger   *zap.Logger
}

// NewEngine returns an engine for sc.
func NewEngine(sc Scenario, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Scenario: sc, Logger: logger}
}

func columnCategories(t *table.Table) ([]eligibility.Category, error) {
	cols := t.Columns()
	out := make([]eligibility.Category, len(cols))
	for j, col := range cols {
		c, _, err := eligibility.ParseColumn(col)
		if err != nil {
			return nil, err
		}
		out[j] = c
	}
	return out, nil
}

// Constrain scales every (unit, category) cell of an unconstrained table by
// the larger of its PV-preferring and wind-preferring scaling factors. The
// table's columns must be eligibility columns.
func (e *Engine) Constrain(unconstrained *table.Table) (*table.Table, error) {
	return e.ConstrainPair(unconstrained, unconstrained)
}

// ConstrainPair constrains the tables derived under PV and wind priority and
// keeps, per cell, the PV value where it is strictly larger, else the wind
// value.
func (e *Engine) ConstrainPair(preferPV, preferWind *table.Table) (*table.Table, error) {
	cats, err := columnCategories(preferPV)
	if err != nil {
		return nil, fmt.Errorf("constraining potentials: %w", err)
	}
	wind, err := preferWind.Reindex(preferPV.IDs())
	if err != nil {
		return nil, fmt.Errorf("constraining potentials: %w", err)
	}
	wind, err = wind.Select(preferPV.Columns()...)
	if err != nil {
		return nil, fmt.Errorf("constraining potentials: %w", err)
	}
	out := preferPV.Clone()
	rows, cols := out.Dims()
	for j := 0; j < cols; j++ {
		fpv := e.Scenario.ScalingFactor(cats[j], true)
		fwind := e.Scenario.ScalingFactor(cats[j], false)
		for i := 0; i < rows; i++ {
			pv := preferPV.At(i, j) * fpv
			w := wind.At(i, j) * fwind
			if pv > w {
				out.SetAt(i, j, pv)
			} else {
				out.SetAt(i, j, w)
			}
		}
	}
	e.Logger.Debug("constrained potentials",
		zap.String("scenario", e.Scenario.Name),
		zap.Int("units", rows),
		zap.Float64("unconstrained", preferPV.Total()),
		zap.Float64("constrained", out.Total()),
	)
	return out, nil
}

// ApplyToRaster scales the PV-priority and wind-priority potential maps
// pixel by pixel according to the category of each pixel.
func (e *Engine) ApplyToRaster(pvPrio, windPrio *raster.Grid[float64], categories *raster.Grid[eligibility.Category]) (*raster.Grid[float64], *raster.Grid[float64], error) {
	if err := raster.CheckShapes(pvPrio, windPrio, categories); err != nil {
		return nil, nil, err
	}
	fpv := e.Scenario.Factors(true)
	fwind := e.Scenario.Factors(false)
	pv := pvPrio.Clone()
	wind := windPrio.Clone()
	for i, c := range categories.Values {
		a, ok := fpv[c]
		if !ok {
			return nil, nil, fmt.Errorf("pixel %d code %d: %w", i, uint8(c), eligibility.ErrUnknownCategory)
		}
		pv.Values[i] *= a
		wind.Values[i] *= fwind[c]
	}
	return pv, wind, nil
}

// DecideBetweenPVAndWind splits mixed-use pixels between the technologies.
// On every mixed-use pixel the technology with the higher yield keeps its
// potential and the other is set to zero; equal yields go to PV. Pixels of
// other categories are left untouched.
func DecideBetweenPVAndWind(pvPrio, windPrio, pvYield, windYield *raster.Grid[float64],
	categories *raster.Grid[eligibility.Category]) (*raster.Grid[float64], *raster.Grid[float64], error) {
	if err := raster.CheckShapes(pvPrio, windPrio, pvYield, windYield, categories); err != nil {
		return nil, nil, err
	}
	pv := pvPrio.Clone()
	wind := windPrio.Clone()
	for i, c := range categories.Values {
		if !c.IsMixedUse() {
			continue
		}
		if pvYield.Values[i] >= windYield.Values[i] {
			wind.Values[i] = 0
		} else {
			pv.Values[i] = 0
		}
	}
	return pv, wind, nil
}

// CheckMonotonic verifies that no constrained cell exceeds its
// unconstrained counterpart.
func CheckMonotonic(unconstrained, constrained *table.Table) error {
	u, err := unconstrained.Reindex(constrained.IDs())
	if err != nil {
		return err
	}
	u, err = u.Select(constrained.Columns()...)
	if err != nil {
		return err
	}
	rows, cols := constrained.Dims()
	ids, names := constrained.IDs(), constrained.Columns()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if c, v := constrained.At(i, j), u.At(i, j); c > v+1e-9*math.Max(1, math.Abs(v)) {
				return fmt.Errorf("unit %s column %s: constrained %g exceeds unconstrained %g", ids[i], names[j], c, v)
			}
		}
	}
	return nil
}
