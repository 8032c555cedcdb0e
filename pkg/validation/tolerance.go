package validation

import (
	"fmt"
	"math"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

// Tolerance combines a relative and an absolute bound. A value passes when
// it is within either of them.
type Tolerance struct {
	Rel float64
	Abs float64
}

// Default tolerances of the pipeline's consistency checks.
var (
	// AllocationTolerance bounds offshore potential lost or gained when
	// allocating EEZs to units (areas in km²).
	AllocationTolerance = Tolerance{Rel: 0.005, Abs: 5}

	// AreaTolerance bounds the difference between the summed eligibility
	// of a unit and its geometric area (km²), allowing for pixelation.
	AreaTolerance = Tolerance{Rel: 0.015, Abs: 3.5}
)

// Within reports whether actual is within tolerance of expected.
func (t Tolerance) Within(actual, expected float64) bool {
	diff := math.Abs(actual - expected)
	return diff < math.Abs(expected)*t.Rel || diff < t.Abs
}

func (t Tolerance) String() string {
	return fmt.Sprintf("±%g%% or ±%g", t.Rel*100, t.Abs)
}

// CheckTotal compares a total against its reference. A violation is added
// to r as an error and returned wrapping ErrToleranceExceeded.
func CheckTotal(r *Report, level Level, path string, actual, expected float64, tol Tolerance) error {
	if tol.Within(actual, expected) {
		return nil
	}
	msg := fmt.Sprintf("%s is %g but should be %g", path, actual, expected)
	r.AddError(Result{
		Level:       level,
		Message:     msg,
		Path:        path,
		ActualValue: actual,
		Expected:    fmt.Sprintf("%g (%s)", expected, tol),
	})
	return fmt.Errorf("%s: %w", msg, ErrToleranceExceeded)
}

// CheckAreaConservation verifies that the eligibility columns of every unit
// sum to the unit's area. areas maps unit ids to their geometric area.
// Units missing from areas are reported as warnings.
func CheckAreaConservation(r *Report, eligibilityAreas *table.Table, areas map[string]float64, tol Tolerance) error {
	var first error
	for i, id := range eligibilityAreas.IDs() {
		want, ok := areas[id]
		if !ok {
			r.AddWarning(Result{
				Level:   LevelConservation,
				Message: fmt.Sprintf("no reference area for unit %s", id),
				Path:    id,
			})
			continue
		}
		err := CheckTotal(r, LevelConservation, "area of "+id, eligibilityAreas.RowSum(i), want, tol)
		if err != nil && first == nil {
			first = err
		}
	}
	return first
}
