package validation

import (
	"errors"
	"testing"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/table"
)

func TestNewReport(t *testing.T) {
	r := NewReport()
	if !r.Valid {
		t.Error("new report should be valid")
	}
	if len(r.Errors) != 0 || len(r.Warnings) != 0 || len(r.Info) != 0 {
		t.Error("new report should have empty slices")
	}
	if r.Err() != nil {
		t.Error("valid report should have no error")
	}
}

func TestAddError(t *testing.T) {
	r := NewReport()
	r.AddError(Result{
		Level:   LevelSchema,
		Message: "bad value",
	})
	if r.Valid {
		t.Error("report with error should be invalid")
	}
	if len(r.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(r.Errors))
	}
	if r.Errors[0].Severity != SeverityError {
		t.Error("AddError should set severity to error")
	}
	if r.Summary != "1 errors, 0 warnings, 0 info" {
		t.Errorf("unexpected summary: %s", r.Summary)
	}
	if r.Err() == nil {
		t.Error("invalid report should return an error")
	}
}

func TestAddWarningAndInfo(t *testing.T) {
	r := NewReport()
	r.AddWarning(Result{Level: LevelAllocation, Message: "heads up"})
	r.AddInfo(Result{Level: LevelAllocation, Message: "fyi"})
	if !r.Valid {
		t.Error("warnings and info should not invalidate report")
	}
	if r.Warnings[0].Severity != SeverityWarning || r.Info[0].Severity != SeverityInfo {
		t.Error("severity not set")
	}
}

func TestMerge(t *testing.T) {
	r1 := NewReport()
	r1.AddWarning(Result{Level: LevelSchema, Message: "warn1"})

	r2 := NewReport()
	r2.AddError(Result{Level: LevelConservation, Message: "err1"})
	r2.AddWarning(Result{Level: LevelConservation, Message: "warn2"})
	r2.AddInfo(Result{Level: LevelConservation, Message: "info1"})

	r1.Merge(r2)

	if r1.Valid {
		t.Error("merged report should be invalid when other has errors")
	}
	if r1.Summary != "1 errors, 2 warnings, 1 info" {
		t.Errorf("unexpected summary: %s", r1.Summary)
	}
}

func TestToleranceWithin(t *testing.T) {
	tol := AllocationTolerance
	cases := []struct {
		actual, expected float64
		want             bool
	}{
		{1000, 1000, true},
		{1004, 1000, true},   // 0.4 %
		{1010, 1000, false},  // 1 %, 10 km²
		{10004, 10000, true}, // 4 km²
		{2, 0, true},
		{6, 0, false},
	}
	for _, c := range cases {
		if got := tol.Within(c.actual, c.expected); got != c.want {
			t.Errorf("Within(%g, %g) = %v, want %v", c.actual, c.expected, got, c.want)
		}
	}
}

func TestCheckTotal(t *testing.T) {
	r := NewReport()
	if err := CheckTotal(r, LevelAllocation, "offshore", 100, 100.1, AllocationTolerance); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckTotal(r, LevelAllocation, "offshore", 50, 100, AllocationTolerance)
	if !errors.Is(err, ErrToleranceExceeded) {
		t.Errorf("expected ErrToleranceExceeded, got %v", err)
	}
	if r.Valid || len(r.Errors) != 1 {
		t.Error("violation should be recorded as error")
	}
}

func TestCheckAreaConservation(t *testing.T) {
	tb := table.MustNew([]string{"a", "b", "c"}, []string{"x", "y"})
	_ = tb.SetColumn("x", []float64{50, 10, 1})
	_ = tb.SetColumn("y", []float64{50, 10, 1})

	r := NewReport()
	err := CheckAreaConservation(r, tb, map[string]float64{"a": 101, "b": 100}, AreaTolerance)
	if !errors.Is(err, ErrToleranceExceeded) {
		t.Fatalf("expected unit b to fail, got %v", err)
	}
	if len(r.Errors) != 1 || r.Errors[0].Path != "area of b" {
		t.Errorf("unexpected errors: %+v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected warning for unit c, got %d", len(r.Warnings))
	}
}
