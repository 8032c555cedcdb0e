package validation

import (
	"fmt"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/config"
)

// ValidateSchema performs schema validation on a loaded configuration.
// It checks structural correctness before any computation.
func ValidateSchema(cfg *config.Config) *Report {
	r := NewReport()

	validateFields(cfg, r)
	validateThresholds(cfg, r)
	validateParameters(cfg, r)
	validateScenarios(cfg, r)

	return r
}

func validateFields(cfg *config.Config, r *Report) {
	for _, msg := range config.NewValidator().FieldErrors(cfg) {
		r.AddError(Result{
			Level:   LevelSchema,
			Message: msg,
			Path:    "config",
		})
	}
}

func validateThresholds(cfg *config.Config, r *Report) {
	if err := cfg.Parameters.Thresholds().Validate(); err != nil {
		r.AddError(Result{
			Level:       LevelSchema,
			Message:     err.Error(),
			Path:        "parameters.max-slope",
			ActualValue: cfg.Parameters.MaxSlope,
			Suggestions: []string{"max-slope.pv must not exceed max-slope.wind and max-depth-offshore must be <= 0"},
		})
	}
}

func validateParameters(cfg *config.Config, r *Report) {
	p := cfg.Parameters
	if p.ContinentalUnitCode == "" {
		r.AddWarning(Result{
			Level:    LevelSchema,
			Message:  "continental-unit-code is empty; continental units cannot receive offshore areas",
			Path:     "parameters.continental-unit-code",
			Expected: "non-empty country code such as EUR",
		})
	}
	if p.RooftopCorrectionFactor > 1 {
		r.AddWarning(Result{
			Level:       LevelSchema,
			Message:     "rooftop-correction-factor above 1 inflates building footprints",
			Path:        "parameters.rooftop-correction-factor",
			ActualValue: p.RooftopCorrectionFactor,
			Expected:    "<= 1",
		})
	}
	if p.PowerDensity.PVOnFlatAreas > p.PowerDensity.PVOnTiltedRoofs {
		r.AddInfo(Result{
			Level:       LevelSchema,
			Message:     "pv-on-flat-areas density exceeds pv-on-tilted-roofs density",
			Path:        "parameters.maximum-installable-power-density",
			ActualValue: p.PowerDensity.PVOnFlatAreas,
		})
	}
}

func validateScenarios(cfg *config.Config, r *Report) {
	for _, name := range cfg.Scenarios.Names() {
		s := cfg.Scenarios[name]
		path := fmt.Sprintf("scenarios.%s", name)

		if !s.UseProtectedAreas && s.ShareProtectedAreasUsed > 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("scenario %s: share-protected-areas-used is ignored when use-protected-areas is false", name),
				Path:        path + ".share-protected-areas-used",
				ActualValue: s.ShareProtectedAreasUsed,
				Expected:    "0",
			})
		}
		if !s.PVOnFarmland && s.ShareFarmlandUsed > 0 {
			r.AddInfo(Result{
				Level:   LevelSchema,
				Message: fmt.Sprintf("scenario %s: farmland shared with pv is only used when wind is preferred", name),
				Path:    path + ".pv-on-farmland",
			})
		}
		if s.ShareRooftopsUsed == 0 && s.ShareFarmlandUsed == 0 && s.ShareForestUsedForWind == 0 &&
			s.ShareOtherLandUsed == 0 && s.ShareOffshoreUsed == 0 {
			r.AddWarning(Result{
				Level:       LevelSchema,
				Message:     fmt.Sprintf("scenario %s uses no land at all", name),
				Path:        path,
				Suggestions: []string{"Set at least one share-*-used above 0"},
			})
		}
	}
}
