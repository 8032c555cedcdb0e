package validation

import (
	"strings"
	"testing"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/config"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/potential"
	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/scenario"
)

func validConfig() *config.Config {
	return &config.Config{
		Parameters: config.Parameters{
			MaxSlope:           config.MaxSlope{PV: 10, Wind: 20},
			MaxBuildingShare:   0.01,
			MaxUrbanGreenShare: 0.01,
			MaxDepthOffshore:   -50,
			PowerDensity: potential.PowerDensities{
				PVOnTiltedRoofs: 160,
				PVOnFlatAreas:   80,
				OnshoreWind:     8,
				OffshoreWind:    15,
			},
			FlatRoofShare:           0.5,
			RooftopCorrectionFactor: 1,
			ContinentalUnitCode:     "EUR",
		},
		Scenarios: scenario.Set{
			"technical": {
				ShareRooftopsUsed:       1,
				ShareFarmlandUsed:       1,
				ShareForestUsedForWind:  1,
				ShareOtherLandUsed:      1,
				ShareOffshoreUsed:       1,
				ShareProtectedAreasUsed: 1,
				PVOnFarmland:            true,
				UseProtectedAreas:       true,
			},
		},
	}
}

func TestValidConfigPassesSchema(t *testing.T) {
	r := ValidateSchema(validConfig())
	if !r.Valid {
		t.Fatalf("expected valid config, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", r.Warnings)
	}
}

func TestSchemaShareOutOfRange(t *testing.T) {
	cfg := validConfig()
	s := cfg.Scenarios["technical"]
	s.ShareOffshoreUsed = 1.2
	cfg.Scenarios["technical"] = s

	r := ValidateSchema(cfg)
	if r.Valid {
		t.Fatal("expected invalid config for share above 1")
	}
	found := false
	for _, e := range r.Errors {
		if strings.Contains(e.Message, "ShareOffshoreUsed") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected error naming ShareOffshoreUsed, got %v", r.Errors)
	}
}

func TestSchemaSlopeOrder(t *testing.T) {
	cfg := validConfig()
	cfg.Parameters.MaxSlope = config.MaxSlope{PV: 25, Wind: 20}

	r := ValidateSchema(cfg)
	if r.Valid {
		t.Fatal("expected invalid config for pv slope above wind slope")
	}
	paths := map[string]bool{}
	for _, e := range r.Errors {
		paths[e.Path] = true
	}
	if !paths["parameters.max-slope"] {
		t.Errorf("expected threshold error at parameters.max-slope, got %v", r.Errors)
	}
}

func TestSchemaPositiveDepth(t *testing.T) {
	cfg := validConfig()
	cfg.Parameters.MaxDepthOffshore = 10

	if r := ValidateSchema(cfg); r.Valid {
		t.Fatal("expected invalid config for positive offshore depth")
	}
}

func TestSchemaIgnoredProtectedShareWarns(t *testing.T) {
	cfg := validConfig()
	s := cfg.Scenarios["technical"]
	s.UseProtectedAreas = false
	cfg.Scenarios["technical"] = s

	r := ValidateSchema(cfg)
	if !r.Valid {
		t.Fatalf("expected valid config, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(r.Warnings))
	}
	if r.Warnings[0].Path != "scenarios.technical.share-protected-areas-used" {
		t.Errorf("unexpected warning path %q", r.Warnings[0].Path)
	}
}

func TestSchemaUnusedScenarioWarns(t *testing.T) {
	cfg := validConfig()
	cfg.Scenarios["nothing"] = scenario.Scenario{PVOnFarmland: true}

	r := ValidateSchema(cfg)
	if len(r.Warnings) != 1 || r.Warnings[0].Path != "scenarios.nothing" {
		t.Errorf("expected warning for scenarios.nothing, got %v", r.Warnings)
	}
}

func TestSchemaMissingContinentalCode(t *testing.T) {
	cfg := validConfig()
	cfg.Parameters.ContinentalUnitCode = ""

	r := ValidateSchema(cfg)
	if !r.Valid {
		t.Fatalf("expected valid config, got errors: %v", r.Errors)
	}
	if len(r.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %d", len(r.Warnings))
	}
}

func TestSchemaNoScenarios(t *testing.T) {
	cfg := validConfig()
	cfg.Scenarios = nil

	if r := ValidateSchema(cfg); r.Valid {
		t.Error("expected invalid config without scenarios")
	}
}
