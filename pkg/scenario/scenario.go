// Package scenario limits technically eligible potentials to the share of
// each land type a scenario allows to be used.
package scenario

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/timtroendle/possibility-for-electricity-autarky/pkg/eligibility"
)

// ErrUnknownScenario is returned when a scenario name is not configured.
var ErrUnknownScenario = errors.New("unknown scenario")

// Scenario is a set of usage shares. Shares are fractions in [0,1].
type Scenario struct {
	Name                    string  `mapstructure:"-" yaml:"-" json:"name"`
	ShareRooftopsUsed       float64 `mapstructure:"share-rooftops-used" yaml:"share-rooftops-used" json:"share-rooftops-used" validate:"gte=0,lte=1"`
	ShareFarmlandUsed       float64 `mapstructure:"share-farmland-used" yaml:"share-farmland-used" json:"share-farmland-used" validate:"gte=0,lte=1"`
	ShareForestUsedForWind  float64 `mapstructure:"share-forest-used-for-wind" yaml:"share-forest-used-for-wind" json:"share-forest-used-for-wind" validate:"gte=0,lte=1"`
	ShareOtherLandUsed      float64 `mapstructure:"share-other-land-used" yaml:"share-other-land-used" json:"share-other-land-used" validate:"gte=0,lte=1"`
	ShareOffshoreUsed       float64 `mapstructure:"share-offshore-used" yaml:"share-offshore-used" json:"share-offshore-used" validate:"gte=0,lte=1"`
	ShareProtectedAreasUsed float64 `mapstructure:"share-protected-areas-used" yaml:"share-protected-areas-used" json:"share-protected-areas-used" validate:"gte=0,lte=1"`
	PVOnFarmland            bool    `mapstructure:"pv-on-farmland" yaml:"pv-on-farmland" json:"pv-on-farmland"`
	UseProtectedAreas       bool    `mapstructure:"use-protected-areas" yaml:"use-protected-areas" json:"use-protected-areas"`
}

// Unrestricted returns the scenario using all technically eligible land.
// Every constrained potential is bounded by its unrestricted counterpart.
func Unrestricted() Scenario {
	return Scenario{
		Name:                    "unrestricted",
		ShareRooftopsUsed:       1,
		ShareFarmlandUsed:       1,
		ShareForestUsedForWind:  1,
		ShareOtherLandUsed:      1,
		ShareOffshoreUsed:       1,
		ShareProtectedAreasUsed: 1,
		PVOnFarmland:            true,
		UseProtectedAreas:       true,
	}
}

// ScalingFactor returns the share of a category's potential that may be
// used, assuming PV (preferPV) or wind is built on mixed-use land.
func (s Scenario) ScalingFactor(c eligibility.Category, preferPV bool) float64 {
	farmlandMixed := s.ShareFarmlandUsed
	if preferPV && !s.PVOnFarmland {
		farmlandMixed = 0
	}
	switch c {
	case eligibility.NotEligible:
		return 0
	case eligibility.RooftopPV:
		return s.ShareRooftopsUsed
	case eligibility.OnshoreWindAndPVOther, eligibility.OnshoreWindOther:
		return s.ShareOtherLandUsed
	case eligibility.OnshoreWindFarmland:
		return s.ShareFarmlandUsed
	case eligibility.OnshoreWindForest:
		return s.ShareForestUsedForWind
	case eligibility.OnshoreWindAndPVFarmland:
		return farmlandMixed
	case eligibility.OffshoreWind:
		return s.ShareOffshoreUsed
	case eligibility.OnshoreWindAndPVOtherProtected,
		eligibility.OnshoreWindOtherProtected,
		eligibility.OnshoreWindFarmlandProtected,
		eligibility.OnshoreWindForestProtected,
		eligibility.OnshoreWindAndPVFarmlandProtected,
		eligibility.OffshoreWindProtected:
		if !s.UseProtectedAreas {
			return 0
		}
		return math.Min(s.ScalingFactor(c.Unprotected(), preferPV), s.ShareProtectedAreasUsed)
	}
	panic("unhandled eligibility category " + c.String())
}

// Factors returns the scaling factor of every category.
func (s Scenario) Factors(preferPV bool) map[eligibility.Category]float64 {
	out := make(map[eligibility.Category]float64)
	for _, c := range eligibility.All() {
		out[c] = s.ScalingFactor(c, preferPV)
	}
	return out
}

// Set is a collection of named scenarios.
type Set map[string]Scenario

// Get returns the named scenario with its Name filled in.
func (s Set) Get(name string) (Scenario, error) {
	sc, ok := s[name]
	if !ok {
		return Scenario{}, fmt.Errorf("scenario %q: %w", name, ErrUnknownScenario)
	}
	sc.Name = name
	return sc, nil
}

// Names returns the scenario names in sorted order.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
