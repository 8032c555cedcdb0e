// Package eligibility classifies raster pixels into mutually exclusive
// categories of land and sea on which renewables can be built.
package eligibility

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a raster holds a code that is not a
// Category.
var ErrUnknownCategory = errors.New("unknown eligibility category")

// Category is the eligibility class of a pixel. The numeric values are the
// codes stored in categorical rasters.
type Category uint8

const (
	NotEligible                       Category = 0
	RooftopPV                         Category = 250
	OnshoreWindAndPVOther             Category = 200
	OnshoreWindOther                  Category = 180
	OnshoreWindFarmland               Category = 160
	OnshoreWindForest                 Category = 140
	OnshoreWindAndPVFarmland          Category = 120
	OffshoreWind                      Category = 110
	OnshoreWindAndPVOtherProtected    Category = 100
	OnshoreWindOtherProtected         Category = 80
	OnshoreWindFarmlandProtected      Category = 60
	OnshoreWindForestProtected        Category = 40
	OnshoreWindAndPVFarmlandProtected Category = 20
	OffshoreWindProtected             Category = 10
)

var all = []Category{
	NotEligible,
	RooftopPV,
	OnshoreWindAndPVOther,
	OnshoreWindOther,
	OnshoreWindFarmland,
	OnshoreWindForest,
	OnshoreWindAndPVFarmland,
	OffshoreWind,
	OnshoreWindAndPVOtherProtected,
	OnshoreWindOtherProtected,
	OnshoreWindFarmlandProtected,
	OnshoreWindForestProtected,
	OnshoreWindAndPVFarmlandProtected,
	OffshoreWindProtected,
}

// All returns every category in declaration order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Eligible returns every category except NotEligible.
func Eligible() []Category {
	return All()[1:]
}

// Onshore returns the categories on land.
func Onshore() []Category {
	var out []Category
	for _, c := range all[1:] {
		if !c.IsOffshore() {
			out = append(out, c)
		}
	}
	return out
}

// Offshore returns the categories at sea.
func Offshore() []Category {
	return []Category{OffshoreWind, OffshoreWindProtected}
}

// Parse converts a raster code into a Category.
func Parse(code int) (Category, error) {
	for _, c := range all {
		if int(c) == code {
			return c, nil
		}
	}
	return NotEligible, fmt.Errorf("code %d: %w", code, ErrUnknownCategory)
}

// ParseName is the inverse of String.
func ParseName(name string) (Category, error) {
	for _, c := range all {
		if c.String() == name {
			return c, nil
		}
	}
	return NotEligible, fmt.Errorf("name %q: %w", name, ErrUnknownCategory)
}

func (c Category) String() string {
	switch c {
	case NotEligible:
		return "NOT_ELIGIBLE"
	case RooftopPV:
		return "ROOFTOP_PV"
	case OnshoreWindAndPVOther:
		return "ONSHORE_WIND_AND_PV_OTHER"
	case OnshoreWindOther:
		return "ONSHORE_WIND_OTHER"
	case OnshoreWindFarmland:
		return "ONSHORE_WIND_FARMLAND"
	case OnshoreWindForest:
		return "ONSHORE_WIND_FOREST"
	case OnshoreWindAndPVFarmland:
		return "ONSHORE_WIND_AND_PV_FARMLAND"
	case OffshoreWind:
		return "OFFSHORE_WIND"
	case OnshoreWindAndPVOtherProtected:
		return "ONSHORE_WIND_AND_PV_OTHER_PROTECTED"
	case OnshoreWindOtherProtected:
		return "ONSHORE_WIND_OTHER_PROTECTED"
	case OnshoreWindFarmlandProtected:
		return "ONSHORE_WIND_FARMLAND_PROTECTED"
	case OnshoreWindForestProtected:
		return "ONSHORE_WIND_FOREST_PROTECTED"
	case OnshoreWindAndPVFarmlandProtected:
		return "ONSHORE_WIND_AND_PV_FARMLAND_PROTECTED"
	case OffshoreWindProtected:
		return "OFFSHORE_WIND_PROTECTED"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

// AreaColumn is the table column holding the category's area in km².
func (c Category) AreaColumn() string {
	return "eligibility_" + strings.ToLower(c.String()) + AreaSuffix
}

// EnergyColumn is the table column holding the category's yield in TWh/a.
func (c Category) EnergyColumn() string {
	return "eligibility_" + strings.ToLower(c.String()) + EnergySuffix
}

// IsProtected reports whether c lies inside a protected area.
func (c Category) IsProtected() bool {
	switch c {
	case OnshoreWindAndPVOtherProtected, OnshoreWindOtherProtected, OnshoreWindFarmlandProtected,
		OnshoreWindForestProtected, OnshoreWindAndPVFarmlandProtected, OffshoreWindProtected:
		return true
	}
	return false
}

// Unprotected maps a protected category to its unprotected twin. Other
// categories map to themselves.
func (c Category) Unprotected() Category {
	switch c {
	case OnshoreWindAndPVOtherProtected:
		return OnshoreWindAndPVOther
	case OnshoreWindOtherProtected:
		return OnshoreWindOther
	case OnshoreWindFarmlandProtected:
		return OnshoreWindFarmland
	case OnshoreWindForestProtected:
		return OnshoreWindForest
	case OnshoreWindAndPVFarmlandProtected:
		return OnshoreWindAndPVFarmland
	case OffshoreWindProtected:
		return OffshoreWind
	}
	return c
}

// IsMixedUse reports whether both PV and wind could use pixels of c.
func (c Category) IsMixedUse() bool {
	switch c.Unprotected() {
	case OnshoreWindAndPVOther, OnshoreWindAndPVFarmland:
		return true
	}
	return false
}

// IsWindOnly reports whether only onshore wind can use pixels of c.
func (c Category) IsWindOnly() bool {
	switch c.Unprotected() {
	case OnshoreWindOther, OnshoreWindFarmland, OnshoreWindForest:
		return true
	}
	return false
}

// IsOffshore reports whether c lies at sea.
func (c Category) IsOffshore() bool {
	return c.Unprotected() == OffshoreWind
}

// Column suffixes of per-unit tables.
const (
	AreaSuffix     = "_km2"
	CapacitySuffix = "_mw"
	EnergySuffix   = "_twh_per_year"
)

// ParseColumn returns the category a table column such as
// eligibility_rooftop_pv_km2 refers to, together with its unit suffix.
func ParseColumn(column string) (Category, string, error) {
	rest, ok := strings.CutPrefix(column, "eligibility_")
	if !ok {
		return NotEligible, "", fmt.Errorf("column %q: %w", column, ErrUnknownCategory)
	}
	for _, suffix := range []string{EnergySuffix, CapacitySuffix, AreaSuffix} {
		name, ok := strings.CutSuffix(rest, suffix)
		if !ok {
			continue
		}
		c, err := ParseName(strings.ToUpper(name))
		if err != nil {
			return NotEligible, "", fmt.Errorf("column %q: %w", column, err)
		}
		return c, suffix, nil
	}
	return NotEligible, "", fmt.Errorf("column %q: %w", column, ErrUnknownCategory)
}

// CapacityColumn is the table column holding the category's capacity in MW.
func (c Category) CapacityColumn() string {
	return "eligibility_" + strings.ToLower(c.String()) + CapacitySuffix
}
