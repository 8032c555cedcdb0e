package raster

import (
	"fmt"
	"math"
	"strings"
)

// EarthRadiusKm is the authalic radius of the WGS84 ellipsoid, which keeps
// spherical areas equal to ellipsoidal ones when summed over the globe.
const EarthRadiusKm = 6371.0072

var geographicCRS = []string{"epsg:4326", "wgs84", "+proj=longlat", "ogc:crs84"}

// IsGeographic reports whether the CRS is in degrees of longitude/latitude.
func (m Meta) IsGeographic() bool {
	crs := strings.ToLower(strings.TrimSpace(m.CRS))
	for _, g := range geographicCRS {
		if strings.HasPrefix(crs, g) {
			return true
		}
	}
	return false
}

// PixelAreas returns the area of every pixel in km².
//
// For geographic rasters the area of a pixel depends on its latitude and is
// the area of the spherical zone segment it spans. For projected rasters the
// CRS unit is assumed to be metres and all pixels have equal area.
func PixelAreas(meta Meta, rows, cols int) (*Grid[float64], error) {
	t := meta.Transform
	if !t.IsNorthUp() {
		return nil, fmt.Errorf("pixel areas: %w", ErrRotatedTransform)
	}
	g := New[float64](rows, cols)
	if !meta.IsGeographic() {
		area := math.Abs(t.A*t.E) / 1e6
		for i := range g.Values {
			g.Values[i] = area
		}
		return g, nil
	}
	dLon := t.A * math.Pi / 180
	for r := 0; r < rows; r++ {
		top := (t.F + t.E*float64(r)) * math.Pi / 180
		bottom := (t.F + t.E*float64(r+1)) * math.Pi / 180
		area := EarthRadiusKm * EarthRadiusKm * dLon * math.Abs(math.Sin(top)-math.Sin(bottom))
		row := g.Values[r*cols : (r+1)*cols]
		for c := range row {
			row[c] = area
		}
	}
	return g, nil
}
