package geo

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
)

// Feature is an administrative unit or exclusive economic zone.
type Feature struct {
	ID          string
	Name        string
	CountryCode string
	Geometry    geom.Polygonal
}

// Bounds returns the bounding box of the feature's geometry.
func (f Feature) Bounds() *geom.Bounds {
	return f.Geometry.Bounds()
}

// Polygonals returns the geometries of features in order.
func Polygonals(features []Feature) []geom.Polygonal {
	out := make([]geom.Polygonal, len(features))
	for i, f := range features {
		out[i] = f.Geometry
	}
	return out
}

// FeatureKeys names the properties holding a feature's attributes.
type FeatureKeys struct {
	ID          string
	Name        string
	CountryCode string
}

// DefaultFeatureKeys matches the unit layers of the study.
var DefaultFeatureKeys = FeatureKeys{ID: "id", Name: "name", CountryCode: "country_code"}

type featureCollection struct {
	Features []struct {
		Properties map[string]any    `json:"properties"`
		Geometry   *geojson.Geometry `json:"geometry"`
	} `json:"features"`
}

// ReadFeatures decodes a GeoJSON feature collection of Polygon and
// MultiPolygon features.
func ReadFeatures(r io.Reader, keys FeatureKeys) ([]Feature, error) {
	var fc featureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("decoding feature collection: %w", err)
	}
	out := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		if f.Geometry == nil {
			return nil, fmt.Errorf("feature %d has no geometry", i)
		}
		g, err := geojson.FromGeoJSON(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		poly, ok := g.(geom.Polygonal)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry %T is not polygonal", i, g)
		}
		feat := Feature{
			ID:          property(f.Properties, keys.ID),
			Name:        property(f.Properties, keys.Name),
			CountryCode: property(f.Properties, keys.CountryCode),
			Geometry:    poly,
		}
		if feat.ID == "" {
			return nil, fmt.Errorf("feature %d has no %q property", i, keys.ID)
		}
		out = append(out, feat)
	}
	return out, nil
}

func property(props map[string]any, key string) string {
	if key == "" {
		return ""
	}
	switch v := props[key].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
