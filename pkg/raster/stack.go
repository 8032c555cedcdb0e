package raster

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Stack is a set of named co-registered layers sharing one Meta. It is the
// hand-off format between the raster readers and the pipeline commands.
type Stack struct {
	Meta   Meta
	Rows   int
	Cols   int
	Layers map[string][]float64
}

type stackDoc struct {
	CRS       string               `json:"crs"`
	Transform [6]float64           `json:"transform"`
	NoData    *float64             `json:"nodata,omitempty"`
	Rows      int                  `json:"rows"`
	Cols      int                  `json:"cols"`
	Layers    map[string][]float64 `json:"layers"`
}

// ReadStack decodes a JSON raster stack and checks layer sizes.
func ReadStack(r io.Reader) (*Stack, error) {
	var doc stackDoc
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding raster stack: %w", err)
	}
	for name, values := range doc.Layers {
		if len(values) != doc.Rows*doc.Cols {
			return nil, fmt.Errorf("layer %q has %d values, want %d: %w",
				name, len(values), doc.Rows*doc.Cols, ErrShapeMismatch)
		}
	}
	tr := doc.Transform
	return &Stack{
		Meta: Meta{
			Transform: Transform{A: tr[0], B: tr[1], C: tr[2], D: tr[3], E: tr[4], F: tr[5]},
			CRS:       doc.CRS,
			NoData:    doc.NoData,
		},
		Rows:   doc.Rows,
		Cols:   doc.Cols,
		Layers: doc.Layers,
	}, nil
}

// WriteStack encodes s as JSON.
func WriteStack(w io.Writer, s *Stack) error {
	t := s.Meta.Transform
	doc := stackDoc{
		CRS:       s.Meta.CRS,
		Transform: [6]float64{t.A, t.B, t.C, t.D, t.E, t.F},
		NoData:    s.Meta.NoData,
		Rows:      s.Rows,
		Cols:      s.Cols,
		Layers:    s.Layers,
	}
	return json.NewEncoder(w).Encode(doc)
}

// Names returns the layer names in sorted order.
func (s *Stack) Names() []string {
	names := make([]string, 0, len(s.Layers))
	for n := range s.Layers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Put stores g as layer name.
func Put[T Value](s *Stack, name string, g *Grid[T]) error {
	if g.Rows != s.Rows || g.Cols != s.Cols {
		return fmt.Errorf("layer %q: %w", name, ErrShapeMismatch)
	}
	values := make([]float64, len(g.Values))
	for i, v := range g.Values {
		values[i] = float64(v)
	}
	if s.Layers == nil {
		s.Layers = make(map[string][]float64)
	}
	s.Layers[name] = values
	return nil
}

// Layer extracts the named layer converted to T.
func Layer[T Value](s *Stack, name string) (*Grid[T], error) {
	values, ok := s.Layers[name]
	if !ok {
		return nil, fmt.Errorf("raster stack has no layer %q", name)
	}
	g := New[T](s.Rows, s.Cols)
	for i, v := range values {
		g.Values[i] = T(v)
	}
	return g, nil
}
