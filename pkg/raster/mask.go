package raster

// Mask is a boolean raster. Binary operations panic on shape mismatch; callers
// validate input shapes once with CheckShapes before building masks.
type Mask struct {
	Rows int
	Cols int
	Bits []bool
}

// NewMask returns an all-false mask.
func NewMask(rows, cols int) *Mask {
	return &Mask{Rows: rows, Cols: cols, Bits: make([]bool, rows*cols)}
}

// Shape returns rows and columns.
func (m *Mask) Shape() (int, int) {
	return m.Rows, m.Cols
}

// Where builds a mask from a per-pixel predicate.
func Where[T Value](g *Grid[T], pred func(T) bool) *Mask {
	m := NewMask(g.Rows, g.Cols)
	for i, v := range g.Values {
		m.Bits[i] = pred(v)
	}
	return m
}

// In marks pixels whose value is one of codes.
func In[T Value](g *Grid[T], codes ...T) *Mask {
	set := make(map[T]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return Where(g, func(v T) bool {
		_, ok := set[v]
		return ok
	})
}

// Equal marks pixels equal to v.
func Equal[T Value](g *Grid[T], v T) *Mask {
	return Where(g, func(x T) bool { return x == v })
}

// LessEqual marks pixels <= v.
func LessEqual[T Value](g *Grid[T], v T) *Mask {
	return Where(g, func(x T) bool { return x <= v })
}

// Less marks pixels < v.
func Less[T Value](g *Grid[T], v T) *Mask {
	return Where(g, func(x T) bool { return x < v })
}

// Greater marks pixels > v.
func Greater[T Value](g *Grid[T], v T) *Mask {
	return Where(g, func(x T) bool { return x > v })
}

func (m *Mask) combine(o *Mask, op func(a, b bool) bool) *Mask {
	if m.Rows != o.Rows || m.Cols != o.Cols {
		panic(ErrShapeMismatch)
	}
	out := NewMask(m.Rows, m.Cols)
	for i := range m.Bits {
		out.Bits[i] = op(m.Bits[i], o.Bits[i])
	}
	return out
}

// And returns m ∧ o.
func (m *Mask) And(o *Mask) *Mask {
	return m.combine(o, func(a, b bool) bool { return a && b })
}

// Or returns m ∨ o.
func (m *Mask) Or(o *Mask) *Mask {
	return m.combine(o, func(a, b bool) bool { return a || b })
}

// AndNot returns m ∧ ¬o.
func (m *Mask) AndNot(o *Mask) *Mask {
	return m.combine(o, func(a, b bool) bool { return a && !b })
}

// Not returns ¬m.
func (m *Mask) Not() *Mask {
	out := NewMask(m.Rows, m.Cols)
	for i, b := range m.Bits {
		out.Bits[i] = !b
	}
	return out
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// AllOf intersects all masks. It panics when called without masks.
func AllOf(masks ...*Mask) *Mask {
	out := masks[0]
	for _, m := range masks[1:] {
		out = out.And(m)
	}
	return out
}

// AnyOf unions all masks. It panics when called without masks.
func AnyOf(masks ...*Mask) *Mask {
	out := masks[0]
	for _, m := range masks[1:] {
		out = out.Or(m)
	}
	return out
}
