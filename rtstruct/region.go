// Package rtstruct reads RT structure sets into named regions, each carrying
// the axial positions of its contour planes, and selects the representative
// slice of a tumor region.
package rtstruct

// Region is one named anatomical structure from a structure set.
type Region struct {
	Name   string
	Number int

	positions []float64
	seen      map[float64]struct{}
}

// NewRegion returns an empty Region.
func NewRegion(name string, number int) *Region {
	return &Region{Name: name, Number: number, seen: make(map[float64]struct{})}
}

// AddPosition records a contour plane. Positions already present are ignored.
func (r *Region) AddPosition(z float64) {
	if r.seen == nil {
		r.seen = make(map[float64]struct{})
	}
	if _, exists := r.seen[z]; exists {
		return
	}

	r.seen[z] = struct{}{}
	r.positions = append(r.positions, z)
}

// Positions returns the recorded positions in insertion order.
func (r *Region) Positions() []float64 {
	out := make([]float64, len(r.positions))
	copy(out, r.positions)
	return out
}
