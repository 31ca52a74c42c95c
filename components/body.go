package components

import (
	"iter"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/spatial/r2"
)

// SoftBody is a circular body with a soft edge (circle or orb).
type SoftBody struct {
	Pos     r2.Vec
	Vel     r2.Vec
	Radius  float64
	Depth   float64 // [0, 1]; deeper bodies move slower
	Heading float64 // radians
	Color   colorful.Color
	Phase   float64 // per-body offset for render-side flicker
}

// Speed returns the velocity magnitude.
func (b SoftBody) Speed() float64 {
	return r2.Norm(b.Vel)
}

// BodyView is a read-only view of a soft body collection.
// It is only valid for the frame it was obtained in.
type BodyView struct {
	items []SoftBody
}

// NewBodyView wraps bodies in a read-only view.
func NewBodyView(bodies []SoftBody) BodyView {
	return BodyView{items: bodies}
}

// Len returns the number of bodies.
func (v BodyView) Len() int { return len(v.items) }

// At returns a copy of the i-th body.
func (v BodyView) At(i int) SoftBody { return v.items[i] }

// All iterates over copies of the bodies.
func (v BodyView) All() iter.Seq2[int, SoftBody] {
	return func(yield func(int, SoftBody) bool) {
		for i := range v.items {
			if !yield(i, v.items[i]) {
				return
			}
		}
	}
}
