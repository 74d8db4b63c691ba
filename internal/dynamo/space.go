package dynamo

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"
)

// Box is a bounded continuous space, one closed interval per dimension.
type Box struct {
	Bounds []r1.Interval
}

// NewBox returns a box with identical [lo, hi] bounds on every dimension.
func NewBox(dim int, lo, hi float64) Box {
	b := Box{Bounds: make([]r1.Interval, dim)}
	for i := range b.Bounds {
		b.Bounds[i] = r1.Interval{Min: lo, Max: hi}
	}
	return b
}

func (b Box) Dim() int { return len(b.Bounds) }

func (b Box) Low() []float64 {
	lo := make([]float64, len(b.Bounds))
	for i, iv := range b.Bounds {
		lo[i] = iv.Min
	}
	return lo
}

func (b Box) High() []float64 {
	hi := make([]float64, len(b.Bounds))
	for i, iv := range b.Bounds {
		hi[i] = iv.Max
	}
	return hi
}

// Contains reports whether u has the right dimension and lies inside every bound.
func (b Box) Contains(u Control) bool {
	if len(u) != len(b.Bounds) {
		return false
	}
	for i, v := range u {
		if v < b.Bounds[i].Min || v > b.Bounds[i].Max {
			return false
		}
	}
	return true
}

// Clip returns a copy of u clamped into the box and whether any element moved.
func (b Box) Clip(u Control) (Control, bool, error) {
	if len(u) != len(b.Bounds) {
		return nil, false, fmt.Errorf("%w: action has %d elements, space has %d", ErrDimensionMismatch, len(u), len(b.Bounds))
	}
	out := u.Clone()
	for i := range out {
		out[i] = floats.Max([]float64{out[i], b.Bounds[i].Min})
		out[i] = floats.Min([]float64{out[i], b.Bounds[i].Max})
	}
	return out, !floats.Equal(out, u), nil
}

func (b Box) String() string {
	return fmt.Sprintf("Box(%v, %v)", b.Low(), b.High())
}
