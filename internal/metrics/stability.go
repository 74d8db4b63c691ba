package metrics

import (
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// Upright is the fraction of steps spent within threshold radians of
// upright.
type Upright struct {
	name      string
	threshold float64
	upright   int
	samples   int
}

func NewUpright(threshold float64) *Upright {
	return &Upright{
		name:      "upright",
		threshold: threshold,
	}
}

func (s *Upright) Name() string {
	return s.name
}

func (s *Upright) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 2 {
		return
	}
	s.samples++
	if math.Abs(physics.WrapAngle(x[physics.Alpha])) < s.threshold {
		s.upright++
	}
}

func (s *Upright) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.upright) / float64(s.samples)
}

func (s *Upright) Reset() {
	s.upright = 0
	s.samples = 0
}
