package metrics

import (
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// saturationTol absorbs rounding in the action clip.
const saturationTol = 1e-9

// MeanVoltage is the mean absolute motor voltage over an episode.
type MeanVoltage struct {
	sum     float64
	samples int
}

func NewMeanVoltage() *MeanVoltage { return &MeanVoltage{} }

func (m *MeanVoltage) Name() string { return "mean_voltage" }

func (m *MeanVoltage) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) > 0 {
		m.sum += math.Abs(u[0])
	}
	m.samples++
}

func (m *MeanVoltage) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanVoltage) Reset() {
	m.sum = 0
	m.samples = 0
}

// Saturation is the fraction of an episode spent with the motor voltage
// pinned at the limit.
type Saturation struct {
	limit     float64
	saturated int
	samples   int
}

func NewSaturation(limit float64) *Saturation {
	return &Saturation{limit: limit}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(u) > 0 && math.Abs(u[0]) >= s.limit-saturationTol {
		s.saturated++
	}
	s.samples++
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}
