package metrics

import (
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// Energy is the mean pendulum energy over the episode, zero for a pendulum
// resting upright.
type Energy struct {
	name    string
	model   *physics.RotaryPendulum
	total   float64
	samples int
}

func NewEnergy(model *physics.RotaryPendulum) *Energy {
	if model == nil {
		model = physics.NewRotaryPendulum()
	}
	return &Energy{
		name:  "energy",
		model: model,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 4 {
		return
	}
	e.total += e.model.PendulumEnergy(x[physics.Alpha], x[physics.AlphaDot])
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *Energy) Reset() {
	e.total = 0
	e.samples = 0
}
