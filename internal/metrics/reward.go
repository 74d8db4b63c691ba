package metrics

import "github.com/san-kum/qubesim/internal/dynamo"

// Return sums a per-step reward over the episode.
type Return struct {
	name   string
	reward func(dynamo.State) float64
	sum    float64
}

func NewReturn(reward func(dynamo.State) float64) *Return {
	return &Return{name: "return", reward: reward}
}

func (r *Return) Name() string { return r.name }

func (r *Return) Observe(x dynamo.State, u dynamo.Control, t float64) {
	r.sum += r.reward(x)
}

func (r *Return) Value() float64 { return r.sum }

func (r *Return) Reset() { r.sum = 0 }
