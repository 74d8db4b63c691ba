package control

import (
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// CatchAngle is how close to upright the balance law takes over.
var CatchAngle = 20 * math.Pi / 180

// Balance holds the pendulum upright once it is within CatchAngle and
// outputs zero otherwise.
type Balance struct {
	lqr   *LQR
	space dynamo.Box
}

func NewBalance(space dynamo.Box) *Balance {
	return &Balance{lqr: NewRotaryLQR(), space: space}
}

func newHold(env dynamo.Environment, freq float64, _ Options) (dynamo.Controller, error) {
	if err := requireFeedbackRate(Hold, freq); err != nil {
		return nil, err
	}
	return NewBalance(env.ActionSpace()), nil
}

// Engaged reports whether obs is inside the catch region.
func (b *Balance) Engaged(obs dynamo.State) bool {
	return math.Abs(physics.WrapAngle(obs[physics.Alpha])) < CatchAngle
}

func (b *Balance) Action(obs dynamo.State) dynamo.Control {
	if !b.Engaged(obs) {
		return make(dynamo.Control, b.space.Dim())
	}
	x := obs.Clone()
	x[physics.Alpha] = physics.WrapAngle(x[physics.Alpha])
	u, _, err := b.space.Clip(b.lqr.Action(x))
	if err != nil {
		return make(dynamo.Control, b.space.Dim())
	}
	return u
}
