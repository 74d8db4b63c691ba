package control

import (
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

const (
	// DefaultPumpGain scales the swing energy error into a commanded arm
	// acceleration (rad/s^2 per J).
	DefaultPumpGain = 50000.0
	// DefaultMaxPumpAccel caps the pumping term, in rad/s^2.
	DefaultMaxPumpAccel = 100.0
	// Arm centering keeps theta near zero while pumping so the balance law
	// does not start from a far-wound arm.
	DefaultArmStiffness = 20.0
	DefaultArmDamping   = 1.0
)

// SwingUp pumps energy into the pendulum until it reaches the upright energy
// level, then hands over to Balance.
type SwingUp struct {
	Gain         float64
	MaxAccel     float64
	ArmStiffness float64
	ArmDamping   float64

	model   *physics.RotaryPendulum
	balance *Balance
	space   dynamo.Box
}

func NewSwingUp(model *physics.RotaryPendulum, space dynamo.Box) *SwingUp {
	return &SwingUp{
		Gain:         DefaultPumpGain,
		MaxAccel:     DefaultMaxPumpAccel,
		ArmStiffness: DefaultArmStiffness,
		ArmDamping:   DefaultArmDamping,
		model:        model,
		balance:      NewBalance(space),
		space:        space,
	}
}

func newFlipUp(env dynamo.Environment, freq float64, _ Options) (dynamo.Controller, error) {
	if err := requireFeedbackRate(FlipUp, freq); err != nil {
		return nil, err
	}
	return NewSwingUp(modelOf(env), env.ActionSpace()), nil
}

func (s *SwingUp) Action(obs dynamo.State) dynamo.Control {
	if s.balance.Engaged(obs) {
		return s.balance.Action(obs)
	}

	theta, thetaDot := obs[physics.Theta], obs[physics.ThetaDot]
	alpha, alphaDot := obs[physics.Alpha], obs[physics.AlphaDot]
	e := s.model.SwingEnergy(alpha, alphaDot)

	sign := 1.0
	if alphaDot*math.Cos(alpha) < 0 {
		sign = -1
	}
	accel := s.Gain * (0 - e) * -sign
	accel = math.Max(-s.MaxAccel, math.Min(s.MaxAccel, accel))
	accel -= s.ArmStiffness*theta + s.ArmDamping*thetaDot

	v := s.voltageFor(accel, thetaDot)
	u, _, _ := s.space.Clip(dynamo.Control{v})
	return u
}

// voltageFor inverts the motor model for an arm acceleration, treating the
// pendulum as a point mass at the arm tip.
func (s *SwingUp) voltageFor(accel, thetaDot float64) float64 {
	m := s.model
	jeq := m.Jr() + m.Mp*m.Lr*m.Lr
	return m.Rm/m.Km*jeq*accel + m.Km*thetaDot
}
