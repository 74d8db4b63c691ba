package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// State layout of the rotary pendulum.
const (
	Theta    = 0 // arm angle
	Alpha    = 1 // pendulum angle, 0 upright
	ThetaDot = 2
	AlphaDot = 3
)

// RotaryPendulum is a Furuta pendulum driven by a DC motor on the arm axis.
// Default parameters match a Quanser Qube-Servo 2.
type RotaryPendulum struct {
	Rm float64 // motor resistance (ohm)
	Km float64 // torque / back-emf constant

	Mr float64 // arm mass (kg)
	Lr float64 // arm length (m)
	Dr float64 // arm viscous damping

	Mp float64 // pendulum mass (kg)
	Lp float64 // pendulum length (m)
	Dp float64 // pendulum viscous damping

	Gravity float64
}

func NewRotaryPendulum() *RotaryPendulum {
	return &RotaryPendulum{
		Rm:      8.4,
		Km:      0.042,
		Mr:      0.095,
		Lr:      0.085,
		Dr:      0.0005,
		Mp:      0.024,
		Lp:      0.129,
		Dp:      0.00005,
		Gravity: 9.81,
	}
}

func (p *RotaryPendulum) StateDim() int   { return 4 }
func (p *RotaryPendulum) ControlDim() int { return 1 }

// Jr is the arm inertia about its pivot.
func (p *RotaryPendulum) Jr() float64 { return p.Mr * p.Lr * p.Lr / 12 }

// Jp is the pendulum inertia about its center of mass.
func (p *RotaryPendulum) Jp() float64 { return p.Mp * p.Lp * p.Lp / 12 }

// Torque returns the motor torque for voltage v at arm rate thetaDot.
func (p *RotaryPendulum) Torque(v, thetaDot float64) float64 {
	return p.Km * (v - p.Km*thetaDot) / p.Rm
}

func (p *RotaryPendulum) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	alpha := x[Alpha]
	td, ad := x[ThetaDot], x[AlphaDot]

	v := 0.0
	if len(u) > 0 {
		v = u[0]
	}
	tau := p.Torque(v, td)

	sa, ca := math.Sincos(alpha)
	mp, lp, lr := p.Mp, p.Lp, p.Lr

	// Mass matrix [[a b] [b c]].
	a := p.Jr() + mp*lr*lr + 0.25*mp*lp*lp*sa*sa
	b := 0.5 * mp * lp * lr * ca
	c := p.Jp() + 0.25*mp*lp*lp

	r1 := tau - p.Dr*td - 0.5*mp*lp*lp*sa*ca*td*ad + 0.5*mp*lp*lr*sa*ad*ad
	r2 := -p.Dp*ad + 0.25*mp*lp*lp*sa*ca*td*td + 0.5*mp*lp*p.Gravity*sa

	det := a*c - b*b
	tdd := (c*r1 - b*r2) / det
	add := (a*r2 - b*r1) / det

	return dynamo.State{td, ad, tdd, add}
}

// Energy is the total mechanical energy with the arm plane as reference.
func (p *RotaryPendulum) Energy(x dynamo.State) float64 {
	sa, ca := math.Sincos(x[Alpha])
	td, ad := x[ThetaDot], x[AlphaDot]
	mp, lp, lr := p.Mp, p.Lp, p.Lr

	a := p.Jr() + mp*lr*lr + 0.25*mp*lp*lp*sa*sa
	b := 0.5 * mp * lp * lr * ca
	c := p.Jp() + 0.25*mp*lp*lp

	ke := 0.5 * (a*td*td + 2*b*td*ad + c*ad*ad)
	pe := 0.5 * mp * p.Gravity * lp * ca
	return ke + pe
}

// PendulumEnergy is the pendulum-only energy, zero when resting upright and
// -Mp*g*Lp when resting at the bottom.
func (p *RotaryPendulum) PendulumEnergy(alpha, alphaDot float64) float64 {
	c := p.Jp() + 0.25*p.Mp*p.Lp*p.Lp
	return 0.5*c*alphaDot*alphaDot + 0.5*p.Mp*p.Gravity*p.Lp*(math.Cos(alpha)-1)
}

// SwingEnergy is the pendulum energy with the arm free to react, zero when
// resting upright. The arm carries away part of any pendulum rate, so the
// kinetic term uses the inertia the pendulum sees through the coupling.
func (p *RotaryPendulum) SwingEnergy(alpha, alphaDot float64) float64 {
	sa, ca := math.Sincos(alpha)
	a := p.Jr() + p.Mp*p.Lr*p.Lr + 0.25*p.Mp*p.Lp*p.Lp*sa*sa
	b := 0.5 * p.Mp * p.Lp * p.Lr * ca
	c := p.Jp() + 0.25*p.Mp*p.Lp*p.Lp
	return 0.5*(c-b*b/a)*alphaDot*alphaDot + 0.5*p.Mp*p.Gravity*p.Lp*(ca-1)
}

// WrapAngle maps an angle into (-pi, pi].
func WrapAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a <= 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}

func (p *RotaryPendulum) GetParams() map[string]float64 {
	return map[string]float64{
		"rm":      p.Rm,
		"km":      p.Km,
		"mr":      p.Mr,
		"lr":      p.Lr,
		"dr":      p.Dr,
		"mp":      p.Mp,
		"lp":      p.Lp,
		"dp":      p.Dp,
		"gravity": p.Gravity,
	}
}

func (p *RotaryPendulum) SetParam(name string, value float64) error {
	if value < 0 {
		return fmt.Errorf("%w: %s=%v", dynamo.ErrParameterBounds, name, value)
	}
	positive := func(dst *float64) error {
		if value == 0 {
			return fmt.Errorf("%w: %s must be positive", dynamo.ErrParameterBounds, name)
		}
		*dst = value
		return nil
	}
	switch name {
	case "rm":
		return positive(&p.Rm)
	case "km":
		p.Km = value
	case "mr":
		return positive(&p.Mr)
	case "lr":
		return positive(&p.Lr)
	case "dr":
		p.Dr = value
	case "mp":
		return positive(&p.Mp)
	case "lp":
		return positive(&p.Lp)
	case "dp":
		p.Dp = value
	case "gravity":
		p.Gravity = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
