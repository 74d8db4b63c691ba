package qube

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
	"github.com/san-kum/qubesim/internal/render"
)

const (
	DefaultFrequency  = 1000.0
	DefaultMaxVoltage = 3.0
	DefaultResetNoise = 0.05

	// ArmLimit is the arm angle past which an episode reports done.
	ArmLimit = math.Pi / 2
)

// ErrNotReset is returned when Step is called before the first Reset.
var ErrNotReset = errors.New("qube: step called before reset")

type Options struct {
	Backend   Backend
	BeginDown bool
	Frequency float64
	// Seed for the reset noise; 0 picks a time-based seed.
	Seed       uint64
	MaxVoltage float64
	// ResetNoise is the half-width of the uniform perturbation applied to
	// alpha on reset. Negative disables it.
	ResetNoise float64
	Model      *physics.RotaryPendulum
	Surface    render.Surface
}

// Env is the rotary pendulum environment.
type Env struct {
	opts    Options
	dyn     *physics.RotaryPendulum
	integ   dynamo.Integrator
	dt      float64
	space   dynamo.Box
	noise   distuv.Uniform
	surface render.Surface

	state   dynamo.State
	t       float64
	steps   int
	episode int
	last    dynamo.Transition
}

func New(opts Options) (*Env, error) {
	if opts.Frequency == 0 {
		opts.Frequency = DefaultFrequency
	}
	if err := dynamo.ValidateFrequency(opts.Frequency); err != nil {
		return nil, err
	}
	if opts.MaxVoltage <= 0 {
		opts.MaxVoltage = DefaultMaxVoltage
	}
	if opts.ResetNoise == 0 {
		opts.ResetNoise = DefaultResetNoise
	}
	if opts.ResetNoise < 0 {
		opts.ResetNoise = 0
	}
	if opts.Model == nil {
		opts.Model = physics.NewRotaryPendulum()
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}

	integ, err := engineFor(opts.Backend)
	if err != nil {
		return nil, err
	}

	return &Env{
		opts:  opts,
		dyn:   opts.Model,
		integ: integ,
		dt:    1.0 / opts.Frequency,
		space: dynamo.NewBox(1, -opts.MaxVoltage, opts.MaxVoltage),
		noise: distuv.Uniform{
			Min: -opts.ResetNoise,
			Max: opts.ResetNoise,
			Src: rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15),
		},
		surface: opts.Surface,
	}, nil
}

func (e *Env) Model() *physics.RotaryPendulum { return e.dyn }
func (e *Env) Backend() Backend               { return e.opts.Backend }
func (e *Env) Frequency() float64             { return e.opts.Frequency }
func (e *Env) ActionSpace() dynamo.Box        { return e.space }

func (e *Env) Reset() (dynamo.State, error) {
	alpha := 0.0
	if e.opts.BeginDown {
		alpha = math.Pi
	}
	alpha += e.noise.Rand()

	e.state = dynamo.State{0, physics.WrapAngle(alpha), 0, 0}
	e.t = 0
	e.steps = 0
	e.episode++
	e.last = dynamo.Transition{Observation: e.state.Clone()}
	return e.state.Clone(), nil
}

func (e *Env) Step(u dynamo.Control) (dynamo.Transition, error) {
	if e.state == nil {
		return dynamo.Transition{}, ErrNotReset
	}
	if !dynamo.State(u).IsValid() {
		return dynamo.Transition{}, fmt.Errorf("%w: action %v", dynamo.ErrInvalidState, u)
	}
	applied, clipped, err := e.space.Clip(u)
	if err != nil {
		return dynamo.Transition{}, err
	}

	next := e.integ.Step(e.dyn, e.state, applied, e.t, e.dt)
	e.t += e.dt
	e.steps++
	if !next.IsValid() {
		return dynamo.Transition{}, &dynamo.SimulationError{
			Step:    e.steps,
			Time:    e.t,
			State:   e.state.Clone(),
			Wrapped: dynamo.ErrUnstable,
		}
	}
	next[physics.Alpha] = physics.WrapAngle(next[physics.Alpha])
	e.state = next

	obs := e.state.Clone()
	e.last = dynamo.Transition{
		Observation: obs,
		Reward:      Reward(obs),
		Done:        math.Abs(obs[physics.Theta]) > ArmLimit,
		Info: dynamo.Info{
			Time:    e.t,
			Step:    e.steps,
			Voltage: applied[0],
			Clipped: clipped,
		},
	}
	return e.last, nil
}

// Reward favours an upright pendulum over a centred arm.
func Reward(obs dynamo.State) float64 {
	return 1 - (0.8*math.Abs(obs[physics.Alpha])+0.2*math.Abs(obs[physics.Theta]))/math.Pi
}

func (e *Env) Render(mode dynamo.RenderMode) error {
	switch mode {
	case dynamo.RenderNone:
		return nil
	case dynamo.RenderHuman:
		if e.surface == nil {
			return dynamo.ErrNoSurface
		}
		return e.surface.Draw(e.frame())
	}
	return fmt.Errorf("qube: unsupported render mode %q", mode)
}

func (e *Env) frame() render.Frame {
	f := render.Frame{
		Time:           e.t,
		Step:           e.steps,
		Episode:        e.episode,
		Backend:        e.opts.Backend.String(),
		Voltage:        e.last.Info.Voltage,
		Reward:         e.last.Reward,
		ArmLength:      e.dyn.Lr,
		PendulumLength: e.dyn.Lp,
	}
	if len(e.state) == 4 {
		f.Theta = e.state[physics.Theta]
		f.Alpha = e.state[physics.Alpha]
		f.ThetaDot = e.state[physics.ThetaDot]
		f.AlphaDot = e.state[physics.AlphaDot]
	} else if e.opts.BeginDown {
		f.Alpha = math.Pi
	}
	return f
}

// Close releases the attached surface.
func (e *Env) Close() error {
	if e.surface == nil {
		return nil
	}
	err := e.surface.Close()
	e.surface = nil
	return err
}
