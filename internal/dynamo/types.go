package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

func (u Control) Clone() Control {
	c := make(Control, len(u))
	copy(c, u)
	return c
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Controller maps the most recent observation to the next action.
type Controller interface {
	Action(obs State) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

// RenderMode selects where an environment draws its current frame.
type RenderMode string

const (
	RenderHuman RenderMode = "human"
	RenderNone  RenderMode = "none"
)

func ParseRenderMode(s string) (RenderMode, error) {
	switch RenderMode(s) {
	case RenderHuman, RenderNone:
		return RenderMode(s), nil
	}
	return "", fmt.Errorf("unknown render mode: %s", s)
}

// Info carries per-step diagnostics that the loop passes through untouched.
type Info struct {
	Time    float64
	Step    int
	Voltage float64
	Clipped bool
}

// Transition is the result of advancing an environment by one step.
type Transition struct {
	Observation State
	Reward      float64
	Done        bool
	Info        Info
}

// Environment is the simulated system driven by the control loop.
type Environment interface {
	// Reset starts a fresh episode and returns its initial observation.
	Reset() (State, error)
	// Step applies u for one period and returns the resulting transition.
	Step(u Control) (Transition, error)
	// Render draws the current frame in the given mode.
	Render(mode RenderMode) error
	// ActionSpace describes the valid actions.
	ActionSpace() Box
	Close() error
}

// Result is the recorded trace of a bounded run. Times are global, so they
// keep increasing across episode resets listed in Resets.
type Result struct {
	States   []State
	Controls []Control
	Rewards  []float64
	Times    []float64
	Resets   []int
	Metrics  map[string]float64
	Steps    int
}
