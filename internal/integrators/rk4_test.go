package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// oscillator is x'' = -x laid out as [x, v].
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int   { return 2 }
func (o *oscillator) ControlDim() int { return 0 }

func integrate(integ dynamo.Integrator, steps int, dt float64) dynamo.State {
	x := dynamo.State{1.0, 0.0}
	for i := 0; i < steps; i++ {
		x = integ.Step(&oscillator{}, x, nil, float64(i)*dt, dt)
	}
	return x
}

func TestRK4Accuracy(t *testing.T) {
	dt, steps := 0.01, 100
	x := integrate(NewRK4(), steps, dt)

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	if math.Abs(x[0]-expectedX) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", x[0], expectedX)
	}
	if math.Abs(x[1]-expectedV) > 1e-6 {
		t.Errorf("velocity error too large: got %.8f, expected %.8f", x[1], expectedV)
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	x := dynamo.State{1.0, 0.0}
	_ = NewRK4().Step(&oscillator{}, x, nil, 0, 0.1)
	if x[0] != 1.0 || x[1] != 0.0 {
		t.Errorf("input state mutated: %v", x)
	}
}

func TestSemiImplicitEulerBoundedEnergy(t *testing.T) {
	// A symplectic stepper keeps the oscillator energy bounded over many periods.
	x := integrate(NewSemiImplicitEuler(), 10000, 0.01)
	energy := 0.5 * (x[0]*x[0] + x[1]*x[1])
	if math.Abs(energy-0.5) > 0.01 {
		t.Errorf("energy drifted to %.5f, want ~0.5", energy)
	}
}

func TestSubsteppedMatchesFinerSteps(t *testing.T) {
	coarse := integrate(NewSubstepped(NewSemiImplicitEuler(), 4), 100, 0.01)
	fine := integrate(NewSemiImplicitEuler(), 400, 0.0025)
	for i := range coarse {
		if math.Abs(coarse[i]-fine[i]) > 1e-12 {
			t.Errorf("x[%d]: substepped %.12f, fine %.12f", i, coarse[i], fine[i])
		}
	}
}

func TestNewSubsteppedClampsCount(t *testing.T) {
	if s := NewSubstepped(NewRK4(), 0); s.N != 1 {
		t.Errorf("N = %d, want 1", s.N)
	}
}
