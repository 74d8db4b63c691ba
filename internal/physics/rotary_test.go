package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/integrators"
)

func conservative() *RotaryPendulum {
	p := NewRotaryPendulum()
	p.Km, p.Dr, p.Dp = 0, 0, 0
	return p
}

func TestRotaryPendulum_Dimensions(t *testing.T) {
	p := NewRotaryPendulum()
	if p.StateDim() != 4 || p.ControlDim() != 1 {
		t.Errorf("dims = %d/%d, want 4/1", p.StateDim(), p.ControlDim())
	}
}

func TestRotaryPendulum_Equilibria(t *testing.T) {
	p := NewRotaryPendulum()

	for _, alpha := range []float64{0, math.Pi} {
		dx := p.Derive(dynamo.State{0, alpha, 0, 0}, dynamo.Control{0}, 0)
		for i, v := range dx {
			if math.Abs(v) > 1e-12 {
				t.Errorf("alpha=%.2f: dx[%d] = %g, want 0", alpha, i, v)
			}
		}
	}
}

func TestRotaryPendulum_UprightIsUnstable(t *testing.T) {
	p := NewRotaryPendulum()
	dx := p.Derive(dynamo.State{0, 0.05, 0, 0}, dynamo.Control{0}, 0)
	if dx[AlphaDot] <= 0 {
		t.Errorf("pendulum tipped to +alpha should accelerate away from upright, got %g", dx[AlphaDot])
	}

	dx = p.Derive(dynamo.State{0, math.Pi - 0.05, 0, 0}, dynamo.Control{0}, 0)
	if dx[AlphaDot] <= 0 {
		t.Errorf("pendulum below pi should fall back towards pi, got %g", dx[AlphaDot])
	}
}

func TestRotaryPendulum_VoltageDrivesArm(t *testing.T) {
	p := NewRotaryPendulum()
	dx := p.Derive(dynamo.State{0, 0, 0, 0}, dynamo.Control{3}, 0)
	if dx[ThetaDot] <= 0 {
		t.Errorf("positive voltage should accelerate the arm forward, got %g", dx[ThetaDot])
	}
}

func TestRotaryPendulum_EnergyConservation(t *testing.T) {
	p := conservative()
	integ := integrators.NewRK4()

	x := dynamo.State{0, 2.5, 3.0, -1.0}
	e0 := p.Energy(x)

	dt := 0.001
	for i := 0; i < 2000; i++ {
		x = integ.Step(p, x, dynamo.Control{0}, float64(i)*dt, dt)
	}

	drift := math.Abs(p.Energy(x)-e0) / math.Abs(e0)
	if drift > 1e-4 {
		t.Errorf("relative energy drift %.2e exceeds 1e-4", drift)
	}
}

func TestRotaryPendulum_DampingDissipates(t *testing.T) {
	p := NewRotaryPendulum()
	integ := integrators.NewRK4()

	x := dynamo.State{0, math.Pi - 1.0, 0, 0}
	e0 := p.Energy(x)
	dt := 0.001
	for i := 0; i < 3000; i++ {
		x = integ.Step(p, x, dynamo.Control{0}, float64(i)*dt, dt)
	}
	if p.Energy(x) >= e0 {
		t.Errorf("energy should decrease with damping: %.6f -> %.6f", e0, p.Energy(x))
	}
}

func TestPendulumEnergyReferences(t *testing.T) {
	p := NewRotaryPendulum()
	if e := p.PendulumEnergy(0, 0); math.Abs(e) > 1e-15 {
		t.Errorf("upright energy = %g, want 0", e)
	}
	want := -p.Mp * p.Gravity * p.Lp
	if e := p.PendulumEnergy(math.Pi, 0); math.Abs(e-want) > 1e-12 {
		t.Errorf("bottom energy = %g, want %g", e, want)
	}
}

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{math.Pi, math.Pi},
		{-math.Pi, math.Pi},
		{1.5 * math.Pi, -0.5 * math.Pi},
		{-1.5 * math.Pi, 0.5 * math.Pi},
		{4*math.Pi + 0.25, 0.25},
	}

	for _, tt := range tests {
		if got := WrapAngle(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRotaryPendulum_SetParam(t *testing.T) {
	p := NewRotaryPendulum()

	if err := p.SetParam("mp", 0.05); err != nil {
		t.Fatalf("SetParam failed: %v", err)
	}
	if p.GetParams()["mp"] != 0.05 {
		t.Error("SetParam did not update mp")
	}
	if err := p.SetParam("lp", 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("zero length should be rejected, got %v", err)
	}
	if err := p.SetParam("dr", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("negative damping should be rejected, got %v", err)
	}
	if err := p.SetParam("bogus", 1); err == nil {
		t.Error("expected error for unknown param")
	}
}

func TestSwingEnergy(t *testing.T) {
	p := NewRotaryPendulum()
	if e := p.SwingEnergy(0, 0); math.Abs(e) > 1e-15 {
		t.Errorf("upright energy = %g, want 0", e)
	}
	if got, want := p.SwingEnergy(math.Pi, 0), p.PendulumEnergy(math.Pi, 0); math.Abs(got-want) > 1e-12 {
		t.Errorf("at rest both energies should be potential only: %g vs %g", got, want)
	}
	// No coupling with the pendulum horizontal.
	if got, want := p.SwingEnergy(math.Pi/2, 3), p.PendulumEnergy(math.Pi/2, 3); math.Abs(got-want) > 1e-12 {
		t.Errorf("horizontal: got %g, want %g", got, want)
	}
	// Hanging, the arm absorbs part of the swing.
	if p.SwingEnergy(math.Pi, 10) >= p.PendulumEnergy(math.Pi, 10) {
		t.Error("coupled swing energy should be below the pendulum-only energy")
	}
}
