package control

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/physics"
)

// stubEnv exposes just the action space.
type stubEnv struct {
	space dynamo.Box
	model *physics.RotaryPendulum
}

func newStubEnv() *stubEnv {
	return &stubEnv{space: dynamo.NewBox(1, -3, 3)}
}

func (s *stubEnv) Reset() (dynamo.State, error)                    { return dynamo.State{0, 0, 0, 0}, nil }
func (s *stubEnv) Step(u dynamo.Control) (dynamo.Transition, error) { return dynamo.Transition{}, nil }
func (s *stubEnv) Render(dynamo.RenderMode) error                  { return nil }
func (s *stubEnv) ActionSpace() dynamo.Box                         { return s.space }
func (s *stubEnv) Close() error                                    { return nil }

type modelEnv struct {
	*stubEnv
}

func (m modelEnv) Model() *physics.RotaryPendulum { return m.model }

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"none", NoOp},
		{"rand", Random},
		{"flip", FlipUp},
		{"HOLD", Hold},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if err != nil {
			t.Errorf("ParseKind(%q) failed: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if _, err := ParseKind("pid"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNames(t *testing.T) {
	got := Names()
	want := []string{"flip", "hold", "none", "rand"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNew_Frequency(t *testing.T) {
	tests := []struct {
		kind Kind
		freq float64
		want error
	}{
		{NoOp, 0, dynamo.ErrInvalidFrequency},
		{Random, -5, dynamo.ErrInvalidFrequency},
		{NoOp, 10, nil},
		{Random, 1, nil},
		{Hold, 49, ErrUnsupportedFrequency},
		{FlipUp, 20, ErrUnsupportedFrequency},
		{Hold, 50, nil},
		{FlipUp, 1000, nil},
	}
	for _, tt := range tests {
		_, err := New(tt.kind, newStubEnv(), tt.freq, Options{Seed: 1})
		if tt.want == nil && err != nil {
			t.Errorf("%s at %v Hz: unexpected error %v", tt.kind, tt.freq, err)
		}
		if tt.want != nil && !errors.Is(err, tt.want) {
			t.Errorf("%s at %v Hz: expected %v, got %v", tt.kind, tt.freq, tt.want, err)
		}
	}

	if _, err := New(Kind(99), newStubEnv(), 1000, Options{}); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
}

func TestNone(t *testing.T) {
	c, _ := New(NoOp, newStubEnv(), 1000, Options{})
	u := c.Action(dynamo.State{1, 2, 3, 4})
	if len(u) != 1 || u[0] != 0 {
		t.Errorf("None action = %v, want [0]", u)
	}
}

func TestUniform_StaysInSpace(t *testing.T) {
	env := newStubEnv()
	c, _ := New(Random, env, 1000, Options{Seed: 42})

	seen := map[bool]bool{}
	for i := 0; i < 1000; i++ {
		u := c.Action(dynamo.State{0, 0, 0, 0})
		if !env.space.Contains(u) {
			t.Fatalf("action %v outside %v", u, env.space)
		}
		seen[u[0] > 0] = true
	}
	if !seen[true] || !seen[false] {
		t.Error("expected samples on both sides of zero")
	}
}

func TestUniform_Seeded(t *testing.T) {
	a := NewUniform(dynamo.NewBox(1, -3, 3), 5)
	b := NewUniform(dynamo.NewBox(1, -3, 3), 5)
	for i := 0; i < 10; i++ {
		if ua, ub := a.Action(nil), b.Action(nil); ua[0] != ub[0] {
			t.Fatalf("sample %d differs: %v vs %v", i, ua, ub)
		}
	}
}

func TestLQR(t *testing.T) {
	l := NewLQR([][]float64{{1, 2}}, dynamo.State{1, 0})
	u := l.Action(dynamo.State{3, 1})
	// -(1*(3-1) + 2*1)
	if len(u) != 1 || u[0] != -4 {
		t.Errorf("LQR action = %v, want [-4]", u)
	}
}

func TestBalance(t *testing.T) {
	b := NewBalance(dynamo.NewBox(1, -3, 3))
	deg := math.Pi / 180

	tests := []struct {
		name string
		obs  dynamo.State
		want func(v float64) bool
	}{
		{"upright at rest", dynamo.State{0, 0, 0, 0}, func(v float64) bool { return v == 0 }},
		{"leaning forward pushes forward", dynamo.State{0, 5 * deg, 0, 0}, func(v float64) bool { return v > 0 }},
		{"leaning back pushes back", dynamo.State{0, -5 * deg, 0, 0}, func(v float64) bool { return v < 0 }},
		{"saturates", dynamo.State{0, 19 * deg, 0, 5}, func(v float64) bool { return v == 3 }},
		{"outside catch region", dynamo.State{0, 30 * deg, 0, 0}, func(v float64) bool { return v == 0 }},
		{"hanging", dynamo.State{0, math.Pi, 0, 0}, func(v float64) bool { return v == 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := b.Action(tt.obs)
			if !tt.want(u[0]) {
				t.Errorf("Action(%v) = %v", tt.obs, u)
			}
		})
	}
}

func TestSwingUp(t *testing.T) {
	env := newStubEnv()
	env.model = physics.NewRotaryPendulum()
	c, err := New(FlipUp, modelEnv{env}, 1000, Options{})
	if err != nil {
		t.Fatal(err)
	}
	s := c.(*SwingUp)

	t.Run("defers to balance near upright", func(t *testing.T) {
		obs := dynamo.State{0.1, 0.05, 0.2, -0.3}
		got, want := s.Action(obs), s.balance.Action(obs)
		if got[0] != want[0] {
			t.Errorf("got %v, want balance output %v", got, want)
		}
	})

	t.Run("kicks from rest at the bottom", func(t *testing.T) {
		u := s.Action(dynamo.State{0, math.Pi, 0, 0})
		if u[0] == 0 {
			t.Error("expected a nonzero kick at the bottom")
		}
	})

	t.Run("pumps against the swing", func(t *testing.T) {
		// Swinging through the bottom in opposite directions must push
		// the arm opposite ways.
		a := s.Action(dynamo.State{0, math.Pi, 0, 2})
		b := s.Action(dynamo.State{0, math.Pi, 0, -2})
		if a[0]*b[0] >= 0 {
			t.Errorf("expected opposite voltages, got %v and %v", a, b)
		}
	})

	t.Run("stays in the action space", func(t *testing.T) {
		for alpha := -math.Pi; alpha <= math.Pi; alpha += 0.1 {
			for _, rate := range []float64{-20, -1, 0, 1, 20} {
				u := s.Action(dynamo.State{0, alpha, rate, rate})
				if !env.space.Contains(u) {
					t.Fatalf("action %v outside space at alpha=%.2f rate=%v", u, alpha, rate)
				}
			}
		}
	})
}

func TestModelOf_FallsBack(t *testing.T) {
	if m := modelOf(newStubEnv()); m == nil || m.Lp != physics.NewRotaryPendulum().Lp {
		t.Errorf("expected default model, got %+v", m)
	}
}
