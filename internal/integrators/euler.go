package integrators

import "github.com/san-kum/qubesim/internal/dynamo"

// SemiImplicitEuler steps mechanical systems whose state is laid out as
// [q..., qdot...]: velocities are updated first and the new velocities are
// used to advance the positions. This is the update rule of most rigid-body
// engines and is symplectic for separable Hamiltonians.
type SemiImplicitEuler struct{}

func NewSemiImplicitEuler() *SemiImplicitEuler {
	return &SemiImplicitEuler{}
}

func (e *SemiImplicitEuler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	n := len(x) / 2
	dx := dyn.Derive(x, u, t)
	next := make(dynamo.State, len(x))
	for i := 0; i < n; i++ {
		next[n+i] = x[n+i] + dt*dx[n+i]
		next[i] = x[i] + dt*next[n+i]
	}
	return next
}

// Substepped runs an inner integrator several times per outer step.
type Substepped struct {
	Inner dynamo.Integrator
	N     int
}

func NewSubstepped(inner dynamo.Integrator, n int) *Substepped {
	if n < 1 {
		n = 1
	}
	return &Substepped{Inner: inner, N: n}
}

func (s *Substepped) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t float64, dt float64) dynamo.State {
	h := dt / float64(s.N)
	for i := 0; i < s.N; i++ {
		x = s.Inner.Step(dyn, x, u, t+float64(i)*h, h)
	}
	return x
}
