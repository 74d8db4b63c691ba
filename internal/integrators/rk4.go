package integrators

import "github.com/san-kum/qubesim/internal/dynamo"

// RK4 is the classic fourth-order Runge-Kutta stepper. Stage buffers are
// reused between calls, so an RK4 value must not be shared across goroutines.
type RK4 struct {
	k      [4]dynamo.State
	stage  dynamo.State
	weight [4]float64
}

func NewRK4() *RK4 {
	return &RK4{weight: [4]float64{1, 2, 2, 1}}
}

func (r *RK4) resize(n int) {
	if len(r.stage) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.stage = make(dynamo.State, n)
}

// advance fills r.stage with x + h*k.
func (r *RK4) advance(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.stage[i] = x[i] + h*k[i]
	}
	return r.stage
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.resize(len(x))
	half := 0.5 * dt

	copy(r.k[0], dyn.Derive(x, u, t))
	copy(r.k[1], dyn.Derive(r.advance(x, r.k[0], half), u, t+half))
	copy(r.k[2], dyn.Derive(r.advance(x, r.k[1], half), u, t+half))
	copy(r.k[3], dyn.Derive(r.advance(x, r.k[2], dt), u, t+dt))

	next := make(dynamo.State, len(x))
	for i := range x {
		sum := 0.0
		for s, w := range r.weight {
			sum += w * r.k[s][i]
		}
		next[i] = x[i] + dt*sum/6.0
	}
	return next
}
