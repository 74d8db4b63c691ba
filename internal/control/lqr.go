package control

import (
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// LQR applies u = -K (x - target) with a precomputed gain matrix.
type LQR struct {
	K      *mat.Dense
	Target dynamo.State
}

func NewLQR(k [][]float64, target dynamo.State) *LQR {
	rows, cols := len(k), 0
	if rows > 0 {
		cols = len(k[0])
	}
	flat := make([]float64, 0, rows*cols)
	for _, row := range k {
		flat = append(flat, row...)
	}
	return &LQR{K: mat.NewDense(rows, cols, flat), Target: target}
}

func (l *LQR) Action(obs dynamo.State) dynamo.Control {
	rows, cols := l.K.Dims()
	dx := mat.NewVecDense(cols, nil)
	for j := 0; j < cols && j < len(obs); j++ {
		target := 0.0
		if j < len(l.Target) {
			target = l.Target[j]
		}
		dx.SetVec(j, obs[j]-target)
	}

	var u mat.VecDense
	u.MulVec(l.K, dx)
	u.ScaleVec(-1, &u)

	out := make(dynamo.Control, rows)
	for i := range out {
		out[i] = u.AtVec(i)
	}
	return out
}

// Gains around the upright equilibrium, state [theta alpha theta_dot alpha_dot].
var rotaryGains = [][]float64{{-2.0, -35.0, -1.5, -3.0}}

func NewRotaryLQR() *LQR {
	return NewLQR(rotaryGains, dynamo.State{0, 0, 0, 0})
}
