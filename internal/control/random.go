package control

import (
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// Uniform samples every action independently and uniformly from a box.
type Uniform struct {
	dists []distuv.Uniform
}

func NewUniform(space dynamo.Box, seed uint64) *Uniform {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed>>1|1)
	u := &Uniform{dists: make([]distuv.Uniform, space.Dim())}
	for i, iv := range space.Bounds {
		u.dists[i] = distuv.Uniform{Min: iv.Min, Max: iv.Max, Src: src}
	}
	return u
}

func newRandom(env dynamo.Environment, _ float64, opts Options) (dynamo.Controller, error) {
	return NewUniform(env.ActionSpace(), opts.Seed), nil
}

func (u *Uniform) Action(obs dynamo.State) dynamo.Control {
	out := make(dynamo.Control, len(u.dists))
	for i := range u.dists {
		out[i] = u.dists[i].Rand()
	}
	return out
}
