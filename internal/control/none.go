package control

import "github.com/san-kum/qubesim/internal/dynamo"

type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{
		dim: dim,
	}
}

func newNone(env dynamo.Environment, _ float64, _ Options) (dynamo.Controller, error) {
	return NewNone(env.ActionSpace().Dim()), nil
}

func (n *None) Action(obs dynamo.State) dynamo.Control {
	return make(dynamo.Control, n.dim)
}
