package driver_test

import (
	"errors"

	"github.com/san-kum/qubesim/internal/dynamo"
)

var errBoom = errors.New("boom")

// countingEnv returns observations whose first element is a serial number,
// so controllers can tell which observation they were handed.
type countingEnv struct {
	calls     *[]string
	serial    float64
	resets    int
	steps     int
	renders   int
	closed    bool
	failAt    int
	renderErr error
}

func newCountingEnv(calls *[]string) *countingEnv {
	return &countingEnv{calls: calls, failAt: -1}
}

func (e *countingEnv) record(s string) {
	if e.calls != nil {
		*e.calls = append(*e.calls, s)
	}
}

func (e *countingEnv) next() dynamo.State {
	e.serial++
	return dynamo.State{e.serial, 0, 0, 0}
}

func (e *countingEnv) Reset() (dynamo.State, error) {
	e.record("reset")
	e.resets++
	return e.next(), nil
}

func (e *countingEnv) Step(u dynamo.Control) (dynamo.Transition, error) {
	e.record("step")
	if e.steps == e.failAt {
		return dynamo.Transition{}, errBoom
	}
	e.steps++
	return dynamo.Transition{Observation: e.next(), Info: dynamo.Info{Step: e.steps}}, nil
}

func (e *countingEnv) Render(mode dynamo.RenderMode) error {
	e.record("render:" + string(mode))
	e.renders++
	return e.renderErr
}

func (e *countingEnv) ActionSpace() dynamo.Box { return dynamo.NewBox(1, -3, 3) }

func (e *countingEnv) Close() error {
	e.closed = true
	return nil
}

// echoController remembers every observation it was asked about.
type echoController struct {
	seen []float64
}

func (c *echoController) Action(obs dynamo.State) dynamo.Control {
	c.seen = append(c.seen, obs[0])
	return dynamo.Control{0}
}

type resetRecorder struct {
	steps    []int
	episodes []int
	stepped  int
}

func (r *resetRecorder) OnStep(step int, u dynamo.Control, tr dynamo.Transition) { r.stepped++ }

func (r *resetRecorder) OnReset(step, episode int, obs dynamo.State) {
	r.steps = append(r.steps, step)
	r.episodes = append(r.episodes, episode)
}
