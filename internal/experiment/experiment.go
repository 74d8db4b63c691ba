package experiment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/driver"
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/metrics"
	"github.com/san-kum/qubesim/internal/physics"
	"github.com/san-kum/qubesim/internal/qube"
)

// ErrNoSteps is returned for runs without a step bound.
var ErrNoSteps = errors.New("experiment: steps must be positive")

// Config describes one headless run.
type Config struct {
	Name       string
	Env        qube.Options
	Controller control.Kind
	Steps      int
	Logger     *slog.Logger
}

type Experiment struct {
	cfg Config
}

func New(cfg Config) *Experiment {
	if cfg.Env.Frequency == 0 {
		cfg.Env.Frequency = qube.DefaultFrequency
	}
	return &Experiment{cfg: cfg}
}

func (e *Experiment) Config() Config { return e.cfg }

// Run drives the environment for the configured number of steps without a
// render surface and records every transition.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.cfg.Steps <= 0 {
		return nil, ErrNoSteps
	}
	opts := e.cfg.Env
	opts.Surface = nil

	rec := newRecorder(opts.Frequency, e.cfg.Steps)
	d, err := driver.Open(driver.Config{
		Frequency: opts.Frequency,
		MaxSteps:  e.cfg.Steps,
		Observers: []driver.Observer{rec},
		Logger:    e.cfg.Logger,
	},
		func() (dynamo.Environment, error) {
			env, err := qube.New(opts)
			if err != nil {
				return nil, err
			}
			rec.metrics = metrics.Standard(env.Model(), env.ActionSpace().Bounds[0].Max, qube.Reward)
			return env, nil
		},
		func(env dynamo.Environment, freq float64) (dynamo.Controller, error) {
			return control.New(e.cfg.Controller, env, freq, control.Options{Seed: opts.Seed})
		},
	)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	if err := d.Run(ctx); err != nil {
		return rec.result(), err
	}
	return rec.result(), nil
}

// recorder keeps the whole trace and run-wide metrics.
type recorder struct {
	freq    float64
	res     dynamo.Result
	metrics []dynamo.Metric
}

func newRecorder(freq float64, steps int) *recorder {
	return &recorder{
		freq: freq,
		res: dynamo.Result{
			States:   make([]dynamo.State, 0, steps),
			Controls: make([]dynamo.Control, 0, steps),
			Rewards:  make([]float64, 0, steps),
			Times:    make([]float64, 0, steps),
		},
	}
}

func (r *recorder) OnStep(step int, u dynamo.Control, tr dynamo.Transition) {
	r.res.States = append(r.res.States, tr.Observation.Clone())
	r.res.Controls = append(r.res.Controls, u.Clone())
	r.res.Rewards = append(r.res.Rewards, tr.Reward)
	r.res.Times = append(r.res.Times, float64(step+1)/r.freq)
	r.res.Steps++
	for _, m := range r.metrics {
		m.Observe(tr.Observation, u, tr.Info.Time)
	}
}

func (r *recorder) OnReset(step, episode int, obs dynamo.State) {
	r.res.Resets = append(r.res.Resets, step)
}

func (r *recorder) result() *dynamo.Result {
	res := r.res
	res.Metrics = make(map[string]float64, len(r.metrics))
	for _, m := range r.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return &res
}

// FinalAlpha is the wrapped pendulum angle at the end of res.
func FinalAlpha(res *dynamo.Result) float64 {
	if len(res.States) == 0 {
		return 0
	}
	return physics.WrapAngle(res.States[len(res.States)-1][physics.Alpha])
}
