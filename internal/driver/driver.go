package driver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/logging"
)

// EnvFactory creates the environment the loop owns.
type EnvFactory func() (dynamo.Environment, error)

// ControllerFactory binds a controller to env at the loop frequency.
type ControllerFactory func(env dynamo.Environment, freq float64) (dynamo.Controller, error)

type Config struct {
	Frequency  float64
	RenderMode dynamo.RenderMode
	// Schedule decides when episodes are reset; nil uses StepSchedule.
	Schedule Schedule
	// Pacer blocks between iterations; nil runs as fast as possible.
	Pacer Pacer
	// MaxSteps bounds Run; 0 runs until the context is cancelled.
	MaxSteps  int
	Observers []Observer
	Logger    *slog.Logger
}

// StepError reports the iteration at which the loop failed.
type StepError struct {
	Step int
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("driver: step %d: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

type Driver struct {
	cfg  Config
	env  dynamo.Environment
	ctrl dynamo.Controller
	log  *slog.Logger

	obs     dynamo.State
	step    int
	episode int
}

// Open creates the environment, puts it into the configured render mode,
// binds the controller and takes the first observation, in that order.
func Open(cfg Config, newEnv EnvFactory, newCtrl ControllerFactory) (*Driver, error) {
	if err := dynamo.ValidateFrequency(cfg.Frequency); err != nil {
		return nil, err
	}
	if cfg.RenderMode == "" {
		cfg.RenderMode = dynamo.RenderNone
	}
	if cfg.Schedule == nil {
		cfg.Schedule = StepSchedule{Frequency: cfg.Frequency}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	env, err := newEnv()
	if err != nil {
		return nil, fmt.Errorf("create environment: %w", err)
	}
	if err := env.Render(cfg.RenderMode); err != nil {
		env.Close()
		return nil, fmt.Errorf("render %s: %w", cfg.RenderMode, err)
	}
	ctrl, err := newCtrl(env, cfg.Frequency)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("create controller: %w", err)
	}
	obs, err := env.Reset()
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("initial reset: %w", err)
	}

	d := &Driver{
		cfg:     cfg,
		env:     env,
		ctrl:    ctrl,
		log:     cfg.Logger,
		obs:     obs,
		episode: 1,
	}
	d.log.Debug("driver ready", "frequency", cfg.Frequency, "render", cfg.RenderMode, "schedule", cfg.Schedule)
	return d, nil
}

// Run iterates until ctx is cancelled, MaxSteps is reached or a step fails.
func (d *Driver) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.cfg.MaxSteps > 0 && d.step >= d.cfg.MaxSteps {
			return nil
		}
		if err := d.iterate(); err != nil {
			return &StepError{Step: d.step, Err: err}
		}
		d.step++

		if d.cfg.Pacer != nil {
			if err := d.cfg.Pacer.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				return err
			}
		}
	}
}

func (d *Driver) iterate() error {
	u := d.ctrl.Action(d.obs)
	tr, err := d.env.Step(u)
	if err != nil {
		return err
	}
	d.obs = tr.Observation
	if d.log.Enabled(context.Background(), logging.LevelTrace) {
		d.log.Log(context.Background(), logging.LevelTrace, "step",
			"step", d.step, "action", []float64(u), "obs", []float64(tr.Observation), "reward", tr.Reward)
	}
	for _, o := range d.cfg.Observers {
		o.OnStep(d.step, u, tr)
	}

	if err := d.env.Render(d.cfg.RenderMode); err != nil {
		return err
	}

	if d.cfg.Schedule.Due(d.step) {
		obs, err := d.env.Reset()
		if err != nil {
			return fmt.Errorf("reset: %w", err)
		}
		d.obs = obs
		d.episode++
		d.log.Debug("episode reset", "step", d.step, "episode", d.episode)
		for _, o := range d.cfg.Observers {
			o.OnReset(d.step, d.episode, obs)
		}
	}
	return nil
}

// Step is the number of completed iterations.
func (d *Driver) Step() int { return d.step }

// Episode counts resets including the initial one.
func (d *Driver) Episode() int { return d.episode }

func (d *Driver) Observation() dynamo.State { return d.obs.Clone() }

func (d *Driver) Env() dynamo.Environment { return d.env }

func (d *Driver) Close() error {
	return d.env.Close()
}
