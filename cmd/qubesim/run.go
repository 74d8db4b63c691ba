package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/qubesim/internal/config"
	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/driver"
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/logging"
	"github.com/san-kum/qubesim/internal/metrics"
	"github.com/san-kum/qubesim/internal/physics"
	"github.com/san-kum/qubesim/internal/qube"
	"github.com/san-kum/qubesim/internal/render"
)

// resolveConfig layers defaults, preset, config file, environment and
// explicitly set flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if err := config.ApplyPreset(cfg, preset); err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}
	if configFile != "" {
		if err := config.LoadInto(cfg, configFile); err != nil {
			return nil, err
		}
	}
	cfg.ApplyEnv()

	flags := cmd.Flags()
	if flags.Changed("pybullet") {
		cfg.Backend = qube.Primary.String()
		if pybullet {
			cfg.Backend = qube.Alternate.String()
		}
	}
	if flags.Changed("begin_down") {
		cfg.BeginDown = beginDown
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("frequency") {
		cfg.Frequency = frequency
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("render") {
		cfg.Render = renderName
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("realtime") {
		cfg.Realtime = realtime
	}
	if flags.Changed("reset-clock") {
		cfg.ResetClock = resetClock
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

func envOptions(cfg *config.Config) (qube.Options, error) {
	backend, err := qube.ParseBackend(cfg.Backend)
	if err != nil {
		return qube.Options{}, err
	}
	noise := cfg.ResetNoise
	if noise == 0 {
		noise = -1
	}
	return qube.Options{
		Backend:    backend,
		BeginDown:  cfg.BeginDown,
		Frequency:  cfg.Frequency,
		Seed:       cfg.Seed,
		MaxVoltage: cfg.MaxVoltage,
		ResetNoise: noise,
	}, nil
}

// openSurface creates the configured render surface. The TUI takes over the
// terminal, so logs move to a file in the data directory.
func openSurface(ctx context.Context, cfg *config.Config) (render.Surface, *slog.Logger, func(), error) {
	stderrLogger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	switch cfg.Render {
	case "tui":
		f, err := logging.OpenFile(cfg.DataDir, "qubesim.log")
		if err != nil {
			return nil, nil, nil, err
		}
		return render.NewTUI(ctx, cfg.FPS), logging.NewLogger(cfg.LogLevel, f), func() { f.Close() }, nil
	case "term":
		return render.NewTerm(os.Stdout, cfg.FPS), stderrLogger, func() {}, nil
	case "window":
		return render.NewWindow(960, 640, cfg.FPS), stderrLogger, func() {}, nil
	}
	return nil, stderrLogger, func() {}, nil
}

func runLoop(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := envOptions(cfg)
	if err != nil {
		return err
	}
	kind, err := control.ParseKind(cfg.Controller)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	surface, logger, closeLog, err := openSurface(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	defer slog.SetDefault(logging.NewLogger(cfg.LogLevel, os.Stderr))
	slog.SetDefault(logger)

	mode := dynamo.RenderNone
	if surface != nil {
		mode = dynamo.RenderHuman
		opts.Surface = surface
		go func() {
			select {
			case <-surface.Done():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	model := physics.NewRotaryPendulum()
	opts.Model = model
	dcfg := driver.Config{
		Frequency:  cfg.Frequency,
		RenderMode: mode,
		Observers: []driver.Observer{
			driver.NewMetricsObserver(logger, metrics.Standard(model, cfg.MaxVoltage, qube.Reward)...),
		},
		Logger: logger,
	}
	if cfg.ResetClock {
		dcfg.Schedule = driver.NewClockSchedule(driver.ResetPeriods*time.Second, nil)
	}
	if cfg.Realtime {
		dcfg.Pacer = driver.NewRatePacer(cfg.Frequency)
	}

	d, err := driver.Open(dcfg,
		func() (dynamo.Environment, error) { return qube.New(opts) },
		func(env dynamo.Environment, freq float64) (dynamo.Controller, error) {
			return control.New(kind, env, freq, control.Options{Seed: cfg.Seed})
		},
	)
	if err != nil {
		if surface != nil {
			surface.Close()
		}
		return err
	}
	defer d.Close()

	logger.Info("running",
		"backend", opts.Backend,
		"controller", kind,
		"begin_down", cfg.BeginDown,
		"frequency", cfg.Frequency,
		"render", cfg.Render,
		"seed", cfg.Seed)

	err = d.Run(ctx)
	logger.Info("stopped", "steps", d.Step(), "episodes", d.Episode())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
