package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/qubesim/internal/config"
	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/qube"
)

var (
	dataDir string
	// Pendulum and loop
	pybullet   bool
	beginDown  bool
	controller string
	frequency  float64
	seed       uint64
	// Surface
	renderName string
	frameRate  int
	realtime   bool
	resetClock bool
	// Config sources
	configFile string
	preset     string
	logLevel   string
	// Headless runs
	duration float64
	outPath  string
	series   []string
	save     bool
	limit    int
)

// raylib must own the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	for _, envFile := range []string{".env", "../../.env"} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	rootCmd := newRootCmd()
	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	notifySignals(sigs)
	go func() {
		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("qubesim failed", "err", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qubesim",
		Short: "rotary pendulum simulation with classical controllers",
		Long: "Runs a simulated Qube-Servo rotary pendulum under one of several\n" +
			"controllers, rendering it live and resetting it every 3 s of simulated time.\n\n" +
			"Two-letter shorthands -pb (--pybullet) and -bd (--begin_down) are accepted.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runLoop,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.BoolVar(&pybullet, "pybullet", false, "use the alternate physics backend (-pb)")
	pf.BoolVar(&beginDown, "begin_down", false, "start with the pendulum hanging down (-bd)")
	pf.StringVarP(&controller, "controller", "c", config.DefaultController, fmt.Sprintf("controller: %v", control.Names()))
	pf.Float64VarP(&frequency, "frequency", "f", qube.DefaultFrequency, "step rate in Hz")
	pf.Uint64Var(&seed, "seed", 0, "random seed (0 = time based)")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "use preset configuration")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level: info, debug, trace")

	rootCmd.Flags().StringVar(&renderName, "render", config.DefaultRender, fmt.Sprintf("render surface: %v", config.RenderSurfaces))
	rootCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "frame rate")
	rootCmd.Flags().BoolVar(&realtime, "realtime", true, "pace the loop at the step rate")
	rootCmd.Flags().BoolVar(&resetClock, "reset-clock", false, "reset on wall-clock time instead of step count")

	traceCmd := &cobra.Command{
		Use:   "trace",
		Short: "run headless for a fixed time and store the trace",
		Args:  cobra.NoArgs,
		RunE:  runTrace,
	}
	traceCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored traces",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored trace in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "render a stored trace to PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output path (default <data>/<run>/trace.png)")
	exportCmd.Flags().StringSliceVar(&series, "series", []string{"theta", "alpha"}, "series to plot")

	sweepCmd := &cobra.Command{
		Use:   "sweep [controllers...]",
		Short: "run every controller from both poses concurrently",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "simulated seconds per run")
	sweepCmd.Flags().BoolVar(&save, "save", false, "store every trace")
	sweepCmd.Flags().IntVar(&limit, "jobs", 0, "concurrent runs (0 = GOMAXPROCS)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Printf("  %-10s %s\n", name, config.Presets[name].Description)
			}
		},
	}

	rootCmd.AddCommand(traceCmd, runsCmd, plotCmd, exportCmd, sweepCmd, presetsCmd)
	return rootCmd
}
