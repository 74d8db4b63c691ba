package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/qubesim/internal/config"
	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/experiment"
	"github.com/san-kum/qubesim/internal/logging"
	"github.com/san-kum/qubesim/internal/physics"
	"github.com/san-kum/qubesim/internal/storage"
)

func runMetadata(cfg *config.Config, name string, e experiment.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Name:       name,
		Backend:    e.Env.Backend.String(),
		BeginDown:  e.Env.BeginDown,
		Controller: e.Controller.String(),
		Frequency:  e.Env.Frequency,
		Seed:       cfg.Seed,
	}
}

func runTrace(cmd *cobra.Command, args []string) error {
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
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	ecfg := experiment.Config{
		Name:       kind.String(),
		Env:        opts,
		Controller: kind,
		Steps:      cfg.Steps(),
		Logger:     logger,
	}

	fmt.Printf("running %s for %.1fs at %g Hz...\n", kind, cfg.Duration, cfg.Frequency)
	start := time.Now()
	res, err := experiment.New(ecfg).Run(cmd.Context())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(cfg.DataDir)
	runID, err := st.Save(runMetadata(cfg, ecfg.Name, ecfg), res)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", res.Steps)
	fmt.Printf("resets: %d\n", len(res.Resets))
	fmt.Printf("final alpha: %.1f deg\n", experiment.FinalAlpha(res)*180/math.Pi)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(res.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, res.Metrics[name])
	}
	return nil
}

// openStore opens the run store in the resolved data directory, so runs
// saved under a config file or QUBESIM_DATA_DIR are found again.
func openStore(cmd *cobra.Command) (*storage.Store, error) {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func shortID(id string) string {
	return id[:min(8, len(id))]
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tCTRL\tBACKEND\tSTART\tFREQ\tSTEPS\tRESETS")
	for _, run := range runs {
		start := "up"
		if run.BeginDown {
			start = "down"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%gHz\t%d\t%d\n",
			shortID(run.ID),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Controller,
			run.Backend,
			start,
			run.Frequency,
			run.Steps,
			len(run.Resets),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	res, err := st.LoadTrace(meta.ID)
	if err != nil {
		return err
	}
	if len(res.States) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("controller: %s (%s)\n", meta.Controller, meta.Backend)
	fmt.Printf("samples: %d\n\n", len(res.States))

	plots := []struct {
		series  string
		caption string
		scale   float64
	}{
		{"alpha", "alpha (deg)", 180 / math.Pi},
		{"theta", "theta (deg)", 180 / math.Pi},
		{"voltage", "voltage (V)", 1},
	}
	for _, p := range plots {
		data, err := storage.Column(res, p.series)
		if err != nil {
			return err
		}
		for i := range data {
			if p.series == "alpha" {
				data[i] = physics.WrapAngle(data[i])
			}
			data[i] *= p.scale
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		))
		fmt.Println()
	}
	return nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	runID, err := st.Resolve(args[0])
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = filepath.Join(st.Dir(), runID, "trace.png")
	}
	if err := st.ExportPNG(runID, path, series...); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := envOptions(cfg)
	if err != nil {
		return err
	}
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
	slog.SetDefault(logger)

	names := args
	if len(names) == 0 {
		names = control.Names()
	}
	kinds := make([]control.Kind, 0, len(names))
	for _, name := range names {
		k, err := control.ParseKind(name)
		if err != nil {
			return err
		}
		kinds = append(kinds, k)
	}

	configs := experiment.Matrix(opts, kinds, cfg.Steps())
	for i := range configs {
		configs[i].Logger = logger
	}
	ens := &experiment.Ensemble{Configs: configs, Limit: limit}

	fmt.Printf("sweeping %d runs for %.1fs each...\n\n", len(configs), cfg.Duration)
	results, err := ens.Run(cmd.Context())
	if err != nil {
		return err
	}

	st := storage.New(cfg.DataDir)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tUPRIGHT\tRETURN\tMEAN |V|\tSATURATED\tFINAL ALPHA\tID")
	for i, res := range results {
		id := "-"
		if save {
			full, err := st.Save(runMetadata(cfg, configs[i].Name, configs[i]), res)
			if err != nil {
				return err
			}
			id = shortID(full)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.2f\t%.3f\t%.3f\t%.1f\t%s\n",
			configs[i].Name,
			res.Metrics["upright"],
			res.Metrics["return"],
			res.Metrics["mean_voltage"],
			res.Metrics["saturation"],
			experiment.FinalAlpha(res)*180/math.Pi,
			id,
		)
	}
	return w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
