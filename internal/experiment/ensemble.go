package experiment

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/qubesim/internal/control"
	"github.com/san-kum/qubesim/internal/dynamo"
	"github.com/san-kum/qubesim/internal/qube"
)

// Ensemble runs independent experiments concurrently. Each run owns its own
// environment and controller.
type Ensemble struct {
	Configs []Config
	// Limit caps concurrent runs; 0 uses GOMAXPROCS.
	Limit int
}

// Run returns results in Configs order. The first failure cancels the rest.
func (e *Ensemble) Run(ctx context.Context) ([]*dynamo.Result, error) {
	results := make([]*dynamo.Result, len(e.Configs))

	g, ctx := errgroup.WithContext(ctx)
	limit := e.Limit
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)

	for i, cfg := range e.Configs {
		g.Go(func() error {
			res, err := New(cfg).Run(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", cfg.Name, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Matrix builds one config per controller and starting pose.
func Matrix(base qube.Options, kinds []control.Kind, steps int) []Config {
	configs := make([]Config, 0, len(kinds)*2)
	for _, k := range kinds {
		for _, down := range []bool{false, true} {
			opts := base
			opts.BeginDown = down
			pose := "up"
			if down {
				pose = "down"
			}
			configs = append(configs, Config{
				Name:       fmt.Sprintf("%s/%s", k, pose),
				Env:        opts,
				Controller: k,
				Steps:      steps,
			})
		}
	}
	return configs
}
