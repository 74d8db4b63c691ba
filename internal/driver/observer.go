package driver

import (
	"log/slog"

	"github.com/san-kum/qubesim/internal/dynamo"
)

// Observer sees every transition and every scheduled reset. Observers run
// on the loop goroutine and must not block.
type Observer interface {
	OnStep(step int, u dynamo.Control, tr dynamo.Transition)
	OnReset(step, episode int, obs dynamo.State)
}

// MetricsObserver feeds metrics each step and logs their values when an
// episode ends.
type MetricsObserver struct {
	Metrics []dynamo.Metric
	Logger  *slog.Logger

	steps int
}

func NewMetricsObserver(logger *slog.Logger, metrics ...dynamo.Metric) *MetricsObserver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MetricsObserver{Metrics: metrics, Logger: logger}
}

func (m *MetricsObserver) OnStep(step int, u dynamo.Control, tr dynamo.Transition) {
	for _, metric := range m.Metrics {
		metric.Observe(tr.Observation, u, tr.Info.Time)
	}
	m.steps++
}

func (m *MetricsObserver) OnReset(step, episode int, obs dynamo.State) {
	if m.steps > 0 {
		attrs := []any{"episode", episode - 1, "steps", m.steps}
		for _, metric := range m.Metrics {
			attrs = append(attrs, metric.Name(), metric.Value())
		}
		m.Logger.Info("episode summary", attrs...)
	}
	for _, metric := range m.Metrics {
		metric.Reset()
	}
	m.steps = 0
}

// Summary returns the current metric values by name.
func (m *MetricsObserver) Summary() map[string]float64 {
	out := make(map[string]float64, len(m.Metrics))
	for _, metric := range m.Metrics {
		out[metric.Name()] = metric.Value()
	}
	return out
}
