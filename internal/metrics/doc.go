// Package metrics accumulates per-episode figures of merit for the rotary
// pendulum. Every metric implements [dynamo.Metric] and is reset by the
// driver at episode boundaries.
package metrics
