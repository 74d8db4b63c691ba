package driver

import (
	"context"

	"golang.org/x/time/rate"
)

// Pacer blocks until the next iteration may start.
type Pacer interface {
	Wait(ctx context.Context) error
}

// RatePacer holds the loop to a wall-clock rate.
type RatePacer struct {
	limiter *rate.Limiter
}

func NewRatePacer(hz float64) *RatePacer {
	return &RatePacer{limiter: rate.NewLimiter(rate.Limit(hz), 1)}
}

// Wait blocks for the next token. When the token would land after the
// context deadline it waits for the deadline instead, so callers always see
// the context error.
func (p *RatePacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		if ctx.Err() == nil {
			<-ctx.Done()
		}
		return ctx.Err()
	}
	return nil
}

func (p *RatePacer) Rate() float64 {
	return float64(p.limiter.Limit())
}
