// Package throttle provides the cooperative pacing used between items of a
// batch job. The delay exists purely to respect third-party rate limits;
// it is modeled as a limiter rather than a literal sleep so batch logic
// stays testable without wall-clock waits.
package throttle

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter gates the start of each batch item.
type Limiter interface {
	// Wait blocks until the next item may start, or until ctx is done.
	Wait(ctx context.Context) error
}

// PerSecond returns a limiter that releases n items per second with no
// burst beyond the first token. One per second is the reference pace for
// the external store and key shop APIs.
func PerSecond(n int) Limiter {
	return rate.NewLimiter(rate.Limit(n), 1)
}

// Nop returns a limiter that never blocks.
func Nop() Limiter { return nopLimiter{} }

type nopLimiter struct{}

func (nopLimiter) Wait(ctx context.Context) error { return ctx.Err() }
