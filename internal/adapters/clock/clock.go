// Package clock provides the real sleeper used outside of tests.
package clock

import (
	"context"
	"time"

	"github.com/mfgops/swctl/internal/core/ports"
)

// StdSleeper sleeps on the wall clock and honors context cancellation.
type StdSleeper struct{}

var _ ports.Sleeper = StdSleeper{}

func (StdSleeper) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
