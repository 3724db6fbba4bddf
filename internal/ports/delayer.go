package ports

import (
	"context"
	"time"
)

// Delayer resolves after a duration. It stands in for every piece of
// simulated hardware latency.
type Delayer interface {
	// Sleep blocks for d or until ctx is done, whichever comes first.
	// It returns ctx.Err() when the wait was cut short.
	Sleep(ctx context.Context, d time.Duration) error
}
