// Package clock provides the wall-clock Delayer used outside tests.
package clock

import (
	"context"
	"time"

	"github.com/bft-labs/pencen/internal/ports"
)

// Delayer implements ports.Delayer with real timers.
type Delayer struct{}

// NewDelayer returns a wall-clock Delayer.
func NewDelayer() Delayer {
	return Delayer{}
}

// Sleep waits for d or until ctx is done.
func (Delayer) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Scaled shortens or stretches every delay by a factor. A factor of 0.1
// runs the simulation ten times faster.
type Scaled struct {
	Base   ports.Delayer
	Factor float64
}

// Sleep waits for d scaled by Factor.
func (s Scaled) Sleep(ctx context.Context, d time.Duration) error {
	return s.Base.Sleep(ctx, time.Duration(float64(d)*s.Factor))
}

var (
	_ ports.Delayer = Delayer{}
	_ ports.Delayer = Scaled{}
)
