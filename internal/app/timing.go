package app

import (
	"fmt"
	"time"

	"github.com/bft-labs/pencen/internal/domain"
)

// Timing holds every simulated hardware latency.
type Timing struct {
	// LoginDelay simulates the authentication round trip.
	LoginDelay time.Duration

	// ScanDuration simulates reading the identity card chip.
	ScanDuration time.Duration

	// LocationPhaseDelays[i] is the time spent in phase i before moving on.
	// The last entry ends in Verified.
	LocationPhaseDelays [domain.LocationPhaseCount]time.Duration

	// CaptureTick is the interval between progress steps.
	CaptureTick time.Duration

	// CaptureStep is the progress added per tick, in percent.
	CaptureStep int

	// ConfirmDelay is shown at 100% before the stage advances.
	ConfirmDelay time.Duration
}

// DefaultTiming matches the reference terminal: 1.5s login, 2.5s card read,
// GPS phases at 0.8s/1.6s/3.0s, 2% every 40ms and 800ms at 100%.
func DefaultTiming() Timing {
	return Timing{
		LoginDelay:   1500 * time.Millisecond,
		ScanDuration: 2500 * time.Millisecond,
		LocationPhaseDelays: [domain.LocationPhaseCount]time.Duration{
			800 * time.Millisecond,
			800 * time.Millisecond,
			1400 * time.Millisecond,
		},
		CaptureTick:  40 * time.Millisecond,
		CaptureStep:  2,
		ConfirmDelay: 800 * time.Millisecond,
	}
}

// Validate checks that every duration is non-negative and the capture step
// is within 1..100.
func (t Timing) Validate() error {
	type named struct {
		name  string
		value time.Duration
	}
	durations := []named{
		{"login delay", t.LoginDelay},
		{"scan duration", t.ScanDuration},
	}
	for i, d := range t.LocationPhaseDelays {
		durations = append(durations, named{fmt.Sprintf("location phase %d delay", i), d})
	}
	durations = append(durations,
		named{"capture tick", t.CaptureTick},
		named{"confirm delay", t.ConfirmDelay},
	)
	for _, d := range durations {
		if d.value < 0 {
			return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidConfig, d.name)
		}
	}
	if t.CaptureStep < 1 || t.CaptureStep > domain.CaptureComplete {
		return fmt.Errorf("%w: capture step %d outside 1..%d", domain.ErrInvalidConfig, t.CaptureStep, domain.CaptureComplete)
	}
	return nil
}
