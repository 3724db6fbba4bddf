package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bft-labs/pencen/internal/domain"
)

func TestTiming_Validate(t *testing.T) {
	if err := DefaultTiming().Validate(); err != nil {
		t.Fatalf("DefaultTiming().Validate() error = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Timing)
		want   string
	}{
		{"negative login delay", func(tm *Timing) { tm.LoginDelay = -1 }, "login delay"},
		{"negative scan duration", func(tm *Timing) { tm.ScanDuration = -1 }, "scan duration"},
		{"negative location phase", func(tm *Timing) { tm.LocationPhaseDelays[1] = -1 }, "location phase 1 delay"},
		{"negative capture tick", func(tm *Timing) { tm.CaptureTick = -1 }, "capture tick"},
		{"negative confirm delay", func(tm *Timing) { tm.ConfirmDelay = -1 }, "confirm delay"},
		{"zero capture step", func(tm *Timing) { tm.CaptureStep = 0 }, "capture step 0"},
		{"capture step over 100", func(tm *Timing) { tm.CaptureStep = 101 }, "capture step 101"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing := DefaultTiming()
			tt.mutate(&timing)

			err := timing.Validate()
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Fatalf("Validate() error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestTiming_Validate_ReportsFirstInvalidField(t *testing.T) {
	timing := DefaultTiming()
	timing.LoginDelay = -time.Second
	timing.ScanDuration = -time.Second
	timing.LocationPhaseDelays[2] = -time.Second
	timing.ConfirmDelay = -time.Second

	for i := 0; i < 50; i++ {
		err := timing.Validate()
		if err == nil || !strings.Contains(err.Error(), "login delay") {
			t.Fatalf("Validate() error = %v, want login delay reported", err)
		}
	}
}
