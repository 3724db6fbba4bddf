package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func TestManager_StartStopCycle(t *testing.T) {
	var seen []State
	m := NewManager(nil, func(_, current State, _ string) {
		seen = append(seen, current)
	})

	if !m.CanStart() || m.CanStop() {
		t.Fatalf("fresh manager: CanStart=%v CanStop=%v", m.CanStart(), m.CanStop())
	}

	for _, s := range []State{StateStarting, StateRunning, StateStopping, StateStopped} {
		if err := m.TransitionTo(s, "test"); err != nil {
			t.Fatalf("TransitionTo(%s) error = %v", s, err)
		}
	}

	want := []State{StateStarting, StateRunning, StateStopping, StateStopped}
	if len(seen) != len(want) {
		t.Fatalf("observer saw %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("observer[%d] = %s, want %s", i, seen[i], want[i])
		}
	}
}

func TestManager_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from State
		to   State
		want error
	}{
		{"stopped to running", StateStopped, StateRunning, ErrNotRunning},
		{"stopped to stopping", StateStopped, StateStopping, ErrNotRunning},
		{"running to starting", StateRunning, StateStarting, ErrAlreadyRunning},
		{"starting to stopping", StateStarting, StateStopping, ErrAlreadyRunning},
		{"failed to running", StateFailed, StateRunning, ErrNotRunning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(nil, nil)
			m.state = tt.from

			err := m.TransitionTo(tt.to, "test")
			if !errors.Is(err, tt.want) {
				t.Errorf("TransitionTo() error = %v, want %v", err, tt.want)
			}
			if m.State() != tt.from {
				t.Errorf("state = %s, want unchanged %s", m.State(), tt.from)
			}
		})
	}
}

func TestManager_FailedCanRestart(t *testing.T) {
	m := NewManager(nil, nil)
	_ = m.TransitionTo(StateStarting, "start")
	_ = m.TransitionTo(StateFailed, "plugin init failed")

	if !m.CanStart() {
		t.Error("CanStart() = false after failure")
	}
	if err := m.TransitionTo(StateStarting, "retry"); err != nil {
		t.Errorf("TransitionTo(Starting) from Failed error = %v", err)
	}
}

func TestManager_WaitWithTimeout(t *testing.T) {
	m := NewManager(nil, nil)
	release := make(chan struct{})
	m.Go(func() { <-release })

	if err := m.WaitWithTimeout(10 * time.Millisecond); !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("WaitWithTimeout() error = %v, want ErrShutdownTimeout", err)
	}

	close(release)
	if err := m.WaitWithTimeout(time.Second); err != nil {
		t.Errorf("WaitWithTimeout() error = %v after release", err)
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{
		StateStopped:  "Stopped",
		StateStarting: "Starting",
		StateRunning:  "Running",
		StateStopping: "Stopping",
		StateFailed:   "Failed",
		State(99):     "Unknown",
	}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("State(%d).String() = %s, want %s", int(s), got, want)
		}
	}
}
