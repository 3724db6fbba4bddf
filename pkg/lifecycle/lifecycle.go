package lifecycle

// State is the run state of an embedded terminal.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateStopping
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStopped:
		return "Stopped"
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopping:
		return "Stopping"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Observer is told about every run-state change.
type Observer func(previous, current State, reason string)

func canTransition(from, to State) bool {
	switch from {
	case StateStopped, StateFailed:
		return to == StateStarting
	case StateStarting:
		return to == StateRunning || to == StateFailed
	case StateRunning:
		return to == StateStopping
	case StateStopping:
		return to == StateStopped || to == StateFailed
	}
	return false
}
