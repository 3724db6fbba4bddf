package domain

// CaptureState is the state of the simulated thumbprint capture.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureScanning
	CaptureConfirmed
)

// CaptureComplete is the progress value at which a capture is confirmed.
const CaptureComplete = 100

func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "Idle"
	case CaptureScanning:
		return "Scanning"
	case CaptureConfirmed:
		return "Confirmed"
	default:
		return "Unknown"
	}
}

// BiometricCapture is the biometric sub-flow state.
type BiometricCapture struct {
	State    CaptureState
	Progress int
}
