package domain

// Stage is one of the four top-level workflow phases.
type Stage int

const (
	StageLogin Stage = iota
	StageScan
	StageVerify
	StageSuccess
)

// Stages lists every stage in workflow order.
var Stages = []Stage{StageLogin, StageScan, StageVerify, StageSuccess}

// String returns a human-readable representation of the stage.
func (s Stage) String() string {
	switch s {
	case StageLogin:
		return "Login"
	case StageScan:
		return "Scan"
	case StageVerify:
		return "Verify"
	case StageSuccess:
		return "Success"
	default:
		return "Unknown"
	}
}

// Label is the step-indicator caption shown to the operator.
func (s Stage) Label() string {
	switch s {
	case StageLogin:
		return "Agent Login"
	case StageScan:
		return "Smart Card"
	case StageVerify:
		return "Biometric"
	case StageSuccess:
		return "Receipt"
	default:
		return ""
	}
}

// Next returns the stage that follows s in the fixed sequence.
// ok is false for StageSuccess and unknown stages.
func (s Stage) Next() (next Stage, ok bool) {
	switch s {
	case StageLogin, StageScan, StageVerify:
		return s + 1, true
	default:
		return s, false
	}
}

// Session is the single operator session owned by the workflow.
type Session struct {
	AgentID string
	Stage   Stage
}
