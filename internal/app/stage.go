package app

import (
	"fmt"

	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/internal/ports"
)

// StageController manages the top-level stage machine.
//
// Valid transitions:
//   - Login -> Scan -> Verify -> Success, one step at a time
//   - Success -> Scan (new beneficiary, same agent)
//   - any stage other than Login -> Login (reset)
//
// It is not safe for concurrent use; Workflow serializes access.
type StageController struct {
	stage    domain.Stage
	logger   ports.Logger
	onChange func(previous, current domain.Stage, reason string)
}

// NewStageController creates a controller positioned at Login.
func NewStageController(logger ports.Logger, onChange func(previous, current domain.Stage, reason string)) *StageController {
	return &StageController{
		stage:    domain.StageLogin,
		logger:   logger,
		onChange: onChange,
	}
}

// Stage returns the current stage.
func (c *StageController) Stage() domain.Stage {
	return c.stage
}

// TransitionTo attempts to move to a new stage.
// Returns an error wrapping domain.ErrInvalidTransition if the move is not allowed.
func (c *StageController) TransitionTo(next domain.Stage, reason string) error {
	prev := c.stage
	if !canTransition(prev, next) {
		return domain.RejectTransition("transition", fmt.Sprintf("%s to %s is not allowed", prev, next))
	}

	c.stage = next

	if c.onChange != nil {
		c.onChange(prev, next, reason)
	}

	c.logger.Info("stage transition",
		ports.Stringer("from", prev),
		ports.Stringer("to", next),
		ports.String("reason", reason),
	)

	return nil
}

// Advance moves one step forward in the fixed sequence.
// From Success it is rejected: only RestartCycle or Reset leave Success.
func (c *StageController) Advance(reason string) error {
	next, ok := c.stage.Next()
	if !ok {
		return domain.RejectTransition("advance", "no stage follows "+c.stage.String())
	}
	return c.TransitionTo(next, reason)
}

// Reset returns to Login from any stage. Reports whether the stage changed.
func (c *StageController) Reset(reason string) bool {
	if c.stage == domain.StageLogin {
		return false
	}
	return c.TransitionTo(domain.StageLogin, reason) == nil
}

// RestartCycle goes from Success straight back to Scan.
func (c *StageController) RestartCycle(reason string) error {
	if c.stage != domain.StageSuccess {
		return domain.RejectTransition("start new cycle", "current stage is "+c.stage.String()+", not Success")
	}
	return c.TransitionTo(domain.StageScan, reason)
}

func canTransition(from, to domain.Stage) bool {
	if to == domain.StageLogin {
		return from != domain.StageLogin
	}
	if next, ok := from.Next(); ok && next == to {
		return true
	}
	return from == domain.StageSuccess && to == domain.StageScan
}
