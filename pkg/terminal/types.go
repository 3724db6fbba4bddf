package terminal

import (
	"fmt"
	"strings"

	"github.com/bft-labs/pencen/internal/app"
	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/pkg/lifecycle"
	"github.com/bft-labs/pencen/pkg/log"
)

// Re-exported domain types, so embedders never import internal packages.
type (
	Stage              = domain.Stage
	ConditionStatus    = domain.ConditionStatus
	LocationStatus     = domain.LocationStatus
	LocationPhase      = domain.LocationPhase
	LocationCheck      = domain.LocationCheck
	BiometricCapture   = domain.BiometricCapture
	CaptureState       = domain.CaptureState
	BeneficiaryRecord  = domain.BeneficiaryRecord
	TransactionReceipt = domain.TransactionReceipt
	Money              = domain.Money

	// Snapshot is a point-in-time view of the terminal.
	Snapshot = app.Snapshot

	// Timing holds every simulated hardware latency.
	Timing = app.Timing

	// RejectionError describes a command the workflow refused.
	RejectionError = domain.RejectionError

	// Logger is the interface for structured logging.
	Logger = log.Logger

	// LogField is a structured log field.
	LogField = log.Field

	// State is the run state of a Terminal.
	State = lifecycle.State
)

// Run states.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateFailed   = lifecycle.StateFailed
)

const (
	StageLogin   = domain.StageLogin
	StageScan    = domain.StageScan
	StageVerify  = domain.StageVerify
	StageSuccess = domain.StageSuccess

	ConditionBedridden = domain.ConditionBedridden
	ConditionMobile    = domain.ConditionMobile
	ConditionDeceased  = domain.ConditionDeceased

	LocationIdle      = domain.LocationIdle
	LocationAcquiring = domain.LocationAcquiring
	LocationVerified  = domain.LocationVerified

	CaptureIdle      = domain.CaptureIdle
	CaptureScanning  = domain.CaptureScanning
	CaptureConfirmed = domain.CaptureConfirmed

	// DeceasedNotice is shown while a beneficiary is marked deceased.
	DeceasedNotice = domain.DeceasedNotice
)

// Errors returned by the terminal. Use errors.Is.
var (
	ErrInvalidTransition = domain.ErrInvalidTransition
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrInvalidConfig     = domain.ErrInvalidConfig
	ErrNotRunning        = domain.ErrNotRunning
	ErrAlreadyRunning    = domain.ErrAlreadyRunning
)

// DefaultTiming returns the reference latencies.
func DefaultTiming() Timing {
	return app.DefaultTiming()
}

// Config holds the terminal's session defaults.
type Config struct {
	// AgentID identifies the operator. Required.
	AgentID string

	// DefaultCondition is preselected for every beneficiary at Verify.
	DefaultCondition ConditionStatus

	// Beneficiary is what the simulated card read returns. Name and
	// IDNumber are required.
	Beneficiary BeneficiaryRecord

	// Amount is the disbursement paid on success. Zero means RM 1,250.00.
	Amount Money

	Timing Timing

	// ConfigPath is handed to plugins that watch a configuration file.
	ConfigPath string
}

// DefaultConfig returns a Config with the reference fixture and timing.
// AgentID must still be set.
func DefaultConfig() Config {
	return Config{
		DefaultCondition: domain.ConditionBedridden,
		Beneficiary: BeneficiaryRecord{
			Name:     "Haji Abu Bakar",
			IDNumber: "800101-14-1234",
			Category: "Army Vet",
		},
		Timing: app.DefaultTiming(),
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Beneficiary.Name) == "" || strings.TrimSpace(c.Beneficiary.IDNumber) == "" {
		return fmt.Errorf("%w: beneficiary name and id number are required", domain.ErrInvalidConfig)
	}
	if c.Amount.MinorUnits < 0 {
		return fmt.Errorf("%w: amount must not be negative", domain.ErrInvalidConfig)
	}
	return c.workflowConfig().Validate()
}

func (c Config) workflowConfig() app.Config {
	return app.Config{
		AgentID:          c.AgentID,
		DefaultCondition: c.DefaultCondition,
		Beneficiary:      c.Beneficiary,
		Timing:           c.Timing,
	}
}
