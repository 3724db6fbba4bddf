package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/internal/ports"
	"github.com/bft-labs/pencen/pkg/log"
)

// Config holds the session defaults for a workflow.
type Config struct {
	// AgentID is the operator identity shown at Login. Must be non-empty.
	AgentID string

	// DefaultCondition is the beneficiary condition preselected at Verify.
	DefaultCondition domain.ConditionStatus

	// Beneficiary is the record the simulated card read returns.
	Beneficiary domain.BeneficiaryRecord

	Timing Timing
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if strings.TrimSpace(c.AgentID) == "" {
		return fmt.Errorf("%w: agent id is required", domain.ErrInvalidConfig)
	}
	if !c.DefaultCondition.Valid() {
		return fmt.Errorf("%w: unknown default condition", domain.ErrInvalidConfig)
	}
	return c.Timing.Validate()
}

// Snapshot is a point-in-time view of the workflow for presentation.
type Snapshot struct {
	Stage          domain.Stage
	AgentID        string
	Authenticating bool
	ScanBusy       bool
	Beneficiary    domain.BeneficiaryRecord
	Location       domain.LocationCheck
	Biometric      domain.BiometricCapture
	Receipt        *domain.TransactionReceipt
}

// CaptureAllowed reports whether a biometric capture would be accepted now.
func (s Snapshot) CaptureAllowed() bool {
	return s.Stage == domain.StageVerify &&
		s.Location.IsVerified() &&
		s.Beneficiary.Condition != domain.ConditionDeceased &&
		s.Biometric.State == domain.CaptureIdle
}

// Workflow is the verification workflow controller. It owns the single
// operator session, the stage machine and the stage-scoped sub-flows.
//
// Every command and every timer callback runs under one lock, so from the
// session's point of view the workflow is single-threaded. Leaving a stage
// cancels that stage's scope, which stops its timers.
type Workflow struct {
	mu sync.Mutex

	cfg     Config
	session domain.Session
	stages  *StageController

	delayer ports.Delayer
	issuer  ports.ReceiptIssuer
	logger  ports.Logger
	emitter EventEmitter

	root  *taskScope
	scope *taskScope

	// Exactly one of these is populated, matching the current stage.
	login   *loginFlow
	scan    *scanFlow
	visit   *visit
	receipt *domain.TransactionReceipt

	beneficiary domain.BeneficiaryRecord

	pending    []event
	dispatchMu sync.Mutex
	tasks      sync.WaitGroup
}

// NewWorkflow creates a workflow positioned at Login. Cancelling ctx, or
// calling Close, stops every outstanding timer.
func NewWorkflow(
	ctx context.Context,
	cfg Config,
	delayer ports.Delayer,
	issuer ports.ReceiptIssuer,
	logger ports.Logger,
	emitter EventEmitter,
) (*Workflow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if delayer == nil {
		return nil, fmt.Errorf("%w: delayer is required", domain.ErrInvalidConfig)
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	cfg.AgentID = strings.TrimSpace(cfg.AgentID)

	w := &Workflow{
		cfg:     cfg,
		session: domain.Session{AgentID: cfg.AgentID, Stage: domain.StageLogin},
		delayer: delayer,
		issuer:  issuer,
		logger:  logger,
		emitter: emitter,
	}
	w.stages = NewStageController(logger, w.onStageChange)
	w.root = w.newScope(ctx)
	w.enterStage(domain.StageLogin)
	return w, nil
}

// Close cancels all outstanding timers and waits for their goroutines.
// Commands issued afterwards fail with domain.ErrNotRunning.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.root.close()
	w.mu.Unlock()
	w.tasks.Wait()
}

// SetTiming replaces the simulated latencies. Sub-flows already in flight
// keep the timing they started with.
func (w *Workflow) SetTiming(t Timing) error {
	if err := t.Validate(); err != nil {
		return err
	}
	w.mu.Lock()
	w.cfg.Timing = t
	w.mu.Unlock()

	w.logger.Info("timing updated",
		ports.Duration("scan", t.ScanDuration),
		ports.Duration("capture_tick", t.CaptureTick),
	)
	return nil
}

// Timing returns the latencies new sub-flows will use.
func (w *Workflow) Timing() Timing {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cfg.Timing
}

// Snapshot returns the current observable state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := Snapshot{
		Stage:       w.stages.Stage(),
		AgentID:     w.session.AgentID,
		Beneficiary: w.beneficiary,
	}
	if w.login != nil {
		s.Authenticating = w.login.authenticating
	}
	if w.scan != nil {
		s.ScanBusy = w.scan.busy
	}
	if w.visit != nil {
		s.Location = w.visit.location.check
		s.Biometric = w.visit.capture.capture
	}
	if w.receipt != nil {
		r := *w.receipt
		s.Receipt = &r
	}
	return s
}

// SetAgentID edits the operator identity. Only allowed at Login before the
// credentials are submitted.
func (w *Workflow) SetAgentID(id string) error {
	return w.command("set agent id", func() error {
		if err := w.requireStage("set agent id", domain.StageLogin); err != nil {
			return err
		}
		if w.login.authenticating {
			return domain.RejectTransition("set agent id", "authentication already in progress")
		}
		id = strings.TrimSpace(id)
		if id == "" {
			return domain.RejectInput("set agent id", "agent id must not be empty")
		}
		w.session.AgentID = id
		return nil
	})
}

// Login submits the operator credentials. The stage moves to Scan once the
// simulated authentication completes.
func (w *Workflow) Login() error {
	return w.command("login", func() error {
		if err := w.requireStage("login", domain.StageLogin); err != nil {
			return err
		}
		if err := w.login.submit(w.scope, w.cfg.Timing.LoginDelay); err != nil {
			return err
		}
		w.logger.Info("authenticating agent", ports.String("agent_id", w.session.AgentID))
		return nil
	})
}

// BeginScan starts the simulated card read.
func (w *Workflow) BeginScan() error {
	return w.command("begin scan", func() error {
		if err := w.requireStage("begin scan", domain.StageScan); err != nil {
			return err
		}
		if err := w.scan.begin(w.scope, w.cfg.Timing.ScanDuration); err != nil {
			return err
		}
		w.logger.Info("reading identity card", ports.Duration("duration", w.cfg.Timing.ScanDuration))
		return nil
	})
}

// AcquireLocation starts the simulated GPS fix.
func (w *Workflow) AcquireLocation() error {
	return w.command("acquire location", func() error {
		if err := w.requireStage("acquire location", domain.StageVerify); err != nil {
			return err
		}
		if err := w.visit.location.acquire(w.scope, w.cfg.Timing.LocationPhaseDelays); err != nil {
			return err
		}
		w.logger.Info("acquiring location")
		return nil
	})
}

// SetConditionStatus records the beneficiary condition by name
// ("Bedridden", "Mobile" or "Deceased").
func (w *Workflow) SetConditionStatus(value string) error {
	c, err := domain.ParseConditionStatus(value)
	if err != nil {
		return w.command("set condition", func() error { return err })
	}
	return w.SetCondition(c)
}

// SetCondition records the beneficiary condition. Marking the beneficiary
// deceased aborts a capture that is still scanning. The condition is locked
// once the capture is confirmed.
func (w *Workflow) SetCondition(c domain.ConditionStatus) error {
	return w.command("set condition", func() error {
		if err := w.requireStage("set condition", domain.StageVerify); err != nil {
			return err
		}
		if w.visit.capture.capture.State == domain.CaptureConfirmed {
			return domain.RejectTransition("set condition", "capture already confirmed")
		}
		changed, err := w.visit.condition.set(c)
		if err != nil || !changed {
			return err
		}

		w.publish(func(e EventEmitter) { e.OnConditionChange(c) })
		w.logger.Info("beneficiary condition updated", ports.Stringer("condition", c))

		if c == domain.ConditionDeceased && w.visit.capture.abort("beneficiary marked deceased") {
			w.logger.Warn("biometric capture aborted", ports.String("reason", "beneficiary marked deceased"))
		}
		return nil
	})
}

// BeginBiometricCapture starts the simulated thumbprint capture. Rejected
// unless the location is verified and the beneficiary is not deceased.
func (w *Workflow) BeginBiometricCapture() error {
	return w.command("begin capture", func() error {
		if err := w.requireStage("begin capture", domain.StageVerify); err != nil {
			return err
		}
		if err := w.visit.capture.begin(w.scope, w.cfg.Timing, w.visit.captureEligibility); err != nil {
			return err
		}
		w.logger.Info("capturing thumbprint", ports.String("beneficiary", w.beneficiary.Name))
		return nil
	})
}

// Logout returns to Login from any stage and discards all sub-flow state.
// The agent id is kept.
func (w *Workflow) Logout() error {
	return w.command("logout", func() error {
		w.stages.Reset("operator disconnected")
		w.enterStage(domain.StageLogin)
		return nil
	})
}

// StartNewCycle goes from Success straight to Scan for the next beneficiary.
func (w *Workflow) StartNewCycle() error {
	return w.command("start new cycle", func() error {
		if err := w.stages.RestartCycle("new transaction"); err != nil {
			return err
		}
		w.enterStage(domain.StageScan)
		return nil
	})
}

// command runs fn under the workflow lock, reports rejections and delivers
// whatever events fn produced.
func (w *Workflow) command(name string, fn func() error) error {
	w.mu.Lock()
	var err error
	if w.root.live() {
		err = fn()
	} else {
		err = domain.ErrNotRunning
	}
	if err != nil {
		w.logger.Debug("command rejected", ports.String("command", name), ports.Err(err))
		w.publish(func(e EventEmitter) { e.OnCommandRejected(name, err) })
	}
	w.mu.Unlock()

	w.flush()
	return err
}

func (w *Workflow) requireStage(command string, want domain.Stage) error {
	if got := w.stages.Stage(); got != want {
		return domain.RejectTransition(command, "requires stage "+want.String()+", current stage is "+got.String())
	}
	return nil
}

// complete handles a completion signal from a sub-flow owned by stage from.
// Caller holds w.mu.
func (w *Workflow) complete(from domain.Stage, signal string) {
	if w.stages.Stage() != from {
		w.logger.Warn("stale completion signal ignored",
			ports.String("signal", signal),
			ports.Stringer("stage", w.stages.Stage()),
		)
		return
	}
	if err := w.stages.Advance(signal); err != nil {
		w.logger.Error("advance failed", ports.String("signal", signal), ports.Err(err))
		return
	}
	w.enterStage(w.stages.Stage())
}

// enterStage discards the previous stage's sub-flows and timers and builds
// the new stage's. Caller holds w.mu.
func (w *Workflow) enterStage(stage domain.Stage) {
	if w.scope != nil {
		w.scope.close()
	}
	w.scope = w.root.child()
	w.login, w.scan, w.visit, w.receipt = nil, nil, nil, nil
	w.session.Stage = stage

	switch stage {
	case domain.StageLogin:
		w.beneficiary = domain.BeneficiaryRecord{}
		w.login = &loginFlow{onSubmitted: w.onLoginSubmitted}
	case domain.StageScan:
		w.beneficiary = domain.BeneficiaryRecord{}
		w.scan = &scanFlow{onComplete: w.onScanComplete}
	case domain.StageVerify:
		w.visit = newVisit(&w.beneficiary, w.publish, w.onVerified)
	case domain.StageSuccess:
		w.issueReceipt()
	}
}

func (w *Workflow) onLoginSubmitted() {
	w.complete(domain.StageLogin, "login submitted")
}

func (w *Workflow) onScanComplete() {
	w.beneficiary = w.cfg.Beneficiary
	w.beneficiary.Condition = w.cfg.DefaultCondition
	w.logger.Info("identity card read",
		ports.String("beneficiary", w.beneficiary.Name),
		ports.String("id_number", w.beneficiary.IDNumber),
	)
	w.complete(domain.StageScan, "scan complete")
}

func (w *Workflow) onVerified() {
	w.complete(domain.StageVerify, "beneficiary verified")
}

func (w *Workflow) onStageChange(previous, current domain.Stage, reason string) {
	w.publish(func(e EventEmitter) { e.OnStageChange(previous, current, reason) })
}

func (w *Workflow) issueReceipt() {
	if w.issuer == nil {
		return
	}
	r, err := w.issuer.Issue(w.session.AgentID, w.beneficiary)
	if err != nil {
		w.logger.Error("receipt issue failed", ports.Err(err))
		return
	}
	w.receipt = &r
	w.publish(func(e EventEmitter) { e.OnReceiptIssued(r) })
	w.logger.Info("pension released",
		ports.String("transaction_id", r.TransactionID),
		ports.String("beneficiary", r.BeneficiaryName),
	)
}
