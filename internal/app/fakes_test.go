package app

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/internal/ports"
)

// instantDelayer returns immediately unless ctx is already done.
type instantDelayer struct{}

func (instantDelayer) Sleep(ctx context.Context, _ time.Duration) error {
	runtime.Gosched()
	return ctx.Err()
}

type pendingSleep struct {
	d       time.Duration
	release chan struct{}
}

// gatedDelayer parks every Sleep until the test releases it. With
// ignoreCancel set a parked sleep only returns on release, which lets a test
// deliver a timer that fires after its stage has been left.
type gatedDelayer struct {
	calls        chan pendingSleep
	ignoreCancel bool
}

func newGatedDelayer() *gatedDelayer {
	return &gatedDelayer{calls: make(chan pendingSleep)}
}

func (g *gatedDelayer) Sleep(ctx context.Context, d time.Duration) error {
	s := pendingSleep{d: d, release: make(chan struct{})}
	select {
	case g.calls <- s:
	case <-ctx.Done():
		return ctx.Err()
	}
	if g.ignoreCancel {
		<-s.release
		return nil
	}
	select {
	case <-s.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// next waits for the next parked sleep and releases it.
func (g *gatedDelayer) next(t *testing.T) time.Duration {
	t.Helper()
	select {
	case s := <-g.calls:
		close(s.release)
		return s.d
	case <-time.After(2 * time.Second):
		t.Fatal("no pending sleep")
		return 0
	}
}

// park waits for the next sleep without releasing it.
func (g *gatedDelayer) park(t *testing.T) pendingSleep {
	t.Helper()
	select {
	case s := <-g.calls:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no pending sleep")
		return pendingSleep{}
	}
}

type stubIssuer struct{}

func (stubIssuer) Issue(agentID string, b domain.BeneficiaryRecord) (domain.TransactionReceipt, error) {
	return domain.TransactionReceipt{
		TransactionID:   "TXN-TEST-001",
		AgentID:         agentID,
		BeneficiaryName: b.Name,
		BeneficiaryID:   b.IDNumber,
		Timestamp:       time.Date(2024, 10, 12, 9, 30, 0, 0, time.UTC),
		Amount:          domain.Money{MinorUnits: 125000, Currency: "MYR"},
	}, nil
}

// recorder is an EventEmitter that keeps everything it receives.
type recorder struct {
	mu         sync.Mutex
	stages     []stageChange
	phases     []domain.LocationPhase
	verified   int
	conditions []domain.ConditionStatus
	progress   []int
	confirmed  int
	aborted    []string
	receipts   []domain.TransactionReceipt
	rejected   []string
}

func (r *recorder) OnStageChange(previous, current domain.Stage, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stages = append(r.stages, stageChange{previous, current, reason})
}

func (r *recorder) OnLocationPhase(phase domain.LocationPhase) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phases = append(r.phases, phase)
}

func (r *recorder) OnLocationVerified() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified++
}

func (r *recorder) OnConditionChange(c domain.ConditionStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conditions = append(r.conditions, c)
}

func (r *recorder) OnCaptureProgress(progress int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, progress)
}

func (r *recorder) OnCaptureConfirmed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.confirmed++
}

func (r *recorder) OnCaptureAborted(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aborted = append(r.aborted, reason)
}

func (r *recorder) OnReceiptIssued(receipt domain.TransactionReceipt) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, receipt)
}

func (r *recorder) OnCommandRejected(command string, _ error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected = append(r.rejected, command)
}

func (r *recorder) stageChanges() []stageChange {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]stageChange(nil), r.stages...)
}

func (r *recorder) progressValues() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.progress...)
}

func (r *recorder) phaseValues() []domain.LocationPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LocationPhase(nil), r.phases...)
}

func (r *recorder) counts() (verified, confirmed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.verified, r.confirmed
}

func testConfig() Config {
	return Config{
		AgentID:          "AGT-8821-X",
		DefaultCondition: domain.ConditionBedridden,
		Beneficiary: domain.BeneficiaryRecord{
			Name:     "Haji Abdullah bin Osman",
			IDNumber: "490112-08-5521",
			Category: "Veteran (Military)",
		},
		Timing: DefaultTiming(),
	}
}

func newTestWorkflow(t *testing.T, delayer ports.Delayer, emitter EventEmitter) *Workflow {
	t.Helper()
	w, err := NewWorkflow(context.Background(), testConfig(), delayer, stubIssuer{}, nil, emitter)
	require.NoError(t, err)
	return w
}

func waitForStage(t *testing.T, w *Workflow, want domain.Stage) {
	t.Helper()
	require.Eventually(t, func() bool {
		return w.Snapshot().Stage == want
	}, 2*time.Second, time.Millisecond, "stage never reached %s", want)
}
