package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/bft-labs/pencen/internal/receipt"
	"github.com/bft-labs/pencen/pkg/terminal"
)

// Renderer prints terminal events as text. It is safe for concurrent use;
// events and command output share one writer.
type Renderer struct {
	terminal.BaseEventHandler

	mu   sync.Mutex
	out  io.Writer
	lang language.Tag
}

// NewRenderer returns a Renderer that writes to out and formats amounts for
// lang.
func NewRenderer(out io.Writer, lang language.Tag) *Renderer {
	return &Renderer{out: out, lang: lang}
}

// Printf writes a line to the shared output.
func (r *Renderer) Printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

// Write lets a Renderer be handed to cobra as its output.
func (r *Renderer) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.out.Write(p)
}

func (r *Renderer) OnStageChange(e terminal.StageChangeEvent) {
	r.Printf("%s  (%s)", StepIndicator(e.Current), e.Reason)
	switch e.Current {
	case terminal.StageScan:
		r.Printf("Insert the beneficiary's MyKad and type 'scan'.")
	case terminal.StageVerify:
		r.Printf("Type 'gps' to verify location, then 'thumb' to capture the thumbprint.")
	}
}

func (r *Renderer) OnLocationPhase(e terminal.LocationPhaseEvent) {
	r.Printf("  GPS: %s", e.Phase)
}

func (r *Renderer) OnLocationVerified() {
	r.Printf("  GPS: Location Verified")
}

func (r *Renderer) OnConditionChange(e terminal.ConditionChangeEvent) {
	r.Printf("  Condition: %s", e.Condition.Label())
	if e.Condition == terminal.ConditionDeceased {
		r.Printf("  ! %s", terminal.DeceasedNotice)
	}
}

func (r *Renderer) OnCaptureProgress(e terminal.CaptureProgressEvent) {
	if e.Progress%25 == 0 {
		r.Printf("  Thumbprint: %s", ProgressBar(e.Progress))
	}
}

func (r *Renderer) OnCaptureConfirmed() {
	r.Printf("  Thumbprint: Identity Confirmed")
}

func (r *Renderer) OnCaptureAborted(e terminal.CaptureAbortedEvent) {
	r.Printf("  Thumbprint: capture aborted (%s)", e.Reason)
}

func (r *Renderer) OnReceiptIssued(e terminal.ReceiptIssuedEvent) {
	r.Printf("%s", FormatReceipt(e.Receipt, r.lang))
}

func (r *Renderer) OnCommandRejected(e terminal.CommandRejectedEvent) {
	r.Printf("  rejected: %v", e.Err)
}

// StepIndicator renders the four-step header with the current step in
// brackets, e.g. "1 Agent Login > [2 Smart Card] > 3 Biometric > 4 Receipt".
func StepIndicator(current terminal.Stage) string {
	parts := make([]string, 0, 4)
	for i, s := range []terminal.Stage{terminal.StageLogin, terminal.StageScan, terminal.StageVerify, terminal.StageSuccess} {
		label := fmt.Sprintf("%d %s", i+1, s.Label())
		if s == current {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " > ")
}

// ProgressBar renders progress as a 20-cell bar.
func ProgressBar(progress int) string {
	const width = 20
	filled := min(width, max(0, progress*width/100))
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", width-filled), progress)
}

// FormatReceipt renders a receipt for the operator.
func FormatReceipt(r terminal.TransactionReceipt, lang language.Tag) string {
	var b strings.Builder
	b.WriteString("Pension Released\n")
	fmt.Fprintf(&b, "  Transaction ID : %s\n", r.TransactionID)
	fmt.Fprintf(&b, "  Beneficiary    : %s (%s)\n", r.BeneficiaryName, r.BeneficiaryID)
	fmt.Fprintf(&b, "  Agent          : %s\n", r.AgentID)
	fmt.Fprintf(&b, "  Amount         : %s\n", receipt.FormatAmount(r.Amount, lang))
	fmt.Fprintf(&b, "  Time           : %s", r.Timestamp.Format("2006-01-02 15:04:05 MST"))
	return b.String()
}

// FormatSnapshot renders the full terminal state for the status command.
func FormatSnapshot(s terminal.Snapshot, lang language.Tag) string {
	var b strings.Builder
	b.WriteString(StepIndicator(s.Stage) + "\n")
	fmt.Fprintf(&b, "  Agent: %s\n", s.AgentID)

	switch s.Stage {
	case terminal.StageLogin:
		if s.Authenticating {
			b.WriteString("  Authenticating...\n")
		}
	case terminal.StageScan:
		if s.ScanBusy {
			b.WriteString("  Reading Chip...\n")
		} else {
			b.WriteString("  Waiting for card\n")
		}
	case terminal.StageVerify:
		fmt.Fprintf(&b, "  Beneficiary: %s (%s)", s.Beneficiary.Name, s.Beneficiary.IDNumber)
		if s.Beneficiary.Category != "" {
			fmt.Fprintf(&b, " [%s]", s.Beneficiary.Category)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Location: %s\n", locationText(s.Location))
		fmt.Fprintf(&b, "  Condition: %s\n", s.Beneficiary.Condition.Label())
		if s.Beneficiary.Condition == terminal.ConditionDeceased {
			fmt.Fprintf(&b, "  ! %s\n", terminal.DeceasedNotice)
		}
		fmt.Fprintf(&b, "  Thumbprint: %s %s\n", s.Biometric.State, ProgressBar(s.Biometric.Progress))
		if s.CaptureAllowed() {
			b.WriteString("  Ready for thumbprint\n")
		}
	case terminal.StageSuccess:
		if s.Receipt != nil {
			b.WriteString(FormatReceipt(*s.Receipt, lang) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func locationText(l terminal.LocationCheck) string {
	switch l.Status {
	case terminal.LocationAcquiring:
		return l.Phase.String()
	case terminal.LocationVerified:
		return "Verified"
	default:
		return "Not checked"
	}
}
