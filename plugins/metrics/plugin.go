// Package metrics exports terminal activity as Prometheus metrics.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bft-labs/pencen/pkg/terminal"
)

// Plugin records terminal events into a Prometheus registry.
type Plugin struct {
	terminal.BaseEventHandler

	StageTransitions *prometheus.CounterVec
	CommandsRejected *prometheus.CounterVec
	ReceiptsIssued   prometheus.Counter
	CapturesAborted  prometheus.Counter
	LocationVerified prometheus.Counter
	CaptureProgress  prometheus.Gauge
	CurrentStage     prometheus.Gauge

	// Time from entering Scan to entering Success.
	VerificationDuration prometheus.Histogram

	now        func() time.Time
	mu         sync.Mutex
	cycleStart time.Time
}

// New registers the terminal metrics with reg. Registering twice on the same
// registry panics, as promauto does.
func New(reg prometheus.Registerer) *Plugin {
	f := promauto.With(reg)
	return &Plugin{
		StageTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pencen_stage_transitions_total",
			Help: "Workflow stage transitions by source and target stage",
		}, []string{"from", "to"}),

		CommandsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pencen_commands_rejected_total",
			Help: "Commands refused by the workflow",
		}, []string{"command"}),

		ReceiptsIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "pencen_receipts_issued_total",
			Help: "Pension disbursements released",
		}),

		CapturesAborted: f.NewCounter(prometheus.CounterOpts{
			Name: "pencen_captures_aborted_total",
			Help: "Biometric captures cancelled before confirmation",
		}),

		LocationVerified: f.NewCounter(prometheus.CounterOpts{
			Name: "pencen_location_verified_total",
			Help: "Completed geofence checks",
		}),

		CaptureProgress: f.NewGauge(prometheus.GaugeOpts{
			Name: "pencen_capture_progress_percent",
			Help: "Progress of the current thumbprint capture",
		}),

		CurrentStage: f.NewGauge(prometheus.GaugeOpts{
			Name: "pencen_current_stage",
			Help: "Current workflow stage (0=Login, 1=Scan, 2=Verify, 3=Success)",
		}),

		VerificationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "pencen_verification_duration_seconds",
			Help:    "Time from card scan to released pension",
			Buckets: []float64{1, 2.5, 5, 10, 15, 30, 60, 120, 300},
		}),

		now: time.Now,
	}
}

// WithMetrics returns a terminal Option that records metrics into reg.
func WithMetrics(reg prometheus.Registerer) terminal.Option {
	return terminal.WithPlugin(New(reg))
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "metrics"
}

// Initialize resets the gauges for a new session.
func (p *Plugin) Initialize(context.Context, terminal.PluginConfig) error {
	p.CurrentStage.Set(float64(terminal.StageLogin))
	p.CaptureProgress.Set(0)
	return nil
}

// Shutdown is a no-op; the registry outlives the terminal.
func (p *Plugin) Shutdown(context.Context) error {
	return nil
}

func (p *Plugin) OnStageChange(e terminal.StageChangeEvent) {
	p.StageTransitions.WithLabelValues(e.Previous.String(), e.Current.String()).Inc()
	p.CurrentStage.Set(float64(e.Current))
	p.CaptureProgress.Set(0)

	p.mu.Lock()
	defer p.mu.Unlock()
	switch e.Current {
	case terminal.StageScan:
		p.cycleStart = p.now()
	case terminal.StageSuccess:
		if !p.cycleStart.IsZero() {
			p.VerificationDuration.Observe(p.now().Sub(p.cycleStart).Seconds())
		}
		p.cycleStart = time.Time{}
	case terminal.StageLogin:
		p.cycleStart = time.Time{}
	}
}

func (p *Plugin) OnLocationVerified() {
	p.LocationVerified.Inc()
}

func (p *Plugin) OnCaptureProgress(e terminal.CaptureProgressEvent) {
	p.CaptureProgress.Set(float64(e.Progress))
}

func (p *Plugin) OnCaptureAborted(terminal.CaptureAbortedEvent) {
	p.CapturesAborted.Inc()
	p.CaptureProgress.Set(0)
}

func (p *Plugin) OnReceiptIssued(terminal.ReceiptIssuedEvent) {
	p.ReceiptsIssued.Inc()
}

func (p *Plugin) OnCommandRejected(e terminal.CommandRejectedEvent) {
	p.CommandsRejected.WithLabelValues(e.Command).Inc()
}

var (
	_ terminal.Plugin       = (*Plugin)(nil)
	_ terminal.EventHandler = (*Plugin)(nil)
)
