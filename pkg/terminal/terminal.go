package terminal

import (
	"context"
	"sync"

	"github.com/bft-labs/pencen/internal/adapters/clock"
	"github.com/bft-labs/pencen/internal/app"
	"github.com/bft-labs/pencen/internal/ports"
	"github.com/bft-labs/pencen/internal/receipt"
	"github.com/bft-labs/pencen/pkg/lifecycle"
	"github.com/bft-labs/pencen/pkg/log"
)

// Terminal is an embeddable pension verification terminal.
// Use New() to create an instance, then Start() to accept commands.
type Terminal struct {
	config    Config
	opts      options
	lifecycle *lifecycle.Manager
	logger    ports.Logger
	plugins   []Plugin
	handlers  fanout

	mu       sync.RWMutex
	workflow *app.Workflow
	cancel   context.CancelFunc
	timing   Timing
}

// New creates a new Terminal with the given configuration.
// The instance is created stopped; call Start() to begin a session.
func New(cfg Config, opts ...Option) (*Terminal, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if o.delayer == nil {
		o.delayer = clock.NewDelayer()
	}
	if o.issuer == nil {
		amount := cfg.Amount
		if amount.MinorUnits == 0 {
			amount = receipt.DefaultAmount
		}
		o.issuer = receipt.NewIssuer(receipt.WithAmount(amount))
	}

	handlers := append(fanout(nil), o.handlers...)
	for _, p := range o.plugins {
		if h, ok := p.(EventHandler); ok {
			handlers = append(handlers, h)
		}
	}

	return &Terminal{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle.NewManager(logger, nil),
		logger:    logger,
		plugins:   o.plugins,
		handlers:  handlers,
		timing:    cfg.Timing,
	}, nil
}

// Start opens a session at the Login stage and initializes plugins.
// Cancelling ctx ends the session's timers; Stop still has to be called.
func (t *Terminal) Start(ctx context.Context) error {
	if err := t.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)

	wcfg := t.config.workflowConfig()
	wcfg.Timing = t.Timing()

	var emitter app.EventEmitter
	if len(t.handlers) > 0 {
		emitter = t.handlers
	}
	w, err := app.NewWorkflow(runCtx, wcfg, t.opts.delayer, t.opts.issuer, t.logger, emitter)
	if err != nil {
		cancel()
		_ = t.lifecycle.TransitionTo(lifecycle.StateFailed, "workflow: "+err.Error())
		return err
	}

	t.mu.Lock()
	t.workflow = w
	t.cancel = cancel
	t.mu.Unlock()

	pluginCfg := PluginConfig{
		ConfigPath: t.config.ConfigPath,
		Logger:     t.logger,
		Timing:     t.Timing,
		SetTiming:  t.SetTiming,
	}
	for i, p := range t.plugins {
		if err := p.Initialize(runCtx, pluginCfg); err != nil {
			t.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			t.shutdownPlugins(t.plugins[:i])
			t.teardown()
			_ = t.lifecycle.TransitionTo(lifecycle.StateFailed, "plugin init failed: "+p.Name())
			return err
		}
		t.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	t.lifecycle.Go(func() { <-runCtx.Done() })

	return t.lifecycle.TransitionTo(lifecycle.StateRunning, "session open")
}

// Stop ends the session: outstanding timers are cancelled and plugins are
// shut down in reverse order.
func (t *Terminal) Stop() error {
	if err := t.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		return err
	}

	t.teardown()
	err := t.lifecycle.WaitWithTimeout(lifecycle.ShutdownTimeout)
	t.shutdownPlugins(t.plugins)

	if err != nil {
		_ = t.lifecycle.TransitionTo(lifecycle.StateFailed, "shutdown timeout")
		return err
	}
	return t.lifecycle.TransitionTo(lifecycle.StateStopped, "graceful shutdown")
}

// Running reports whether the terminal accepts commands.
func (t *Terminal) Running() bool {
	return t.lifecycle.State() == lifecycle.StateRunning
}

// Status returns the run state.
func (t *Terminal) Status() State {
	return t.lifecycle.State()
}

func (t *Terminal) teardown() {
	t.mu.Lock()
	w, cancel := t.workflow, t.cancel
	t.workflow, t.cancel = nil, nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if w != nil {
		w.Close()
	}
}

func (t *Terminal) shutdownPlugins(plugins []Plugin) {
	ctx, cancel := context.WithTimeout(context.Background(), lifecycle.ShutdownTimeout)
	defer cancel()

	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := p.Shutdown(ctx); err != nil {
			t.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			continue
		}
		t.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
	}
}

func (t *Terminal) session() (*app.Workflow, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.workflow == nil {
		return nil, ErrNotRunning
	}
	return t.workflow, nil
}

// Snapshot returns the current session state.
func (t *Terminal) Snapshot() (Snapshot, error) {
	w, err := t.session()
	if err != nil {
		return Snapshot{}, err
	}
	return w.Snapshot(), nil
}

// Timing returns the latencies new sub-flows will use.
func (t *Terminal) Timing() Timing {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.timing
}

// SetTiming replaces the latencies. Sub-flows already running keep theirs.
// Works whether or not a session is open.
func (t *Terminal) SetTiming(timing Timing) error {
	if err := timing.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	t.timing = timing
	w := t.workflow
	t.mu.Unlock()

	if w != nil {
		return w.SetTiming(timing)
	}
	return nil
}

// SetAgentID edits the operator id. Login stage only.
func (t *Terminal) SetAgentID(id string) error {
	return t.do((*app.Workflow).SetAgentID, id)
}

// Login submits the operator credentials.
func (t *Terminal) Login() error {
	return t.run((*app.Workflow).Login)
}

// BeginScan starts reading the beneficiary's identity card.
func (t *Terminal) BeginScan() error {
	return t.run((*app.Workflow).BeginScan)
}

// AcquireLocation starts the GPS fix.
func (t *Terminal) AcquireLocation() error {
	return t.run((*app.Workflow).AcquireLocation)
}

// SetCondition records the beneficiary condition by name.
func (t *Terminal) SetCondition(value string) error {
	return t.do((*app.Workflow).SetConditionStatus, value)
}

// BeginBiometricCapture starts the thumbprint capture.
func (t *Terminal) BeginBiometricCapture() error {
	return t.run((*app.Workflow).BeginBiometricCapture)
}

// Logout returns to Login, keeping the agent id.
func (t *Terminal) Logout() error {
	return t.run((*app.Workflow).Logout)
}

// StartNewCycle goes from Success to Scan for the next beneficiary.
func (t *Terminal) StartNewCycle() error {
	return t.run((*app.Workflow).StartNewCycle)
}

func (t *Terminal) run(cmd func(*app.Workflow) error) error {
	w, err := t.session()
	if err != nil {
		return err
	}
	return cmd(w)
}

func (t *Terminal) do(cmd func(*app.Workflow, string) error, arg string) error {
	w, err := t.session()
	if err != nil {
		return err
	}
	return cmd(w, arg)
}
