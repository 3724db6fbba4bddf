// Package terminal provides an embeddable pension verification terminal.
//
// A Terminal walks one field agent through the disbursement flow: agent
// login, identity card scan, on-site verification (GPS fix, beneficiary
// condition, thumbprint) and the receipt. Hardware is simulated with
// configurable latencies. It can be driven from the pencen CLI or embedded
// as a library.
//
// # Basic Usage
//
//	cfg := terminal.DefaultConfig()
//	cfg.AgentID = "POS-MY-9921"
//
//	t, err := terminal.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := t.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//	defer t.Stop()
//
//	_ = t.Login()
//
// Commands return a [RejectionError] when they are not allowed in the
// current stage. Use errors.Is with [ErrInvalidTransition] or
// [ErrInvalidInput] to tell the two apart. Commands issued while the
// terminal is not running fail with [ErrNotRunning].
//
// # Event Handling
//
// Implement [EventHandler] (embed [BaseEventHandler] for no-op defaults) and
// pass it via [WithEventHandler]. Events are delivered in order and outside
// the workflow lock, so a handler may call back into the Terminal.
//
// # Timing
//
// Every simulated latency lives in [Timing]. [Terminal.SetTiming] replaces
// them at runtime; sub-flows already running keep the values they started
// with. Tests inject a [Delayer] via [WithDelayer] to avoid real waits.
//
// # Plugins
//
//	import "github.com/bft-labs/pencen/plugins/configwatcher"
//	import "github.com/bft-labs/pencen/plugins/metrics"
//
//	t, err := terminal.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.DefaultConfig()),
//	    metrics.WithMetrics(prometheus.NewRegistry()),
//	)
//
// # Lifecycle States
//
// A Terminal is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateFailed]. Use [Terminal.Status] to query it.
package terminal
