package terminal

import (
	"github.com/bft-labs/pencen/internal/ports"
)

// Delayer suspends a simulated operation. Sleep returns ctx.Err() when the
// context ends first.
type Delayer = ports.Delayer

// ReceiptIssuer produces the receipt for a released disbursement.
type ReceiptIssuer = ports.ReceiptIssuer

// Option configures optional behavior of a Terminal.
type Option func(*options)

type options struct {
	logger   Logger
	handlers []EventHandler
	plugins  []Plugin
	delayer  Delayer
	issuer   ReceiptIssuer
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithEventHandler adds a handler for terminal events. May be given more
// than once; handlers are called in registration order.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		if handler != nil {
			o.handlers = append(o.handlers, handler)
		}
	}
}

// WithPlugin registers a plugin to be initialized when the terminal starts.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithDelayer replaces the wall-clock delayer, e.g. with a scaled or fake one.
func WithDelayer(d Delayer) Option {
	return func(o *options) {
		o.delayer = d
	}
}

// WithReceiptIssuer replaces the default receipt issuer.
func WithReceiptIssuer(issuer ReceiptIssuer) Option {
	return func(o *options) {
		o.issuer = issuer
	}
}
