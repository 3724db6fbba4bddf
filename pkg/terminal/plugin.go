package terminal

import "context"

// Plugin extends a Terminal. Plugins are initialized in registration order
// during Start and shut down in reverse order during Stop. A plugin that
// also implements EventHandler receives every event.
type Plugin interface {
	Name() string
	Initialize(ctx context.Context, cfg PluginConfig) error
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin gets to work with.
type PluginConfig struct {
	// ConfigPath is the configuration file the terminal was started from.
	// Empty if there is none.
	ConfigPath string

	Logger Logger

	// Timing returns the latencies new sub-flows will use.
	Timing func() Timing

	// SetTiming replaces the latencies for sub-flows started afterwards.
	SetTiming func(Timing) error
}
