package configwatcher

import "github.com/bft-labs/pencen/pkg/terminal"

// WithConfigWatcher returns a terminal Option that reloads timing from the
// file in terminal.Config.ConfigPath whenever it changes.
//
// Usage:
//
//	t, err := terminal.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) terminal.Option {
	plugin := New(cfg)
	return terminal.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a terminal Option that enables config
// watching with default settings (debounce 100ms, TOML [timing] table).
//
// Usage:
//
//	t, err := terminal.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() terminal.Option {
	return WithConfigWatcher(DefaultConfig())
}
