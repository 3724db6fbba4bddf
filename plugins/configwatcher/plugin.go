// Package configwatcher reloads the terminal's simulated latencies when its
// TOML configuration file changes.
package configwatcher

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/pencen/internal/cliconfig"
	"github.com/bft-labs/pencen/pkg/log"
	"github.com/bft-labs/pencen/pkg/terminal"
)

// ParseFunc reads the timing from the file at path. current is the timing in
// effect; keys the file leaves out should keep their current value.
type ParseFunc func(path string, current terminal.Timing) (terminal.Timing, error)

// Plugin implements config watching functionality.
// It monitors the configuration file's directory and re-applies the
// [timing] table when the file is written or replaced.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	debounceDelay time.Duration
	parse         ParseFunc

	// Runtime state
	path      string
	logger    terminal.Logger
	timing    func() terminal.Timing
	setTiming func(terminal.Timing) error
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	debounce  *time.Timer
	closed    bool
	reloads   int
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Editors often write a file in several steps.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Parse reads the timing from the file.
	// Default: ParseTimingFile
	Parse ParseFunc
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
		Parse:         ParseTimingFile,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	if cfg.Parse == nil {
		cfg.Parse = ParseTimingFile
	}

	return &Plugin{
		debounceDelay: cfg.DebounceDelay,
		parse:         cfg.Parse,
	}
}

// ParseTimingFile applies the file's [timing] table on top of current.
func ParseTimingFile(path string, current terminal.Timing) (terminal.Timing, error) {
	var cfg cliconfig.Config
	cfg.SetTiming(current)
	return cliconfig.ReloadTiming(path, cfg, nil)
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg terminal.PluginConfig) error {
	p.mu.Lock()
	p.path = cfg.ConfigPath
	p.logger = cfg.Logger
	p.timing = cfg.Timing
	p.setTiming = cfg.SetTiming
	p.mu.Unlock()

	if p.logger == nil {
		p.logger = log.NewNoopLogger()
	}
	if p.path == "" || p.setTiming == nil {
		p.logger.Warn("config watcher disabled: no config file")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	// Watch the directory: editors replace the file, which drops a file watch.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return err
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.closed = false
	p.mu.Unlock()

	p.logger.Info("config watcher started", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher. A reload already applying the file is
// waited for; none starts after Shutdown returns.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.closed = true
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reloads returns how many times the timing was applied from the file.
func (p *Plugin) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.mu.Lock()
		if p.closed || ctx.Err() != nil {
			p.mu.Unlock()
			return
		}
		p.wg.Add(1)
		p.mu.Unlock()
		defer p.wg.Done()
		p.reload()
	})
}

// reload parses the file and applies the result. A file that fails to parse
// or validate leaves the timing unchanged.
func (p *Plugin) reload() {
	var current terminal.Timing
	if p.timing != nil {
		current = p.timing()
	} else {
		current = terminal.DefaultTiming()
	}

	next, err := p.parse(p.path, current)
	if err != nil {
		p.logger.Warn("config reload rejected", log.String("path", p.path), log.Err(err))
		return
	}
	if next == current {
		p.logger.Debug("config reload: timing unchanged")
		return
	}
	if err := p.setTiming(next); err != nil {
		p.logger.Warn("config reload rejected", log.String("path", p.path), log.Err(err))
		return
	}

	p.mu.Lock()
	p.reloads++
	p.mu.Unlock()

	p.logger.Info("timing reloaded",
		log.Duration("login_delay", next.LoginDelay),
		log.Duration("scan_duration", next.ScanDuration),
		log.Duration("capture_tick", next.CaptureTick),
		log.Int("capture_step", next.CaptureStep),
	)
}

// Ensure Plugin implements terminal.Plugin.
var _ terminal.Plugin = (*Plugin)(nil)
