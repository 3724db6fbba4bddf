package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/pencen/internal/domain"
	"github.com/bft-labs/pencen/pkg/log"
)

// Lifecycle errors. ErrNotRunning and ErrAlreadyRunning match the domain
// sentinels under errors.Is.
var (
	ErrNotRunning      = domain.ErrNotRunning
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrShutdownTimeout = errors.New("pencen: shutdown timeout")
)

// ShutdownTimeout is the default maximum time to wait for plugins and
// workers during Stop.
const ShutdownTimeout = 10 * time.Second

// Manager guards the Stopped -> Starting -> Running -> Stopping -> Stopped
// cycle and tracks background workers. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	state    State
	wg       sync.WaitGroup
	logger   log.Logger
	observer Observer
}

// NewManager creates a manager in StateStopped. observer may be nil.
func NewManager(logger log.Logger, observer Observer) *Manager {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Manager{
		state:    StateStopped,
		logger:   logger,
		observer: observer,
	}
}

// State returns the current run state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo attempts to move to a new state.
func (m *Manager) TransitionTo(next State, reason string) error {
	m.mu.Lock()
	prev := m.state
	if !canTransition(prev, next) {
		m.mu.Unlock()
		if prev == StateStopped || prev == StateFailed {
			return fmt.Errorf("%w: cannot go from %s to %s", ErrNotRunning, prev, next)
		}
		return fmt.Errorf("%w: cannot go from %s to %s", ErrAlreadyRunning, prev, next)
	}
	m.state = next
	m.mu.Unlock()

	if m.observer != nil {
		m.observer(prev, next, reason)
	}

	m.logger.Debug("run state transition",
		log.String("from", prev.String()),
		log.String("to", next.String()),
		log.String("reason", reason),
	)
	return nil
}

// CanStart reports whether Start may be called.
func (m *Manager) CanStart() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateStopped || m.state == StateFailed
}

// CanStop reports whether Stop may be called.
func (m *Manager) CanStop() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateRunning
}

// Go runs fn as a tracked worker.
func (m *Manager) Go(fn func()) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		fn()
	}()
}

// WaitWithTimeout waits for all workers to finish.
// Returns ErrShutdownTimeout if the timeout expires first.
func (m *Manager) WaitWithTimeout(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		m.logger.Warn("shutdown timeout, abandoning workers",
			log.Duration("timeout", timeout),
		)
		return ErrShutdownTimeout
	}
}
