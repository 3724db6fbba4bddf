// Package lifecycle provides the run-state machine of an embedded terminal.
//
// A terminal moves through Stopped, Starting, Running and Stopping. A
// failure while starting (a plugin refusing to initialize, say) lands in
// Failed, from which it may be started again.
//
// # Usage
//
//	m := lifecycle.NewManager(logger, nil)
//
//	if !m.CanStart() {
//	    return lifecycle.ErrAlreadyRunning
//	}
//	_ = m.TransitionTo(lifecycle.StateStarting, "Start() called")
//	m.Go(func() { <-ctx.Done() })
//	_ = m.TransitionTo(lifecycle.StateRunning, "started")
//
//	// Graceful shutdown
//	_ = m.TransitionTo(lifecycle.StateStopping, "Stop() called")
//	cancel()
//	if err := m.WaitWithTimeout(lifecycle.ShutdownTimeout); err != nil {
//	    return err
//	}
//	_ = m.TransitionTo(lifecycle.StateStopped, "stopped")
//
// # State Machine
//
// Valid state transitions:
//   - Stopped -> Starting
//   - Starting -> Running, Failed
//   - Running -> Stopping
//   - Stopping -> Stopped, Failed
//   - Failed -> Starting
package lifecycle
