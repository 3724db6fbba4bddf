package app

import (
	"context"
	"time"
)

// taskScope is a cancellation scope for timer-driven work. Every stage owns
// one; a biometric capture owns a child of its stage's scope.
type taskScope struct {
	ctx    context.Context
	cancel context.CancelFunc
	w      *Workflow
}

func (w *Workflow) newScope(parent context.Context) *taskScope {
	ctx, cancel := context.WithCancel(parent)
	return &taskScope{ctx: ctx, cancel: cancel, w: w}
}

func (s *taskScope) child() *taskScope {
	return s.w.newScope(s.ctx)
}

// close cancels the scope. Caller holds w.mu.
func (s *taskScope) close() {
	s.cancel()
}

func (s *taskScope) live() bool {
	return s.ctx.Err() == nil
}

// spawn runs fn on its own goroutine; Close waits for it.
func (s *taskScope) spawn(fn func()) {
	s.w.tasks.Add(1)
	go func() {
		defer s.w.tasks.Done()
		fn()
	}()
}

// sleep suspends until d has elapsed. It reports false when the scope ended
// first.
func (s *taskScope) sleep(d time.Duration) bool {
	return s.w.delayer.Sleep(s.ctx, d) == nil
}

// apply runs fn under the workflow lock if the scope is still live.
// Scopes are cancelled under that same lock, so a late timer can never
// touch a stage that has already been left.
func (s *taskScope) apply(fn func()) bool {
	s.w.mu.Lock()
	if !s.live() {
		s.w.mu.Unlock()
		return false
	}
	fn()
	s.w.mu.Unlock()
	s.w.flush()
	return true
}
