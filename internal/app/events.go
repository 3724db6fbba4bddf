package app

import "github.com/bft-labs/pencen/internal/domain"

// EventEmitter receives workflow notifications.
// Calls happen outside the workflow lock, in the order the changes were made,
// so implementations may read Snapshot or issue commands.
type EventEmitter interface {
	OnStageChange(previous, current domain.Stage, reason string)
	OnLocationPhase(phase domain.LocationPhase)
	OnLocationVerified()
	OnConditionChange(condition domain.ConditionStatus)
	OnCaptureProgress(progress int)
	OnCaptureConfirmed()
	OnCaptureAborted(reason string)
	OnReceiptIssued(receipt domain.TransactionReceipt)
	OnCommandRejected(command string, err error)
}

type event func(EventEmitter)

// publish queues an event for delivery. Caller holds w.mu.
func (w *Workflow) publish(e event) {
	if w.emitter == nil {
		return
	}
	w.pending = append(w.pending, e)
}

// flush delivers queued events without holding w.mu. One goroutine delivers
// at a time; a caller that loses the race leaves its events to the active
// deliverer, which keeps draining until the queue is empty.
func (w *Workflow) flush() {
	for {
		if !w.dispatchMu.TryLock() {
			return
		}
		for {
			w.mu.Lock()
			batch := w.pending
			w.pending = nil
			w.mu.Unlock()

			if len(batch) == 0 {
				break
			}
			for _, e := range batch {
				e(w.emitter)
			}
		}
		w.dispatchMu.Unlock()

		w.mu.Lock()
		more := len(w.pending) > 0
		w.mu.Unlock()
		if !more {
			return
		}
	}
}
