package app

import "github.com/bft-labs/pencen/internal/domain"

// captureFlow simulates the thumbprint capture. Progress only grows while
// scanning, Confirmed is entered once at 100%, and onVerified fires once
// per capture after the confirmation delay.
type captureFlow struct {
	capture    domain.BiometricCapture
	scope      *taskScope
	publish    func(event)
	onVerified func()
}

// begin starts a capture under a child of parent. eligible is evaluated now,
// never cached.
func (f *captureFlow) begin(parent *taskScope, t Timing, eligible func() error) error {
	switch f.capture.State {
	case domain.CaptureScanning:
		return domain.RejectTransition("begin capture", "capture already in progress")
	case domain.CaptureConfirmed:
		return domain.RejectTransition("begin capture", "capture already confirmed")
	}
	if err := eligible(); err != nil {
		return err
	}

	f.capture = domain.BiometricCapture{State: domain.CaptureScanning}
	sc := parent.child()
	f.scope = sc

	tick, step, confirmDelay := t.CaptureTick, t.CaptureStep, t.ConfirmDelay
	sc.spawn(func() {
		confirmed := false
		for !confirmed {
			if !sc.sleep(tick) {
				return
			}
			ok := sc.apply(func() {
				f.capture.Progress = min(domain.CaptureComplete, f.capture.Progress+step)
				progress := f.capture.Progress
				f.publish(func(e EventEmitter) { e.OnCaptureProgress(progress) })

				if progress == domain.CaptureComplete {
					f.capture.State = domain.CaptureConfirmed
					f.publish(func(e EventEmitter) { e.OnCaptureConfirmed() })
					confirmed = true
				}
			})
			if !ok {
				return
			}
		}

		if !sc.sleep(confirmDelay) {
			return
		}
		sc.apply(f.onVerified)
	})
	return nil
}

// abort cancels a capture that is still scanning and returns it to Idle.
func (f *captureFlow) abort(reason string) bool {
	if f.capture.State != domain.CaptureScanning {
		return false
	}
	f.scope.close()
	f.capture = domain.BiometricCapture{}
	f.publish(func(e EventEmitter) { e.OnCaptureAborted(reason) })
	return true
}
