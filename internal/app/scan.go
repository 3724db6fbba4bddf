package app

import (
	"time"

	"github.com/bft-labs/pencen/internal/domain"
)

// scanFlow simulates reading the identity card. At most one read is in
// flight; the read always succeeds.
type scanFlow struct {
	busy       bool
	onComplete func()
}

func (f *scanFlow) begin(sc *taskScope, duration time.Duration) error {
	if f.busy {
		return domain.RejectTransition("begin scan", "card read already in progress")
	}
	f.busy = true

	sc.spawn(func() {
		if !sc.sleep(duration) {
			return
		}
		sc.apply(func() {
			f.busy = false
			f.onComplete()
		})
	})
	return nil
}
