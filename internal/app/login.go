package app

import (
	"time"

	"github.com/bft-labs/pencen/internal/domain"
)

// loginFlow simulates the authentication round trip at the Login stage.
type loginFlow struct {
	authenticating bool
	onSubmitted    func()
}

func (f *loginFlow) submit(sc *taskScope, delay time.Duration) error {
	if f.authenticating {
		return domain.RejectTransition("login", "authentication already in progress")
	}
	f.authenticating = true

	sc.spawn(func() {
		if !sc.sleep(delay) {
			return
		}
		sc.apply(func() {
			f.authenticating = false
			f.onSubmitted()
		})
	})
	return nil
}
