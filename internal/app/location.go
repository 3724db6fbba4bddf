package app

import (
	"time"

	"github.com/bft-labs/pencen/internal/domain"
)

// locationFlow simulates the GPS fix: searching, triangulating, geofence
// check, then Verified. Phases are chained one after another on a single
// goroutine, so they can only be visited in order.
type locationFlow struct {
	check   domain.LocationCheck
	publish func(event)
}

func (f *locationFlow) acquire(sc *taskScope, delays [domain.LocationPhaseCount]time.Duration) error {
	switch f.check.Status {
	case domain.LocationAcquiring:
		return domain.RejectTransition("acquire location", "location fix already in progress")
	case domain.LocationVerified:
		return domain.RejectTransition("acquire location", "location already verified")
	}

	f.check = domain.LocationCheck{Status: domain.LocationAcquiring, Phase: domain.PhaseSearching}
	f.publishPhase()

	sc.spawn(func() {
		for i, d := range delays {
			if !sc.sleep(d) {
				return
			}
			last := i == len(delays)-1
			ok := sc.apply(func() {
				if last {
					f.check.Status = domain.LocationVerified
					f.publish(func(e EventEmitter) { e.OnLocationVerified() })
					return
				}
				f.check.Phase++
				f.publishPhase()
			})
			if !ok {
				return
			}
		}
	})
	return nil
}

func (f *locationFlow) publishPhase() {
	phase := f.check.Phase
	f.publish(func(e EventEmitter) { e.OnLocationPhase(phase) })
}
