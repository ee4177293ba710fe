// Package stats holds the diagnostic counters the controller and its
// reclaimer update. Nothing here participates in the grace-period
// algorithm: every field is a plain atomic counter, snapshotted for
// reporting and never consulted to decide quiescence.
//
// Grounded on detector.PromotionStats: a counter struct updated under
// the same lock as the state it describes and exposed through a
// snapshot getter, used purely to explain the algorithm's behavior after
// the fact.
package stats

import "sync/atomic"

// Stats is a snapshot of the controller's lifetime counters.
type Stats struct {
	TrackersRegistered   uint64
	CallbacksEnqueued    uint64
	CallbacksInvoked     uint64
	GracePeriodsObserved uint64
	ReclaimPasses        uint64
}

// Counters is the live, atomic-backed counter set embedded in a
// controller. Call Snapshot for a point-in-time Stats value.
type Counters struct {
	trackersRegistered   atomic.Uint64
	callbacksEnqueued    atomic.Uint64
	callbacksInvoked     atomic.Uint64
	gracePeriodsObserved atomic.Uint64
	reclaimPasses        atomic.Uint64
}

func (c *Counters) ReaderRegistered()     { c.trackersRegistered.Add(1) }
func (c *Counters) CallbacksAdded(n int)  { c.callbacksEnqueued.Add(uint64(n)) }
func (c *Counters) CallbacksRan(n int)    { c.callbacksInvoked.Add(uint64(n)) }
func (c *Counters) GracePeriodObserved()  { c.gracePeriodsObserved.Add(1) }
func (c *Counters) ReclaimPassCompleted() { c.reclaimPasses.Add(1) }

// Snapshot returns the current counter values.
func (c *Counters) Snapshot() Stats {
	return Stats{
		TrackersRegistered:   c.trackersRegistered.Load(),
		CallbacksEnqueued:    c.callbacksEnqueued.Load(),
		CallbacksInvoked:     c.callbacksInvoked.Load(),
		GracePeriodsObserved: c.gracePeriodsObserved.Load(),
		ReclaimPasses:        c.reclaimPasses.Load(),
	}
}
