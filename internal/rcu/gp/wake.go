package gp

import (
	"sync"
	"time"
)

// wakeEdge is the single-shot, resettable event the reclaimer waits on.
// Set both wakes the reclaimer early and requests shutdown; Wait reports
// which happened (signaled) versus an ordinary periodic timeout, which
// is how the reclaim loop tells a deliberate wake from its own tick.
//
// There is no direct stdlib or pack equivalent of a resettable
// "set/wait-with-timeout" event, so this is built from a channel closed
// exactly once per generation plus a timer, the same primitives the
// teacher's examples/channel_sync demo uses for producer/consumer
// signaling.
type wakeEdge struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func newWakeEdge() *wakeEdge {
	w := &wakeEdge{}
	w.reset()
	return w
}

// reset starts a new generation: the edge is clear again.
func (w *wakeEdge) reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ch = make(chan struct{})
	w.closed = false
}

// set closes the current generation's channel, idempotently.
func (w *wakeEdge) set() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
}

// wait blocks until set is called or timeout elapses, reporting which.
func (w *wakeEdge) wait(timeout time.Duration) (signaled bool) {
	w.mu.Lock()
	ch := w.ch
	w.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-ch:
		return true
	case <-timer.C:
		return false
	}
}
