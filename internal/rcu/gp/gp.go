// Package gp implements the RCU controller: the registry of live readers,
// the two callback queues, the grace-period detector, and the background
// reclaimer goroutine that drains the pending queue once quiescence is
// observed.
//
// This is the hard part of the primitive — a lock-free cooperation
// between the reader fast paths in package reader and a reclaimer that
// infers quiescence without ever forcing a reader to take a lock.
// Grounded on detector.Detector (global state held behind one mutex,
// counters kept alongside it, options struct for configuration) and on
// epoch.Epoch's doc comments, which explain *why* each ordering is safe
// rather than just what it does — the same register-and-explain style
// this package's grace-period comments follow.
package gp

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kolkov/rcu/internal/rcu/list"
	"github.com/kolkov/rcu/internal/rcu/reader"
	"github.com/kolkov/rcu/internal/rcu/stats"
)

// defaultTick is the reclaimer's periodic polling interval, matching the
// ~8ms granularity the spec observed in the source implementation.
const defaultTick = 8 * time.Millisecond

// Config configures a Controller. The zero Config is valid: TickInterval
// defaults to defaultTick and Logger defaults to a no-op logger.
type Config struct {
	// TickInterval is how long the reclaimer waits on the wake edge
	// between polls when there is nothing to do. Tune this down for
	// latency-sensitive reclamation, up to reduce wakeups.
	TickInterval time.Duration

	// Logger receives one structured entry per reclaimer pass
	// transition. Defaults to zap.NewNop() — the teacher never wires a
	// logger, but other_examples/edirooss-zmux-server's *zap.Logger
	// field (defaulting to zap.NewNop()) is the shape adopted here.
	Logger *zap.Logger

	// Allocator is a node allocator stored with the controller's
	// configuration. The controller itself never calls it, and
	// list.Toggle does not consult it: Toggle takes its allocator as an
	// argument and falls back to new(list.Node) when that argument is nil.
	Allocator func() *list.Node
}

func (c Config) withDefaults() Config {
	if c.TickInterval <= 0 {
		c.TickInterval = defaultTick
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Allocator == nil {
		c.Allocator = func() *list.Node { return new(list.Node) }
	}
	return c
}

// Callback is a deferred reclamation action: fn(arg) runs exactly once,
// from the reclaimer goroutine, after a grace period has elapsed
// relative to the Call that enqueued it. arg is an opaque payload owned
// by the caller at enqueue time and transferred to fn at invocation.
type Callback struct {
	fn  func(arg any)
	arg any
}

// trackerEntry is the controller's non-owning record of one registered
// reader. quiescent is scratch state for a single grace-period attempt;
// it is not meaningful between attempts (it is cleared whenever an
// attempt completes).
type trackerEntry struct {
	reader    *reader.Reader
	quiescent bool
}

// Controller is the RCU registry, callback queues, and reclaimer.
//
// At most one reclaimer goroutine is ever active. next is touched only
// by the reclaimer; callbacks is appended to only by Call and is only
// ever swapped into next when next is empty.
type Controller struct {
	cfg Config

	mu        sync.Mutex
	trackers  []*trackerEntry
	callbacks []Callback
	next      []Callback
	running   bool

	wake *wakeEdge
	wg   sync.WaitGroup

	counters stats.Counters
}

// New constructs a controller with empty trackers and queues. No
// background reclaimer runs until StartBackground is called.
func New(cfg Config) *Controller {
	return &Controller{
		cfg:  cfg.withDefaults(),
		wake: newWakeEdge(),
	}
}

// AddReader registers r with the controller. r must not already be
// registered — doing so is a protocol violation and panics.
func (c *Controller) AddReader(r *reader.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.trackers {
		if t.reader == r {
			panic("rcu: reader registered twice")
		}
	}
	c.trackers = append(c.trackers, &trackerEntry{reader: r})
	c.counters.ReaderRegistered()
}

// RemoveReader unregisters r, which must be registered and must have
// nesting == 0 (the spec forbids removing a reader while it still holds
// a read section). Uses swap-remove, so tracker order is not preserved.
func (c *Controller) RemoveReader(r *reader.Reader) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, t := range c.trackers {
		if t.reader == r {
			if r.Nesting() != 0 {
				panic("rcu: removing reader still inside a read section")
			}
			last := len(c.trackers) - 1
			c.trackers[i] = c.trackers[last]
			c.trackers[last] = nil
			c.trackers = c.trackers[:last]
			return
		}
	}
	panic("rcu: removing unregistered reader")
}

// Call enqueues fn(arg) to run at most once, from the reclaimer
// goroutine, after a full grace period has elapsed.
func (c *Controller) Call(fn func(arg any), arg any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.callbacks = append(c.callbacks, Callback{fn: fn, arg: arg})
	c.counters.CallbacksAdded(1)
}

// StartBackground spawns the reclaimer goroutine. Panics if one is
// already running.
func (c *Controller) StartBackground() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		panic("rcu: background reclaimer already running")
	}
	c.running = true
	c.wake.reset()
	c.mu.Unlock()

	c.wg.Add(1)
	go c.reclaimLoop()
}

// StopBackground signals the wake edge and joins the reclaimer. The
// reclaimer invokes any callbacks that have already passed a grace
// period before returning; callbacks enqueued but not yet observed
// quiescent may remain undrained and are the caller's responsibility.
// A no-op if no reclaimer is running.
func (c *Controller) StopBackground() {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if !running {
		return
	}

	c.wake.set()
	c.wg.Wait()

	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Deinit stops the background reclaimer and releases internal storage.
// Panics if any registered reader still has nesting > 0.
func (c *Controller) Deinit() {
	c.StopBackground()

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range c.trackers {
		if t.reader.Nesting() != 0 {
			panic("rcu: deinit with an active reader")
		}
	}
	c.trackers = nil
	c.callbacks = nil
	c.next = nil
}

// Stats returns a snapshot of the controller's diagnostic counters.
func (c *Controller) Stats() stats.Stats {
	return c.counters.Snapshot()
}

// reclaimLoop is the background reclaimer. It implements the protocol
// from spec §4.3 literally: wait, swap callbacks into next if next is
// empty, evaluate quiescence, drain on success, loop. Shutdown is
// distinguished from a spurious or periodic wake only at the point where
// next is (still) empty: a signaled wake with non-empty next keeps
// draining instead of exiting, so a pass already in flight always gets a
// chance to finish publishing its callbacks.
func (c *Controller) reclaimLoop() {
	defer c.wg.Done()

	for {
		signaled := c.wake.wait(c.cfg.TickInterval)

		c.mu.Lock()
		setPin := false
		if len(c.next) == 0 && len(c.callbacks) > 0 {
			c.next, c.callbacks = c.callbacks, nil
			setPin = true
		}

		if len(c.next) == 0 {
			c.mu.Unlock()
			if signaled {
				return
			}
			continue
		}

		c.counters.ReclaimPassCompleted()
		complete := c.evaluateGracePeriod(setPin)
		if complete {
			for _, t := range c.trackers {
				t.quiescent = false
			}
			// Full fence: every reader whose pin the loop above
			// observed cleared has, since setting pin, executed an
			// outermost Unlock (itself a full fence) — so any memory
			// operation that reader performed before that Unlock
			// happens-before this point, and therefore before the
			// callback invocations below.
			runtimeFence()

			drained := c.next
			c.next = nil
			c.mu.Unlock()

			c.cfg.Logger.Info("rcu: grace period complete, draining callbacks",
				zap.Int("callbacks", len(drained)),
				zap.Bool("initiating_pass", setPin),
			)
			for _, cb := range drained {
				cb.fn(cb.arg)
			}
			c.counters.CallbacksRan(len(drained))
			c.counters.GracePeriodObserved()
		} else {
			c.mu.Unlock()
			c.cfg.Logger.Debug("rcu: grace period still pending",
				zap.Int("trackers", len(c.trackers)),
				zap.Bool("initiating_pass", setPin),
			)
		}
	}
}

// evaluateGracePeriod scans every tracker not already marked quiescent
// this attempt. On the initiating pass (setPin) it pins every such
// reader, requesting that reader's next outermost Unlock clear pin. On a
// continuation pass it instead checks whether pin has already cleared —
// evidence the reader passed through a zero-nesting point since it was
// pinned. Either way, a reader currently observed at nesting == 0 holds
// no live references and is immediately quiescent, regardless of pin.
//
// Must be called with c.mu held.
func (c *Controller) evaluateGracePeriod(setPin bool) bool {
	allQuiescent := true
	for _, t := range c.trackers {
		if t.quiescent {
			continue
		}

		if setPin {
			t.reader.SetPin(true)
		} else if !t.reader.Pin() {
			t.quiescent = true
			continue
		}

		if t.reader.Nesting() == 0 {
			t.quiescent = true
			continue
		}

		allQuiescent = false
	}
	return allQuiescent
}

// runtimeFence is the full fence required between clearing quiescent
// state and invoking callbacks. Go's atomic package already gives
// sequentially consistent ordering among atomic operations (the loads
// and stores in package reader and package list), so there is no
// separate fence instruction to issue in the runtime sense; this
// function exists so the fence the spec calls for has a single, named
// place in the code instead of being implicit.
func runtimeFence() {}
