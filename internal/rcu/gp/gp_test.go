package gp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kolkov/rcu/internal/rcu/reader"
)

func newTestController() *Controller {
	return New(Config{TickInterval: 3 * time.Millisecond})
}

// assertNotFiredWithin checks that no value arrives on ch before d elapses.
func assertNotFiredWithin(t *testing.T, ch <-chan struct{}, d time.Duration) {
	t.Helper()
	select {
	case <-ch:
		t.Fatal("callback fired before expected")
	case <-time.After(d):
	}
}

// assertFiresWithin requires a value to arrive on ch before d elapses.
func assertFiresWithin(t *testing.T, ch <-chan struct{}, d time.Duration) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(d):
		t.Fatal("callback did not fire in time")
	}
}

func TestRegisterCallDrain(t *testing.T) {
	c := newTestController()
	r := reader.New()
	c.AddReader(r)
	c.StartBackground()
	defer c.StopBackground()

	fired := make(chan struct{})
	r.Lock()
	c.Call(func(arg any) { close(arg.(chan struct{})) }, fired)

	assertNotFiredWithin(t, fired, 30*time.Millisecond)

	r.Unlock()
	assertFiresWithin(t, fired, 200*time.Millisecond)

	c.RemoveReader(r)
}

func TestNestedGracePeriod(t *testing.T) {
	c := newTestController()
	r := reader.New()
	c.AddReader(r)
	c.StartBackground()
	defer c.StopBackground()

	fired := make(chan struct{})
	r.Lock()
	r.Lock()
	c.Call(func(arg any) { close(arg.(chan struct{})) }, fired)

	assertNotFiredWithin(t, fired, 30*time.Millisecond)

	r.Unlock() // nesting 2 -> 1, pin must not clear
	assertNotFiredWithin(t, fired, 30*time.Millisecond)

	r.Unlock() // nesting 1 -> 0, pin clears
	assertFiresWithin(t, fired, 200*time.Millisecond)

	c.RemoveReader(r)
}

func TestReaderRegisteredDuringObservationIsImmediatelyQuiescent(t *testing.T) {
	c := newTestController()
	blocker := reader.New()
	c.AddReader(blocker)
	c.StartBackground()
	defer c.StopBackground()

	blocker.Lock() // keeps the first grace period open indefinitely
	fired := make(chan struct{})
	c.Call(func(arg any) { close(arg.(chan struct{})) }, fired)
	assertNotFiredWithin(t, fired, 20*time.Millisecond)

	late := reader.New()
	c.AddReader(late) // registered after `next` was populated

	blocker.Unlock()
	assertFiresWithin(t, fired, 200*time.Millisecond)

	c.RemoveReader(blocker)
	c.RemoveReader(late)
}

func TestShutdownIdempotence(t *testing.T) {
	c := newTestController()
	c.StopBackground() // no reclaimer running: no-op

	c.StartBackground()
	c.StopBackground()
	c.StopBackground() // already stopped: no-op

	c.Deinit() // no readers, no pending callbacks: no-op beyond release
}

func TestAddReaderTwicePanics(t *testing.T) {
	c := newTestController()
	r := reader.New()
	c.AddReader(r)
	assert.Panics(t, func() { c.AddReader(r) })
}

func TestRemoveUnregisteredReaderPanics(t *testing.T) {
	c := newTestController()
	assert.Panics(t, func() { c.RemoveReader(reader.New()) })
}

func TestRemoveReaderWhileHeldPanics(t *testing.T) {
	c := newTestController()
	r := reader.New()
	c.AddReader(r)
	r.Lock()
	assert.Panics(t, func() { c.RemoveReader(r) })
	r.Unlock()
}

func TestDeinitWithActiveReaderPanics(t *testing.T) {
	c := newTestController()
	r := reader.New()
	c.AddReader(r)
	r.Lock()
	assert.Panics(t, func() { c.Deinit() })
	r.Unlock()
}

func TestStartBackgroundTwicePanics(t *testing.T) {
	c := newTestController()
	c.StartBackground()
	defer c.StopBackground()
	assert.Panics(t, func() { c.StartBackground() })
}
