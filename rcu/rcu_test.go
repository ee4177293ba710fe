package rcu_test

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kolkov/rcu/rcu"
)

func TestInsertThenRemove(t *testing.T) {
	l := rcu.NewList()

	removed, err := l.Toggle(5, nil)
	assert.NoError(t, err)
	assert.Nil(t, removed)
	assert.True(t, l.Lookup(5))

	removed, err = l.Toggle(5, nil)
	assert.NoError(t, err)
	assert.NotNil(t, removed)
	assert.False(t, l.Lookup(5))
}

func TestSortedUniqueAfterMixedToggles(t *testing.T) {
	l := rcu.NewList()
	for _, v := range []uint32{3, 1, 4, 1, 5} {
		_, err := l.Toggle(v, nil)
		assert.NoError(t, err)
	}
	assert.Equal(t, []uint32{3, 4, 5}, l.Snapshot())
}

// TestConcurrentStress runs many reader goroutines looking up random keys
// against a single writer that repeatedly inserts and removes, batching
// unlinked nodes into one Call per batch and waiting for that Call before
// the next batch. It asserts that every node unlinked over the run is
// freed exactly once.
func TestConcurrentStress(t *testing.T) {
	if testing.Short() {
		t.Skip("stress scenario skipped in -short mode")
	}

	const (
		numReaders = 15
		keyRange   = 1024
		batchSize  = 64
		numBatches = 64
	)

	l := rcu.NewList()
	ctrl := rcu.NewController(rcu.Config{TickInterval: 2 * time.Millisecond})
	ctrl.StartBackground()
	defer ctrl.StopBackground()

	readers := make([]*rcu.Reader, numReaders)
	for i := range readers {
		readers[i] = rcu.NewReader()
		ctrl.AddReader(readers[i])
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for _, r := range readers {
		wg.Add(1)
		go func(r *rcu.Reader) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(r.ID())))
			for {
				select {
				case <-stop:
					return
				default:
				}
				r.Lock()
				l.Lookup(uint32(rng.Intn(keyRange)))
				r.Unlock()
			}
		}(r)
	}

	var (
		freedMu sync.Mutex
		freed   = map[*rcu.Node]int{}
	)
	rng := rand.New(rand.NewSource(1))
	for b := 0; b < numBatches; b++ {
		var batch []*rcu.Node
		for i := 0; i < batchSize; i++ {
			v := uint32(rng.Intn(keyRange))
			removed, err := l.Toggle(v, nil)
			assert.NoError(t, err)
			if removed != nil {
				batch = append(batch, removed)
			}
		}
		if len(batch) == 0 {
			continue
		}
		done := make(chan struct{})
		nodes := batch
		ctrl.Call(func(arg any) {
			freedMu.Lock()
			for _, n := range arg.([]*rcu.Node) {
				freed[n]++
			}
			freedMu.Unlock()
			close(done)
		}, nodes)
		<-done
	}

	close(stop)
	wg.Wait()

	freedMu.Lock()
	for node, count := range freed {
		assert.Equal(t, 1, count, "node for key %d freed %d times", node.Value(), count)
	}
	freedMu.Unlock()

	for _, r := range readers {
		ctrl.RemoveReader(r)
	}
}
