package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kolkov/rcu/rcu"
)

// stressConfig holds the flags shared by the run and bench subcommands.
// Defaults mirror the spec's concurrent-stress scenario: 15 readers,
// keys in [0,1024), 7813 batches of 1024 toggles (about 8M toggles).
// Each batch's Call carries only the nodes its toggles unlinked, so a
// Call does not hold a fixed number of nodes.
type stressConfig struct {
	readers   int
	keyRange  int
	batchSize int
	batches   int
	tick      time.Duration
	verbose   bool
}

func parseStressFlags(name string, args []string) *stressConfig {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfg := &stressConfig{}
	fs.IntVar(&cfg.readers, "readers", 15, "number of concurrent reader goroutines")
	fs.IntVar(&cfg.keyRange, "key-range", 1024, "keys are drawn from [0, key-range)")
	fs.IntVar(&cfg.batchSize, "batch-size", 1024, "writer toggles per batch; the nodes they unlink share one reclaim Call")
	fs.IntVar(&cfg.batches, "batches", 7813, "number of writer batches to run")
	fs.DurationVar(&cfg.tick, "tick", 8*time.Millisecond, "reclaimer poll interval")
	fs.BoolVar(&cfg.verbose, "verbose", false, "emit one log line per reclaimed batch")
	_ = fs.Parse(args)
	return cfg
}

// stressResult is the harness's summary, separate from rcu.Controller's
// own Stats() — this package keeps its own counters and never reaches
// into the core.
type stressResult struct {
	lookups  uint64
	toggles  uint64
	inserted uint64
	removed  uint64
	freed    uint64
	duration time.Duration
}

// runStress drives readers and a writer against a fresh list and
// controller for cfg.batches writer batches, returning a summary. This
// is the implementation behind both the run and bench subcommands; they
// differ only in what they print afterward.
func runStress(cfg *stressConfig, logger *zap.Logger) stressResult {
	list := rcu.NewList()
	ctrl := rcu.NewController(rcu.Config{TickInterval: cfg.tick, Logger: logger})
	ctrl.StartBackground()
	defer ctrl.StopBackground()

	readers := make([]*rcu.Reader, cfg.readers)
	for i := range readers {
		readers[i] = rcu.NewReader()
		ctrl.AddReader(readers[i])
	}

	var lookups atomic.Uint64
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
				list.Lookup(uint32(rng.Intn(cfg.keyRange)))
				r.Unlock()
				lookups.Add(1)
			}
		}(r)
	}

	start := time.Now()
	var inserted, removed, freed atomic.Uint64
	rng := rand.New(rand.NewSource(0))
	for b := 0; b < cfg.batches; b++ {
		var batch []*rcu.Node
		for i := 0; i < cfg.batchSize; i++ {
			v := uint32(rng.Intn(cfg.keyRange))
			node, err := list.Toggle(v, nil)
			if err != nil {
				logger.Warn("rcustress: allocation failed", zap.Error(err))
				continue
			}
			if node != nil {
				batch = append(batch, node)
				removed.Add(1)
			} else {
				inserted.Add(1)
			}
		}
		if len(batch) == 0 {
			continue
		}
		nodes := batch
		ctrl.Call(func(arg any) {
			n := len(arg.([]*rcu.Node))
			freed.Add(uint64(n))
			if cfg.verbose {
				logger.Info("rcustress: batch reclaimed", zap.Int("nodes", n))
			}
		}, nodes)
	}
	duration := time.Since(start)

	close(stop)
	wg.Wait()
	for _, r := range readers {
		ctrl.RemoveReader(r)
	}
	ctrl.StopBackground() // drain before counting; the deferred call is then a no-op

	return stressResult{
		lookups:  lookups.Load(),
		toggles:  uint64(cfg.batches) * uint64(cfg.batchSize),
		inserted: inserted.Load(),
		removed:  removed.Load(),
		freed:    freed.Load(),
		duration: duration,
	}
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rcustress: logger init failed: %v\n", err)
		return zap.NewNop()
	}
	return logger
}
