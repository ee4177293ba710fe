// bench.go implements the 'rcustress bench' command: the same stress
// driver as 'run', reported as throughput figures instead of raw totals.
package main

import (
	"fmt"
	"time"
)

func benchCommand(args []string) {
	cfg := parseStressFlags("rcustress bench", args)
	logger := newLogger(cfg.verbose)
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	result := runStress(cfg, logger)

	secs := result.duration.Seconds()
	if secs == 0 {
		secs = time.Nanosecond.Seconds()
	}

	fmt.Printf("toggles/sec: %.0f\n", float64(result.toggles)/secs)
	fmt.Printf("lookups/sec: %.0f\n", float64(result.lookups)/secs)
	fmt.Printf("reclaimed:   %d/%d nodes\n", result.freed, result.removed)
}
