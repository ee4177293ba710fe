// run.go implements the 'rcustress run' command: a bounded stress
// scenario printed as a short pass/fail-style summary.
package main

import "fmt"

func runCommand(args []string) {
	cfg := parseStressFlags("rcustress run", args)
	logger := newLogger(cfg.verbose)
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	result := runStress(cfg, logger)

	fmt.Printf("readers=%d key-range=%d batches=%d batch-size=%d\n",
		cfg.readers, cfg.keyRange, cfg.batches, cfg.batchSize)
	fmt.Printf("lookups=%d toggles=%d inserted=%d removed=%d freed=%d\n",
		result.lookups, result.toggles, result.inserted, result.removed, result.freed)
	fmt.Printf("duration=%s\n", result.duration)

	if result.freed != result.removed {
		fmt.Printf("WARNING: freed (%d) != removed (%d) — undrained callbacks remained at shutdown\n",
			result.freed, result.removed)
	}
}
