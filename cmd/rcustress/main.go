// Package main implements rcustress, the stress-harness CLI for the rcu
// package.
//
// rcustress is not part of the RCU primitive itself — it is the external
// collaborator described in the package's design notes: a driver that
// spins up readers and a writer against a shared list and reports
// throughput and reclamation statistics. It only ever imports the public
// github.com/kolkov/rcu/rcu facade.
//
// Usage:
//
//	rcustress run [flags]      # run a bounded stress scenario
//	rcustress bench [flags]    # run and print a throughput report
//	rcustress version          # show version information
//	rcustress help             # show this help message
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCommand(os.Args[2:])
	case "bench":
		benchCommand(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("rcustress version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`rcustress - RCU reclamation stress harness

USAGE:
    rcustress <command> [arguments]

COMMANDS:
    run        Run a bounded stress scenario against internal/rcu
    bench      Run and print a throughput/reclamation report
    version    Show version information
    help       Show this help message

EXAMPLES:
    rcustress run --readers=15 --batches=8000000 --batch-size=1024
    rcustress bench --readers=4 --key-range=256
`)
}
