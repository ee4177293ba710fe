package rcu

import (
	"github.com/kolkov/rcu/internal/rcu/gp"
	"github.com/kolkov/rcu/internal/rcu/list"
	"github.com/kolkov/rcu/internal/rcu/reader"
)

// Reader is a per-thread read-section handle. See reader.Reader for the
// full documentation of Lock/Unlock and their fence semantics.
type Reader = reader.Reader

// NewReader constructs a zero-initialized Reader. Register it with a
// Controller via AddReader before calling Lock.
func NewReader() *Reader {
	return reader.New()
}

// Node is one element of a List.
type Node = list.Node

// List is the sorted, lock-free, single-writer/multi-reader list this
// package's Controller is built to reclaim nodes from.
type List = list.List

// NewList returns an empty List.
func NewList() *List {
	return list.New()
}

// ErrAllocationFailed is returned by List.Toggle's insertion path when
// the caller's allocator returns nil.
var ErrAllocationFailed = list.ErrAllocationFailed

// Config configures a Controller. The zero value is valid.
type Config = gp.Config

// Controller is the RCU registry, callback queues, and reclaimer
// goroutine described in the package doc comment.
type Controller = gp.Controller

// NewController constructs a controller with empty trackers and queues.
// No background reclaimer runs until StartBackground is called.
func NewController(cfg Config) *Controller {
	return gp.New(cfg)
}
