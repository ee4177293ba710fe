// Package rcu provides a Read-Copy-Update reclamation primitive: a single
// writer may publish or retract references to shared data concurrently
// with any number of readers, and destruction of retracted data is
// deferred until no reader can still observe it.
//
// A reader brackets the data it touches with Lock/Unlock:
//
//	r := rcu.NewReader()
//	c.AddReader(r)
//	defer c.RemoveReader(r)
//
//	r.Lock()
//	ok := lst.Lookup(42)
//	r.Unlock()
//
// The writer mutates the list directly (List.Toggle is lock-free and
// assumes a single writer) and defers destruction of anything it
// unlinks:
//
//	removed, err := lst.Toggle(42, nil)
//	if removed != nil {
//	    c.Call(func(arg any) { free(arg.(*list.Node)) }, removed)
//	}
//
// A background goroutine detects grace periods and drains deferred
// callbacks:
//
//	c := rcu.NewController(rcu.Config{})
//	c.StartBackground()
//	defer c.StopBackground()
//
// See internal/rcu/gp for the grace-period protocol this package exposes.
package rcu
