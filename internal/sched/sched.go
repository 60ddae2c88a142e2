// Package sched provides the single control thread a battle runs on.
//
// Every state mutation of a battle happens inside a callback delivered by a
// Scheduler: deferred continuations, countdown ticks and the results of
// background work. Loop is the real-time implementation; Manual is a
// deterministic one driven by explicit Advance calls.
package sched

import "time"

// Cancel stops a scheduled callback. Calling it more than once, or after the
// callback has run, is a no-op.
type Cancel func()

// Scheduler delivers callbacks on a single logical thread.
type Scheduler interface {
	// After runs fn on the scheduler thread once d has elapsed.
	After(d time.Duration, fn func()) Cancel

	// Go runs work off the scheduler thread. If work returns a non-nil
	// function it is run on the scheduler thread.
	Go(work func() func())
}
