package wasi

import "go.bytecodealliance.org/cm"

// Pollable is an opaque host readiness handle. "Ready" means a blocking
// operation on the associated resource would now return without blocking.
//
// Pollables are host resources with explicit lifetime, not garbage
// collected memory: whoever registered a pollable must Close it as soon
// as it fires or the wait is abandoned.
type Pollable interface {
	// Ready reports readiness without blocking.
	Ready() bool

	// Close releases the host resource backing this handle.
	Close()
}

// Poller is the batched, blocking readiness primitive: given a set of
// pollables it returns the indices of those that have become ready.
//
// The wasi:io contract says a blocking poll returns at least one ready
// index, but callers tolerate an empty return by polling again.
type Poller interface {
	Poll(pollables cm.List[Pollable]) cm.List[uint32]
}
