// Package async implements a single-threaded, readiness-driven executor.
//
// The only way the host lets waiting work proceed is a batched, blocking
// poll over a set of pollables (wasi.Poller). The executor adapts an
// await-style programming model onto that primitive: tasks run one at a
// time, suspend by awaiting a Future, and are resumed when the loop's
// per-iteration poll reports their pollable ready.
//
// Scheduling is strictly cooperative. A task runs until it awaits or
// returns; the loop goroutine and task goroutines hand a baton back and
// forth so that exactly one of them executes at any moment. All apparent
// concurrency is interleaving of suspended tasks within one run loop.
package async
