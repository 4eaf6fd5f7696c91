package async

import (
	"log/slog"

	"go.bytecodealliance.org/cm"

	"github.com/fastertools/wasi-async-go/wasi"
)

// Executor drives tasks to completion over a batched readiness primitive.
// It owns a FIFO ready queue of callbacks and a wait table mapping
// pollables to the futures awaiting them. Nothing is shared across
// executors and none of this is safe for concurrent use; the executor is
// single-owner state of whoever calls RunUntilComplete.
type Executor struct {
	poller wasi.Poller
	logger *slog.Logger

	ready   []func()
	waits   []*waitEntry
	running bool
	trap    any // first callback panic of the current iteration

	nextTask uint64
}

// waitEntry ties a registered pollable to the future its task awaits.
// An entry exists in the wait table if and only if its future is
// unresolved; entries are removed in the same step that resolves them.
type waitEntry struct {
	pollable wasi.Pollable
	future   *Future
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger installs a debug logger. The executor logs loop internals
// at Debug level only; a nil logger disables logging.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor returns an executor polling readiness through p.
func NewExecutor(p wasi.Poller, opts ...Option) *Executor {
	e := &Executor{poller: p}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateFuture returns a fresh, unresolved future owned by this executor.
func (e *Executor) CreateFuture() *Future {
	return &Future{exec: e}
}

// CallSoon queues fn to run on the next loop iteration. Callbacks run in
// FIFO submission order.
func (e *Executor) CallSoon(fn func()) {
	e.ready = append(e.ready, fn)
}

// Register records a wait on p and returns the future that resolves when
// the host reports p ready. Readiness carries no payload: the future
// resolves with a nil value. The executor closes p when it fires;
// callers abandoning the wait early must release it via DropWaits.
func (e *Executor) Register(p wasi.Pollable) *Future {
	f := e.CreateFuture()
	e.waits = append(e.waits, &waitEntry{pollable: p, future: f})
	return f
}

// DropWaits removes every pending wait whose future is f and closes the
// pollables it held. This is the explicit release path for callers that
// abandon a task: there is no cancellation token, but host resources
// must not leak.
func (e *Executor) DropWaits(f *Future) {
	kept := e.waits[:0]
	for _, w := range e.waits {
		if w.future == f {
			w.pollable.Close()
			continue
		}
		kept = append(kept, w)
	}
	e.waits = kept
}

// RunUntilComplete drives the loop until f resolves and returns its
// result. It is the only blocking entry point for non-async callers and
// must not be re-entered while already running: that is a state error
// and panics.
func (e *Executor) RunUntilComplete(f *Future) (any, error) {
	if e.running {
		panic("async: RunUntilComplete re-entered while loop is running")
	}
	e.running = true
	defer func() { e.running = false }()

	for !f.done {
		e.runReady()
		if t := e.trap; t != nil {
			// A callback panicked earlier in this iteration. The
			// rest of the iteration's queue already ran; now it
			// propagates.
			e.trap = nil
			panic(t)
		}
		if f.done {
			break
		}
		e.pollOnce()
	}
	return f.Result()
}

// runReady drains the callbacks that were queued before this iteration
// began. Callbacks queued while draining run on the next iteration.
func (e *Executor) runReady() {
	n := len(e.ready)
	for i := 0; i < n; i++ {
		cb := e.ready[0]
		e.ready = e.ready[1:]
		e.runCallback(cb)
	}
}

func (e *Executor) runCallback(cb func()) {
	defer func() {
		if r := recover(); r != nil && e.trap == nil {
			e.trap = r
		}
	}()
	cb()
}

// pollOnce gathers every outstanding pollable into one batch poll and
// resolves the futures the host reports ready. Polling is coalesced:
// the host primitive is a single multiplexed call, so it is invoked
// exactly once per iteration no matter how many tasks are waiting.
func (e *Executor) pollOnce() {
	entries := make([]*waitEntry, 0, len(e.waits))
	pollables := make([]wasi.Pollable, 0, len(e.waits))
	for _, w := range e.waits {
		if !w.future.done {
			entries = append(entries, w)
			pollables = append(pollables, w.pollable)
		}
	}

	if len(pollables) == 0 {
		if len(e.ready) == 0 {
			// Unresolved future, nothing runnable, nothing to
			// poll: no iteration can ever make progress again.
			panic("async: run loop stalled: no runnable callbacks and no registered pollables")
		}
		return
	}

	if e.logger != nil {
		e.logger.Debug("polling host", "pollables", len(pollables))
	}

	readyList := e.poller.Poll(cm.ToList(pollables))
	fired := make(map[*waitEntry]bool, len(readyList.Slice()))
	for _, idx := range readyList.Slice() {
		if int(idx) >= len(entries) {
			continue
		}
		w := entries[idx]
		if fired[w] {
			continue
		}
		fired[w] = true
		w.pollable.Close()
		w.future.SetResult(nil)
	}

	if len(fired) == 0 {
		return
	}
	next := make([]*waitEntry, 0, len(e.waits)-len(fired))
	for _, w := range e.waits {
		if !fired[w] {
			next = append(next, w)
		}
	}
	e.waits = next
}
