package async

import (
	"fmt"

	"github.com/fastertools/wasi-async-go/wasi"
)

// TaskFunc is the body of a task. It runs on the executor, may suspend
// through the Task it receives, and its return resolves the task's
// future.
type TaskFunc func(t *Task) (any, error)

// A Task is a suspendable unit of work. It is backed by a goroutine, but
// the goroutine only runs while it holds the loop's baton: the loop
// blocks while a task runs and the task blocks while it is suspended, so
// execution stays strictly single-threaded and cooperative.
type Task struct {
	id     uint64
	exec   *Executor
	future *Future

	resume   chan struct{}
	yield    chan struct{}
	finished bool
}

// Spawn creates a task for fn and schedules its first step. The returned
// future resolves with fn's result.
func (e *Executor) Spawn(fn TaskFunc) *Future {
	e.nextTask++
	t := &Task{
		id:     e.nextTask,
		exec:   e,
		future: e.CreateFuture(),
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
	go t.run(fn)
	e.CallSoon(t.step)
	if e.logger != nil {
		e.logger.Debug("task spawned", "task", t.id)
	}
	return t.future
}

// Run spawns fn and drives the loop until it completes. Sugar for
// RunUntilComplete(Spawn(fn)).
func (e *Executor) Run(fn TaskFunc) (any, error) {
	return e.RunUntilComplete(e.Spawn(fn))
}

// Executor returns the executor this task runs on.
func (t *Task) Executor() *Executor { return t.exec }

// Await suspends the task until f resolves, then returns its result.
// If f is already done the task does not suspend.
func (t *Task) Await(f *Future) (any, error) {
	if !f.done {
		f.onDone(t.step)
		t.suspend()
	}
	return f.Result()
}

// AwaitReady registers p with the executor and suspends until the host
// reports it ready. Readiness carries no payload. The executor closes p
// on resume.
func (t *Task) AwaitReady(p wasi.Pollable) {
	// Registration futures resolve with nil and never error.
	t.Await(t.exec.Register(p))
}

// run is the task goroutine body. It waits for its first step, executes
// fn with panics converted to task failure, resolves the future and
// yields the baton for the last time.
func (t *Task) run(fn TaskFunc) {
	<-t.resume
	v, err := t.call(fn)
	t.finished = true
	if err != nil {
		t.future.SetErr(err)
	} else {
		t.future.SetResult(v)
	}
	t.yield <- struct{}{}
}

func (t *Task) call(fn TaskFunc) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("async: task %d panicked: %v", t.id, r)
		}
	}()
	return fn(t)
}

// step resumes the task and blocks until it suspends again or finishes.
// It only ever runs from the loop's ready queue.
func (t *Task) step() {
	if t.finished {
		return
	}
	t.resume <- struct{}{}
	<-t.yield
}

// suspend hands the baton back to the loop and blocks until the next
// step.
func (t *Task) suspend() {
	t.yield <- struct{}{}
	<-t.resume
}

// Gather awaits every future and returns their values in argument
// order. If any future fails, Gather still awaits the rest (they share
// the loop regardless) and returns the first error; failed slots hold a
// nil value.
func Gather(t *Task, futures ...*Future) ([]any, error) {
	values := make([]any, len(futures))
	var firstErr error
	for i, f := range futures {
		v, err := t.Await(f)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		values[i] = v
	}
	if firstErr != nil {
		return values, firstErr
	}
	return values, nil
}
