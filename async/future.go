package async

// A Future is a single-resolution completion cell. It is created
// unresolved and resolved exactly once with either a value or an error;
// resolving twice is a programming error and panics.
//
// Futures belong to the executor that created them and must only be
// touched from callbacks and tasks running on it.
type Future struct {
	exec      *Executor
	done      bool
	value     any
	err       error
	callbacks []func()
}

// Done reports whether the future has been resolved.
func (f *Future) Done() bool { return f.done }

// Result returns the resolved value or error. It panics if the future
// is not yet done; callers await first.
func (f *Future) Result() (any, error) {
	if !f.done {
		panic("async: Result on unresolved future")
	}
	return f.value, f.err
}

// SetResult resolves the future with a value.
func (f *Future) SetResult(v any) { f.resolve(v, nil) }

// SetErr resolves the future with an error.
func (f *Future) SetErr(err error) { f.resolve(nil, err) }

func (f *Future) resolve(v any, err error) {
	if f.done {
		panic("async: future resolved twice")
	}
	f.done = true
	f.value = v
	f.err = err
	// Completed futures re-enter the loop through the ready queue, not
	// by running their waiters inline.
	for _, cb := range f.callbacks {
		f.exec.CallSoon(cb)
	}
	f.callbacks = nil
}

// onDone schedules cb once the future resolves. If it already has, cb is
// queued immediately.
func (f *Future) onDone(cb func()) {
	if f.done {
		f.exec.CallSoon(cb)
		return
	}
	f.callbacks = append(f.callbacks, cb)
}
