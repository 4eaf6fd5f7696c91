package wasitest

import (
	"go.bytecodealliance.org/cm"

	"github.com/fastertools/wasi-async-go/wasi"
)

// Pollable is a readiness handle with scripted behavior. The zero value
// (and Always) is ready immediately.
type Pollable struct {
	// ReadyFunc scripts readiness; nil means always ready.
	ReadyFunc func() bool

	closed bool
}

// Always returns a pollable that is ready on first inspection.
func Always() *Pollable { return &Pollable{} }

// ReadyAfter returns a pollable that reports not-ready for the given
// number of inspections before becoming ready.
func ReadyAfter(inspections int) *Pollable {
	n := inspections
	return &Pollable{ReadyFunc: func() bool {
		if n > 0 {
			n--
			return false
		}
		return true
	}}
}

func (p *Pollable) Ready() bool {
	if p.ReadyFunc == nil {
		return true
	}
	return p.ReadyFunc()
}

func (p *Pollable) Close() { p.closed = true }

// Closed reports whether the handle was released.
func (p *Pollable) Closed() bool { return p.closed }

// maxIdleRounds bounds how long Poll spins before declaring the script
// broken.
const maxIdleRounds = 10000

// Poller implements wasi.Poller by repeatedly inspecting the scripted
// pollables until at least one is ready, honoring the blocking contract.
// Calls counts Poll invocations so tests can assert coalescing.
type Poller struct {
	Calls int
}

func (p *Poller) Poll(pollables cm.List[wasi.Pollable]) cm.List[uint32] {
	p.Calls++
	items := pollables.Slice()
	for round := 0; round < maxIdleRounds; round++ {
		var ready []uint32
		for i, pb := range items {
			if pb.Ready() {
				ready = append(ready, uint32(i))
			}
		}
		if len(ready) > 0 {
			return cm.ToList(ready)
		}
	}
	panic("wasitest: poll stalled: no pollable ever became ready")
}
