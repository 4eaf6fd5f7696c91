package wasitest

import (
	"errors"
	"io"

	"go.bytecodealliance.org/cm"

	"github.com/fastertools/wasi-async-go/wasi"
)

// Exchange scripts the outcome of one submitted request.
type Exchange struct {
	// NotYet is how many Get calls report "no outcome yet" before
	// Outcome becomes available. It exercises the caller's
	// retry-until-definitive loop.
	NotYet int

	Outcome wasi.ExchangeOutcome

	// Subscribes counts readiness subscriptions taken on the future.
	Subscribes int

	gets   int
	closed bool
}

// Closed reports whether the future handle was released.
func (e *Exchange) Closed() bool { return e.closed }

// Transport is a scripted wasi.Transport. Handler decides the exchange
// for each submitted request; Requests records every descriptor in
// submission order.
type Transport struct {
	Handler   func(req *wasi.Request) *Exchange
	SubmitErr error
	Requests  []*wasi.Request
}

func (t *Transport) Submit(req *wasi.Request) (wasi.ResponseFuture, error) {
	t.Requests = append(t.Requests, req)
	if t.SubmitErr != nil {
		return nil, t.SubmitErr
	}
	if t.Handler == nil {
		panic("wasitest: Transport used without a Handler")
	}
	return &responseFuture{ex: t.Handler(req)}, nil
}

type responseFuture struct {
	ex *Exchange
}

func (f *responseFuture) Get() cm.Option[wasi.ExchangeOutcome] {
	if f.ex.gets < f.ex.NotYet {
		f.ex.gets++
		return cm.None[wasi.ExchangeOutcome]()
	}
	return cm.Some(f.ex.Outcome)
}

func (f *responseFuture) Subscribe() wasi.Pollable {
	f.ex.Subscribes++
	return Always()
}

func (f *responseFuture) Close() { f.ex.closed = true }

// Success wraps a response head in a fully-successful two-level outcome.
func Success(resp *Response) wasi.ExchangeOutcome {
	return wasi.ExchangeOutcome{Protocol: wasi.ProtocolOutcome{Response: resp}}
}

// TransportFailure scripts an outer-level failure: the exchange never
// produced a protocol result.
func TransportFailure(err error) wasi.ExchangeOutcome {
	return wasi.ExchangeOutcome{Err: err}
}

// ProtocolFailure scripts an inner-level failure: transport succeeded
// but the HTTP exchange did not.
func ProtocolFailure(err error) wasi.ExchangeOutcome {
	return wasi.ExchangeOutcome{Protocol: wasi.ProtocolOutcome{Err: err}}
}

// Response is a scripted response head whose body is served in chunks.
type Response struct {
	Code   uint16
	Fields []wasi.Field
	Body   *Body

	consumed bool
}

// NewResponse builds a response serving the given body chunks in order.
func NewResponse(code uint16, chunks ...[]byte) *Response {
	return &Response{Code: code, Body: &Body{Chunks: chunks}}
}

// TextResponse builds a single-chunk response with a content-type
// header.
func TextResponse(code uint16, contentType, body string) *Response {
	r := NewResponse(code, []byte(body))
	r.Fields = []wasi.Field{{Name: "content-type", Value: []byte(contentType)}}
	return r
}

func (r *Response) Status() uint16        { return r.Code }
func (r *Response) Headers() []wasi.Field { return r.Fields }

func (r *Response) Consume() (wasi.Body, error) {
	if r.consumed {
		return nil, errors.New("wasitest: response body already consumed")
	}
	r.consumed = true
	return r.Body, nil
}

// Body serves scripted chunks one Read at a time and then signals
// closed via io.EOF (or FailWith, when set). With Stutter set, every
// chunk is preceded by one empty read so consumers exercise their
// wait-and-retry path.
type Body struct {
	Chunks  [][]byte
	Stutter bool

	// FailWith replaces the closed signal once the chunks run out,
	// scripting a mid-stream host failure.
	FailWith error

	// Reads counts host-level Read calls; Subscribes counts readiness
	// subscriptions.
	Reads      int
	Subscribes int

	next      int
	stuttered bool
	closed    bool
}

func (b *Body) Read(max uint64) (cm.List[uint8], error) {
	b.Reads++
	if b.next >= len(b.Chunks) {
		if b.FailWith != nil {
			return cm.List[uint8]{}, b.FailWith
		}
		return cm.List[uint8]{}, io.EOF
	}
	if b.Stutter && !b.stuttered {
		b.stuttered = true
		return cm.List[uint8]{}, nil
	}
	b.stuttered = false

	chunk := b.Chunks[b.next]
	if uint64(len(chunk)) > max {
		b.Chunks[b.next] = chunk[max:]
		chunk = chunk[:max]
	} else {
		b.next++
	}
	return cm.ToList(chunk), nil
}

func (b *Body) Subscribe() wasi.Pollable {
	b.Subscribes++
	return Always()
}

func (b *Body) Close() { b.closed = true }

// Closed reports whether the stream was released.
func (b *Body) Closed() bool { return b.closed }
