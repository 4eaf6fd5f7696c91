package wasi

import "go.bytecodealliance.org/cm"

// Field is a single header entry. Header collections are multimaps: the
// same name may appear more than once.
type Field struct {
	Name  string
	Value []byte
}

// Request is an outgoing HTTP exchange descriptor. It is built by the
// caller and ownership transfers to the Transport on Submit; the caller
// must not mutate it after submission.
type Request struct {
	Method        string
	Scheme        string
	Authority     string // host:port
	PathWithQuery string
	Headers       []Field
	Body          []byte
}

// Transport submits outgoing requests to the host. Submit must not
// block: it starts the exchange and returns a handle to its eventual
// outcome.
type Transport interface {
	Submit(req *Request) (ResponseFuture, error)
}

// ResponseFuture is the host handle for an in-flight exchange.
type ResponseFuture interface {
	// Get returns the exchange outcome once it is available and
	// cm.None before that. It must be safe to call repeatedly:
	// implementations must not consume state when reporting "not yet",
	// because callers retry Get after every readiness notification.
	Get() cm.Option[ExchangeOutcome]

	// Subscribe returns a fresh pollable that becomes ready when Get
	// is worth retrying. The caller owns the returned pollable.
	Subscribe() Pollable

	// Close releases the host handle.
	Close()
}

// ExchangeOutcome is the outer, transport-level result of an exchange.
// Err is set for DNS/connection-level failures; otherwise Protocol holds
// the inner, protocol-level result. Both levels must be checked.
type ExchangeOutcome struct {
	Err      error
	Protocol ProtocolOutcome
}

// ProtocolOutcome is the inner, HTTP-level result. Err carries the
// host's error code when the exchange completed but the protocol failed;
// otherwise Response is the live response head.
type ProtocolOutcome struct {
	Err      error
	Response Response
}

// Response is a host-owned response head.
type Response interface {
	Status() uint16
	Headers() []Field

	// Consume yields the body stream. It succeeds at most once per
	// response; consuming is a one-way transition.
	Consume() (Body, error)
}

// Body is the host's incremental, non-blocking view of a response
// payload.
type Body interface {
	// Read returns up to max immediately-available bytes. An empty
	// list with a nil error means nothing is available right now and
	// the caller should wait on Subscribe before retrying. io.EOF
	// signals the stream is closed; any other error is a real stream
	// failure.
	Read(max uint64) (cm.List[uint8], error)

	// Subscribe returns a fresh pollable that becomes ready when a
	// Read would make progress. The caller owns the returned pollable.
	Subscribe() Pollable

	// Close releases the host stream.
	Close()
}
