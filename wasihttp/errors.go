package wasihttp

import (
	"errors"
	"fmt"
)

// Sentinel errors for contract violations at the client boundary.
var (
	ErrNilTransport = errors.New("wasihttp: client has no transport")
	ErrNoOutcome    = errors.New("wasihttp: exchange reported ready but returned no outcome")
)

// TransportError reports a failure below the HTTP protocol: DNS,
// connection establishment, or submission itself. The host's error
// context is preserved for Unwrap.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("wasihttp: transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError reports an exchange that completed at the transport
// level but failed at the HTTP level.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("wasihttp: protocol error: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// DecodeError reports a body that was read successfully but could not
// be decoded as requested.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("wasihttp: decode error: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// StatusError reports a non-success status from the convenience
// helpers. Fetch itself never returns it: transport success is not
// application success, and callers of Fetch check OK themselves.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("wasihttp: HTTP %d: %s", e.Code, e.Body)
}
