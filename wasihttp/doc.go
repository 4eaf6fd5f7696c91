// Package wasihttp is a streaming HTTP client for readiness-driven
// hosts. It turns one outbound exchange into an awaitable value usable
// from a task running on an async.Executor, and exposes the response
// body as an incrementally-readable, decode-on-demand stream.
//
// The client knows nothing about scheduling internals beyond the
// suspend/resume contract, and the executor knows nothing about HTTP:
// everything meets at wasi.Pollable.
package wasihttp
