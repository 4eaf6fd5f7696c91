// Package wasi defines the narrow slice of the wasi:io and wasi:http host
// surface this library consumes: batched readiness polling, outgoing
// request submission, and incremental response body reads.
//
// The interfaces here are the boundary with the host runtime. On a real
// component the implementations are the generated WASI bindings; in tests
// they are scripted doubles (see package wasitest). Nothing in this
// package schedules or blocks by itself except Poller.Poll, which is the
// single blocking primitive the whole library is built on.
package wasi
