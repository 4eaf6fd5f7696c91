// Package wasitest provides scripted, in-memory implementations of the
// wasi host contract for tests and examples, in the spirit of
// net/http/httptest: a counting batch poller, pollables with scripted
// readiness, and a transport whose exchanges and body chunks are laid
// out by the test.
package wasitest
