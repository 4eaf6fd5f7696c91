package wasihttp

import (
	"encoding/json"
	"net/http"

	"github.com/fastertools/wasi-async-go/async"
	"github.com/fastertools/wasi-async-go/wasi"
)

// FetchResponse wraps a received response head plus a lazily-populated,
// memoized body. The underlying stream is single-pass: the first Bytes,
// Text or JSON call drains it fully and caches the result, and later
// calls return the cache.
type FetchResponse struct {
	resp   wasi.Response
	stream *Stream

	header   http.Header
	consumed bool
	cached   []byte
}

func newFetchResponse(resp wasi.Response, stream *Stream) *FetchResponse {
	return &FetchResponse{resp: resp, stream: stream}
}

// StatusCode returns the HTTP status of the response head.
func (r *FetchResponse) StatusCode() int { return int(r.resp.Status()) }

// OK reports whether the status is in the 2xx range.
func (r *FetchResponse) OK() bool {
	return r.StatusCode() >= 200 && r.StatusCode() < 300
}

// Headers returns the response headers as an http.Header multimap.
func (r *FetchResponse) Headers() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
		for _, f := range r.resp.Headers() {
			r.header.Add(f.Name, string(f.Value))
		}
	}
	return r.header
}

// Body returns the incremental body stream for callers that want to
// consume chunks themselves instead of going through Bytes. Mixing
// direct stream reads with Bytes/Text/JSON leaves the cache partial;
// pick one style per response.
func (r *FetchResponse) Body() *Stream { return r.stream }

// Bytes returns the full body, draining the stream on first call. Once
// the body is cached the task may be nil: no suspension happens.
func (r *FetchResponse) Bytes(t *async.Task) ([]byte, error) {
	if r.consumed {
		return r.cached, nil
	}
	r.consumed = true
	data, err := r.stream.ReadAll(t)
	if err != nil {
		return nil, err
	}
	r.cached = data
	return data, nil
}

// Text returns the body decoded as UTF-8 text.
func (r *FetchResponse) Text(t *async.Task) (string, error) {
	data, err := r.Bytes(t)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// JSON decodes the body into target. Malformed JSON is a DecodeError;
// the raw body stays available through Bytes and Text.
func (r *FetchResponse) JSON(t *async.Task, target any) error {
	data, err := r.Bytes(t)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, target); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
