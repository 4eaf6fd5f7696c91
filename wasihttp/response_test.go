package wasihttp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastertools/wasi-async-go/async"
	"github.com/fastertools/wasi-async-go/wasi"
	"github.com/fastertools/wasi-async-go/wasitest"
)

// fetchOn runs fn inside a task with a freshly fetched response.
func fetchOn(t *testing.T, resp *wasitest.Response, fn func(task *async.Task, r *FetchResponse) (any, error)) (any, error) {
	t.Helper()
	tr := &wasitest.Transport{Handler: func(req *wasi.Request) *wasitest.Exchange {
		return &wasitest.Exchange{Outcome: wasitest.Success(resp)}
	}}
	c := &Client{Transport: tr}
	e := async.NewExecutor(&wasitest.Poller{})
	return e.Run(func(task *async.Task) (any, error) {
		r, err := c.Fetch(task, "http://host/")
		if err != nil {
			return nil, err
		}
		return fn(task, r)
	})
}

func TestTextMemoized(t *testing.T) {
	resp := wasitest.NewResponse(200, []byte("he"), []byte("llo"))
	body := resp.Body

	v, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		first, err := r.Text(task)
		if err != nil {
			return nil, err
		}
		drains := body.Reads

		second, err := r.Text(task)
		if err != nil {
			return nil, err
		}
		return []any{first, second, drains == body.Reads}, nil
	})
	require.NoError(t, err)
	parts := v.([]any)
	assert.Equal(t, "hello", parts[0])
	assert.Equal(t, parts[0], parts[1], "repeated Text must return byte-identical strings")
	assert.Equal(t, true, parts[2], "the body is drained at most once")
}

func TestStreamIdempotentAfterClose(t *testing.T) {
	resp := wasitest.NewResponse(200, []byte("data"))
	body := resp.Body

	v, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		stream := r.Body()
		if _, err := stream.ReadAll(task); err != nil {
			return nil, err
		}
		hostReads := body.Reads

		// The stream saw the closed signal; further reads are no-ops.
		chunk, err := stream.Read(task, 16)
		if err != nil {
			return nil, err
		}
		return []any{len(chunk), body.Reads - hostReads, body.Closed()}, nil
	})
	require.NoError(t, err)
	parts := v.([]any)
	assert.Equal(t, 0, parts[0])
	assert.Equal(t, 0, parts[1], "a closed stream must not invoke the host again")
	assert.Equal(t, true, parts[2], "the host stream is released on close")
}

func TestStreamWaitsOnEmptyReads(t *testing.T) {
	resp := wasitest.NewResponse(200, []byte("hel"), []byte("lo"))
	resp.Body.Stutter = true
	body := resp.Body

	v, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		return r.Text(task)
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", v)
	assert.Equal(t, 2, body.Subscribes,
		"each transient empty read waits on the stream's pollable before retrying")
}

func TestStreamFailurePropagates(t *testing.T) {
	streamErr := errors.New("stream torn down")
	resp := wasitest.NewResponse(200, []byte("partial"))
	resp.Body.FailWith = streamErr

	_, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		return r.Bytes(task)
	})
	assert.ErrorIs(t, err, streamErr,
		"only the closed signal is end-of-stream; other host errors re-raise unchanged")
}

func TestJSONDecode(t *testing.T) {
	resp := wasitest.TextResponse(200, "application/json", `{"name":"svc","port":8080}`)

	v, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		var decoded struct {
			Name string `json:"name"`
			Port int    `json:"port"`
		}
		if err := r.JSON(task, &decoded); err != nil {
			return nil, err
		}
		return decoded.Name, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "svc", v)
}

func TestJSONDecodeFailureKeepsText(t *testing.T) {
	resp := wasitest.NewResponse(200, []byte("not json"))

	v, err := fetchOn(t, resp, func(task *async.Task, r *FetchResponse) (any, error) {
		text, err := r.Text(task)
		if err != nil {
			return nil, err
		}

		var decoded map[string]any
		jsonErr := r.JSON(task, &decoded)

		var de *DecodeError
		return []any{text, errors.As(jsonErr, &de)}, nil
	})
	require.NoError(t, err)
	parts := v.([]any)
	assert.Equal(t, "not json", parts[0], "Text succeeds even when the body is not JSON")
	assert.Equal(t, true, parts[1], "JSON on the same cached body is a decode error")
}

func TestBodyConsumedOnce(t *testing.T) {
	resp := wasitest.NewResponse(200, []byte("x"))
	_, err := resp.Consume()
	require.NoError(t, err)
	_, err = resp.Consume()
	assert.Error(t, err, "the body stream can be obtained at most once per response")
}
