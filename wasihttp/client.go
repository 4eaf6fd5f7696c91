package wasihttp

import (
	"log/slog"

	"github.com/fastertools/wasi-async-go/async"
	"github.com/fastertools/wasi-async-go/wasi"
)

// Client issues HTTP exchanges through a host transport. The zero value
// is unusable until a Transport is installed; on a real component the
// host glue assigns its generated bindings once at init.
type Client struct {
	Transport wasi.Transport

	// Logger, when set, receives Debug-level request traces.
	Logger *slog.Logger
}

// DefaultClient is the client the package-level helpers use. Host glue
// assigns its Transport during component initialization.
var DefaultClient = &Client{}

// Fetch performs an exchange using DefaultClient.
func Fetch(t *async.Task, url string, opts ...Option) (*FetchResponse, error) {
	return DefaultClient.Fetch(t, url, opts...)
}

// Get fetches url with GET.
func (c *Client) Get(t *async.Task, url string) (*FetchResponse, error) {
	return c.Fetch(t, url)
}

// GetJSON fetches url and decodes the JSON body into target. Unlike
// Fetch, it treats a non-2xx status as an error, returning a
// StatusError carrying the drained body.
func (c *Client) GetJSON(t *async.Task, url string, target any) error {
	resp, err := c.Get(t, url)
	if err != nil {
		return err
	}
	if !resp.OK() {
		body, _ := resp.Bytes(t)
		return &StatusError{Code: resp.StatusCode(), Body: body}
	}
	return resp.JSON(t, target)
}

// Result is one entry of a FetchAll: the response for its URL, or the
// error that fetch produced. Index is the position of the URL in the
// input slice; callers correlate by identity, not completion order.
type Result struct {
	*FetchResponse
	Index int
	Err   error
}

// FetchAll starts one sub-task per URL so the exchanges interleave on
// the executor, then awaits them all. Results arrive in input order
// with per-entry errors; one bad URL does not fail the batch.
func (c *Client) FetchAll(t *async.Task, urls []string, opts ...Option) []*Result {
	exec := t.Executor()
	futures := make([]*async.Future, len(urls))
	for i, u := range urls {
		futures[i] = exec.Spawn(func(sub *async.Task) (any, error) {
			return c.Fetch(sub, u, opts...)
		})
	}

	results := make([]*Result, len(urls))
	for i, f := range futures {
		v, err := t.Await(f)
		r := &Result{Index: i, Err: err}
		if err == nil {
			r.FetchResponse = v.(*FetchResponse)
		}
		results[i] = r
	}
	return results
}

// FetchSync runs one exchange on a temporary executor for callers that
// are not already on a loop. The body is drained before returning, so
// the response's accessors never suspend afterwards and accept a nil
// task.
func (c *Client) FetchSync(p wasi.Poller, url string, opts ...Option) (*FetchResponse, error) {
	exec := async.NewExecutor(p)
	v, err := exec.Run(func(t *async.Task) (any, error) {
		resp, err := c.Fetch(t, url, opts...)
		if err != nil {
			return nil, err
		}
		if _, err := resp.Bytes(t); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*FetchResponse), nil
}

// GetSync fetches url on a temporary executor and returns the body as
// text. Non-2xx statuses are errors here, mirroring GetJSON.
func (c *Client) GetSync(p wasi.Poller, url string) (string, error) {
	resp, err := c.FetchSync(p, url)
	if err != nil {
		return "", err
	}
	if !resp.OK() {
		body, _ := resp.Bytes(nil)
		return "", &StatusError{Code: resp.StatusCode(), Body: body}
	}
	return resp.Text(nil)
}
