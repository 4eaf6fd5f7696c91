package wasihttp

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/fastertools/wasi-async-go/async"
	"github.com/fastertools/wasi-async-go/wasi"
)

// requestConfig is the set of per-request knobs, built by Options.
type requestConfig struct {
	method   string
	headers  []wasi.Field
	body     []byte
	jsonBody any
	hasJSON  bool
}

// Option configures a single fetch.
type Option func(*requestConfig)

// WithMethod sets the HTTP method. The default is GET; the method is
// normalized to upper case.
func WithMethod(method string) Option {
	return func(c *requestConfig) { c.method = method }
}

// WithHeader appends one request header. Names are sent lower-cased.
func WithHeader(name, value string) Option {
	return func(c *requestConfig) {
		c.headers = append(c.headers, wasi.Field{Name: strings.ToLower(name), Value: []byte(value)})
	}
}

// WithHeaders appends every entry of h as a request header.
func WithHeaders(h map[string]string) Option {
	return func(c *requestConfig) {
		for name, value := range h {
			c.headers = append(c.headers, wasi.Field{Name: strings.ToLower(name), Value: []byte(value)})
		}
	}
}

// WithBody sets a raw request body.
func WithBody(body []byte) Option {
	return func(c *requestConfig) { c.body = body }
}

// WithJSON serializes v as the request body and sets
// content-type: application/json unless the caller already supplied a
// content-type header.
func WithJSON(v any) Option {
	return func(c *requestConfig) {
		c.jsonBody = v
		c.hasJSON = true
	}
}

// Fetch performs one HTTP exchange from inside a task, suspending on the
// executor while the host works. The returned response's head is fully
// received; its body has not been read yet.
//
// A non-2xx status is not an error here: transport success and
// application success are different judgements, and the latter belongs
// to the caller via FetchResponse.OK.
func (c *Client) Fetch(t *async.Task, rawURL string, opts ...Option) (*FetchResponse, error) {
	if c.Transport == nil {
		return nil, ErrNilTransport
	}

	cfg := requestConfig{method: "GET"}
	for _, opt := range opts {
		opt(&cfg)
	}

	req, err := buildRequest(rawURL, &cfg)
	if err != nil {
		return nil, err
	}

	if c.Logger != nil {
		c.Logger.Debug("fetch", "method", req.Method, "authority", req.Authority, "path", req.PathWithQuery)
	}

	future, err := c.Transport.Submit(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	// A single readiness notification does not guarantee the two-level
	// outcome is available yet, so keep asking until Get is definitive.
	var outcome wasi.ExchangeOutcome
	for {
		got := future.Get()
		if o := got.Some(); o != nil {
			outcome = *o
			future.Close()
			break
		}
		t.AwaitReady(future.Subscribe())
	}

	// Unwrap both levels; a failure at either surfaces as one error.
	if outcome.Err != nil {
		return nil, &TransportError{Err: outcome.Err}
	}
	if outcome.Protocol.Err != nil {
		return nil, &ProtocolError{Err: outcome.Protocol.Err}
	}
	resp := outcome.Protocol.Response
	if resp == nil {
		return nil, ErrNoOutcome
	}

	body, err := resp.Consume()
	if err != nil {
		return nil, err
	}
	return newFetchResponse(resp, NewStream(body)), nil
}

// buildRequest parses rawURL and assembles the immutable-once-sent
// request descriptor.
func buildRequest(rawURL string, cfg *requestConfig) (*wasi.Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	headers := cfg.headers
	body := cfg.body
	if cfg.hasJSON {
		data, err := json.Marshal(cfg.jsonBody)
		if err != nil {
			return nil, &DecodeError{Err: err}
		}
		body = data
		if !hasHeader(headers, "content-type") {
			headers = append(headers, wasi.Field{Name: "content-type", Value: []byte("application/json")})
		}
	}

	scheme := u.Scheme
	if scheme == "" {
		scheme = "http"
	}
	port := u.Port()
	if port == "" {
		if scheme == "https" {
			port = "443"
		} else {
			port = "80"
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	return &wasi.Request{
		Method:        strings.ToUpper(cfg.method),
		Scheme:        scheme,
		Authority:     u.Hostname() + ":" + port,
		PathWithQuery: path,
		Headers:       headers,
		Body:          body,
	}, nil
}

func hasHeader(fields []wasi.Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
