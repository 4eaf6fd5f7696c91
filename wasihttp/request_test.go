package wasihttp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	tests := []struct {
		name          string
		url           string
		opts          []Option
		method        string
		scheme        string
		authority     string
		pathWithQuery string
	}{
		{
			name:          "defaults",
			url:           "http://example.com",
			method:        "GET",
			scheme:        "http",
			authority:     "example.com:80",
			pathWithQuery: "/",
		},
		{
			name:          "https default port",
			url:           "https://example.com/v1/items",
			method:        "GET",
			scheme:        "https",
			authority:     "example.com:443",
			pathWithQuery: "/v1/items",
		},
		{
			name:          "explicit port and query",
			url:           "http://example.com:8080/search?q=go&n=2",
			method:        "GET",
			scheme:        "http",
			authority:     "example.com:8080",
			pathWithQuery: "/search?q=go&n=2",
		},
		{
			name:          "method normalized to upper case",
			url:           "http://example.com/",
			opts:          []Option{WithMethod("post")},
			method:        "POST",
			scheme:        "http",
			authority:     "example.com:80",
			pathWithQuery: "/",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := requestConfig{method: "GET"}
			for _, opt := range tc.opts {
				opt(&cfg)
			}
			req, err := buildRequest(tc.url, &cfg)
			require.NoError(t, err)
			assert.Equal(t, tc.method, req.Method)
			assert.Equal(t, tc.scheme, req.Scheme)
			assert.Equal(t, tc.authority, req.Authority)
			assert.Equal(t, tc.pathWithQuery, req.PathWithQuery)
		})
	}
}

func TestJSONBodySetsContentType(t *testing.T) {
	cfg := requestConfig{method: "POST"}
	WithJSON(map[string]int{"n": 1})(&cfg)

	req, err := buildRequest("http://example.com/api", &cfg)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"n":1}`), req.Body)

	require.Len(t, req.Headers, 1)
	assert.Equal(t, "content-type", req.Headers[0].Name)
	assert.Equal(t, "application/json", string(req.Headers[0].Value))
}

func TestJSONBodyRespectsCallerContentType(t *testing.T) {
	cfg := requestConfig{method: "POST"}
	WithHeader("Content-Type", "application/vnd.api+json")(&cfg)
	WithJSON(map[string]int{"n": 1})(&cfg)

	req, err := buildRequest("http://example.com/api", &cfg)
	require.NoError(t, err)

	var contentTypes []string
	for _, f := range req.Headers {
		if f.Name == "content-type" {
			contentTypes = append(contentTypes, string(f.Value))
		}
	}
	assert.Equal(t, []string{"application/vnd.api+json"}, contentTypes,
		"an explicit content-type is never overridden")
}

func TestHeaderNamesLowerCased(t *testing.T) {
	cfg := requestConfig{method: "GET"}
	WithHeader("X-Trace-ID", "abc")(&cfg)
	WithHeaders(map[string]string{"Accept": "application/json"})(&cfg)

	req, err := buildRequest("http://example.com/", &cfg)
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range req.Headers {
		names[f.Name] = true
	}
	assert.True(t, names["x-trace-id"])
	assert.True(t, names["accept"])
}

func TestUnparsableURL(t *testing.T) {
	cfg := requestConfig{method: "GET"}
	_, err := buildRequest("http://bad url with spaces", &cfg)
	assert.Error(t, err)
}
