package wasihttp

import (
	"bytes"
	"errors"
	"io"

	"github.com/fastertools/wasi-async-go/async"
	"github.com/fastertools/wasi-async-go/wasi"
)

// DefaultChunkSize is the read granularity ReadAll uses.
const DefaultChunkSize = 64 * 1024

// Stream is the pull-based, single-consumption view of a response body.
// Reads are non-blocking at the host level; when no bytes are available
// the stream suspends on its own pollable and retries, because an empty
// result is ambiguous between "try again later" and "done" and only the
// host's explicit closed signal disambiguates.
type Stream struct {
	body      wasi.Body
	exhausted bool
}

// NewStream wraps a host body stream.
func NewStream(body wasi.Body) *Stream {
	return &Stream{body: body}
}

// Read returns up to max bytes, suspending the task until data arrives.
// A nil, nil return means end of stream. Once the stream is exhausted
// every further Read returns empty without touching the host.
func (s *Stream) Read(t *async.Task, max uint64) ([]byte, error) {
	if s.exhausted {
		return nil, nil
	}
	for {
		chunk, err := s.body.Read(max)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// The closed signal is normal end of stream, not
				// failure.
				s.exhausted = true
				s.body.Close()
				return nil, nil
			}
			return nil, err
		}
		if data := chunk.Slice(); len(data) > 0 {
			return data, nil
		}
		t.AwaitReady(s.body.Subscribe())
	}
}

// ReadAll drains the stream in DefaultChunkSize reads and returns the
// concatenated body.
func (s *Stream) ReadAll(t *async.Task) ([]byte, error) {
	var buf bytes.Buffer
	for {
		chunk, err := s.Read(t, DefaultChunkSize)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			return buf.Bytes(), nil
		}
		buf.Write(chunk)
	}
}
