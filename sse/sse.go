package sse

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// DefaultEvent is used when a frame carries data lines but no event line.
const DefaultEvent = "message"

// Event is one decoded server-push frame: the event name plus the raw data
// line. Data is not parsed here; payload schemas belong to the consumer.
type Event struct {
	Event string
	Data  string
}

// Options configures a streaming connection.
//
// OnEvent is required; OnError and OnClose are optional. All callbacks for a
// given connection are invoked sequentially from a single reader goroutine in
// arrival order, so consumers need no locking between frames of one stream.
type Options struct {
	// Method defaults to GET. Run-triggering calls use POST.
	Method string

	// Body is JSON-encoded into the request when non-nil.
	Body any

	// Header entries are added to the request. The Accept header for the
	// streaming content type is always set.
	Header http.Header

	// Client issues the request. Defaults to a client with no overall
	// timeout: the stream is long-lived and ended by frames or Abort.
	Client *http.Client

	// OnEvent receives each decoded frame in arrival order.
	OnEvent func(Event)

	// OnError is invoked once if the body read fails after connecting,
	// unless the stream was aborted.
	OnError func(error)

	// OnClose is invoked once on clean end-of-input, unless aborted.
	OnClose func()
}

// Handle controls an open stream.
type Handle struct {
	cancel  context.CancelFunc
	aborted atomic.Bool
	done    chan struct{}
}

// Abort stops reading immediately and suppresses any subsequent OnError or
// OnClose caused by the abort. Abort is idempotent.
func (h *Handle) Abort() {
	h.aborted.Store(true)
	h.cancel()
}

// Aborted reports whether Abort was called.
func (h *Handle) Aborted() bool { return h.aborted.Load() }

// Done is closed when the reader goroutine has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// connectClient is the fallback HTTP client. Timeout stays zero: a streaming
// response outlives any sensible request deadline.
var connectClient = &http.Client{Timeout: 0}

// Connect opens a streaming request to endpoint and decodes the response body
// as a line-oriented event stream, delivering frames to opts.OnEvent.
//
// A non-2xx status fails here, before any frame is delivered. On success the
// body is consumed on a background goroutine until end-of-input, a read
// failure, or Abort.
func Connect(ctx context.Context, endpoint string, opts Options) (*Handle, error) {
	if opts.OnEvent == nil {
		return nil, fmt.Errorf("sse: OnEvent is required")
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		raw, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, fmt.Errorf("sse: encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("sse: build request: %w", err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")
	if opts.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := opts.Client
	if client == nil {
		client = connectClient
	}

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("sse: connect %s: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("sse: connect %s: unexpected status %d", endpoint, resp.StatusCode)
	}

	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go h.readLoop(resp.Body, opts)

	return h, nil
}

// readLoop decodes frames until the body ends. One frame is the accumulation
// of event:/data: lines terminated by a blank line; frames without data are
// not dispatched.
func (h *Handle) readLoop(body io.ReadCloser, opts Options) {
	defer close(h.done)
	defer body.Close()

	reader := bufio.NewReader(body)
	var event, data string

	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimRight(line, "\r\n")
			switch {
			case strings.HasPrefix(line, "event:"):
				event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			case line == "":
				if data != "" {
					name := event
					if name == "" {
						name = DefaultEvent
					}
					opts.OnEvent(Event{Event: name, Data: data})
				}
				event, data = "", ""
			}
		}

		if err == nil {
			continue
		}
		if h.aborted.Load() {
			return
		}
		if errors.Is(err, io.EOF) {
			if opts.OnClose != nil {
				opts.OnClose()
			}
			return
		}
		if opts.OnError != nil {
			opts.OnError(fmt.Errorf("sse: read stream: %w", err))
		}
		return
	}
}

// WaitDone blocks until the reader goroutine exits or the timeout elapses.
// Intended for tests and orderly shutdown paths.
func (h *Handle) WaitDone(timeout time.Duration) bool {
	select {
	case <-h.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
