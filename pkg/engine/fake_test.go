package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/http"
)

// fakeHandle records what the engine does to it and replays a canned response
type fakeHandle struct {
	resets, configures, attaches, performs, closes int

	resetErr, configureErr, attachErr, performErr error

	lines []string
	code  int
	body  []byte

	opts      http.Options
	method    string
	uri       string
	canonical string
	headers   http.Headers

	performed bool
}

func (f *fakeHandle) Reset() error {
	f.resets++
	f.performed = false
	return f.resetErr
}

func (f *fakeHandle) Configure(opts *http.Options) error {
	f.configures++
	f.opts = *opts
	return f.configureErr
}

func (f *fakeHandle) Attach(t *http.Target) error {
	f.attaches++
	f.method = t.Method
	f.uri = string(t.URI)
	if t.Canonical != nil {
		f.canonical = t.Canonical.String()
	}
	f.headers = append(f.headers[:0], t.Headers...)
	return f.attachErr
}

func (f *fakeHandle) Perform(ctx context.Context, fn http.HeaderFunc) error {
	f.performs++
	if f.performErr != nil {
		return f.performErr
	}
	f.performed = true
	for _, l := range f.lines {
		fn([]byte(l))
	}
	return nil
}

func (f *fakeHandle) ResponseCode() int {
	if !f.performed {
		return 0
	}
	return f.code
}

func (f *fakeHandle) ResponseBody() []byte {
	if !f.performed {
		return nil
	}
	return f.body
}

func (f *fakeHandle) Close() error {
	f.closes++
	return nil
}

// fakeFactory hands out handles built by newHandle and keeps them for inspection
type fakeFactory struct {
	mu        sync.Mutex
	handles   []*fakeHandle
	err       error
	newHandle func() *fakeHandle
	created   int32
}

func (f *fakeFactory) factory() (Handle, error) {
	if f.err != nil {
		return nil, f.err
	}
	atomic.AddInt32(&f.created, 1)
	h := &fakeHandle{code: 200, lines: okLines}
	if f.newHandle != nil {
		h = f.newHandle()
	}
	f.mu.Lock()
	f.handles = append(f.handles, h)
	f.mu.Unlock()
	return h, nil
}

func (f *fakeFactory) last() *fakeHandle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.handles) == 0 {
		return nil
	}
	return f.handles[len(f.handles)-1]
}

var okLines = []string{
	"HTTP/1.1 200 OK\r\n",
	"x-amz-request-id: REQ1\r\n",
	"ETag: \"abc\"\r\n",
	"Content-Length: 3\r\n",
	"\r\n",
}

var fixedNow = time.Date(2021, time.March, 4, 5, 6, 7, 0, time.UTC)

func newTestEngine(f *fakeFactory, opts ...ConfigOption) (*Engine, error) {
	opts = append([]ConfigOption{
		WithHandleFactory(f.factory),
		WithClock(func() time.Time { return fixedNow }),
		UserAgentInfo("test-info"),
	}, opts...)
	return New(opts...)
}

// recorder captures the callback sequence of a request
type recorder struct {
	events  []string
	etag    string
	body    string
	results []Result
}

func (r *recorder) handler() Handler {
	return Handler{
		OnHeaders: func(h *amz.ResponseHeaders) {
			r.events = append(r.events, "headers")
			r.etag = h.ETag
		},
		OnData: func(b []byte) {
			r.events = append(r.events, "data")
			r.body = string(b)
		},
		OnComplete: func(res Result) {
			r.events = append(r.events, "complete")
			r.results = append(r.results, res)
		},
	}
}

// queueMux accepts every request and leaves driving them to the test
type queueMux struct {
	reqs []*Request
	err  error
}

func (m *queueMux) Add(r *Request) error {
	if m.err != nil {
		return m.err
	}
	m.reqs = append(m.reqs, r)
	return nil
}
