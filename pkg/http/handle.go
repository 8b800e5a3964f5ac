package http

import (
	"context"
	"net"
	"strconv"
	"time"

	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
)

var (
	strCRLF     = []byte("\r\n")
	strProtocol = []byte("HTTP/1.1 ")
)

// HeaderFunc is called with every raw response header line including its "\r\n" terminator,
// the status line first and a bare "\r\n" last. The line is only valid for the duration of the call
type HeaderFunc func(line []byte)

// Handle is a reusable transport handle backed by fasthttp. Each handle owns its own client and
// therefore its own set of keep-alive connections, so reusing the most recently used handle gives
// the best chance of reusing a warm connection.
//
// A handle is not safe for concurrent use. Reset keeps the connections and drops the previous
// exchange's request and response state.
type Handle struct {
	client *fasthttp.Client
	opts   Options
	req    *fasthttp.Request
	resp   *fasthttp.Response
	code   int
}

// NewHandle allocates a handle. It must be configured before use
func NewHandle() (*Handle, error) {
	return &Handle{
		req:  fasthttp.AcquireRequest(),
		resp: fasthttp.AcquireResponse(),
	}, nil
}

// Reset returns the handle to its default state, ready to be configured again
func (h *Handle) Reset() error {
	if h.req == nil || h.resp == nil {
		return errors2.New(errors2.StatusFailedToInitializeRequest, "reset handle", errHandleClosed)
	}
	h.req.Reset()
	h.resp.Reset()
	h.code = 0
	return nil
}

// Configure applies opts. The client and its connections are kept when the options are unchanged
func (h *Handle) Configure(opts *Options) error {
	if h.req == nil {
		return errors2.New(errors2.StatusFailedToInitializeRequest, "configure handle", errHandleClosed)
	}
	if h.client != nil && h.opts.equal(opts) {
		return nil
	}
	h.opts = *opts

	maxConns := opts.MaxConns
	if maxConns < 1 {
		maxConns = fasthttp.DefaultMaxConnsPerHost
	}
	h.client = &fasthttp.Client{
		Name:                          opts.UserAgent,
		NoDefaultUserAgentHeader:      opts.UserAgent == "",
		ReadTimeout:                   opts.Timeout,
		WriteTimeout:                  opts.Timeout,
		MaxConnsPerHost:               maxConns,
		MaxIdleConnDuration:           opts.KeepAlive,
		DisableHeaderNamesNormalizing: true,
		Dial:                          h.dialer(),
	}
	return nil
}

func (h *Handle) dialer() fasthttp.DialFunc {
	dial := h.opts.Dial
	connectTimeout := h.opts.ConnectTimeout
	if dial == nil {
		dial = func(addr string) (net.Conn, error) {
			if connectTimeout > 0 {
				return fasthttp.DialTimeout(addr, connectTimeout)
			}
			return fasthttp.Dial(addr)
		}
	}
	idle := h.opts.LowSpeedTime
	if idle <= 0 {
		return fasthttp.DialFunc(dial)
	}
	return func(addr string) (net.Conn, error) {
		c, err := dial(addr)
		if err != nil {
			return nil, err
		}
		return newIdleConn(c, idle), nil
	}
}

// Attach prepares the request from t. The canonical headers are sent verbatim, without header
// name normalization
func (h *Handle) Attach(t *Target) error {
	h.req.Header.DisableNormalizing()
	h.resp.Header.DisableNormalizing()

	h.req.SetRequestURIBytes(t.URI)
	// keys arrive percent encoded and must reach the server byte for byte. URI() parses the uri
	// first, which resets the flag, so it is set afterwards
	h.req.URI().DisablePathNormalizing = true
	h.req.Header.SetMethod(t.Method)
	if h.opts.UserAgent != "" {
		h.req.Header.SetUserAgent(h.opts.UserAgent)
	}
	if t.Canonical != nil {
		t.Canonical.VisitAll(func(k, v []byte) {
			h.req.Header.SetBytesKV(k, v)
		})
	}
	for _, v := range t.Headers {
		if v.Key == fasthttp.HeaderContentType {
			h.req.Header.SetContentType(v.Value)
			continue
		}
		h.req.Header.Set(v.Key, v.Value)
	}
	if len(t.Body) > 0 {
		h.req.SetBody(t.Body)
	} else if t.Method == fasthttp.MethodPut || t.Method == fasthttp.MethodPost {
		// an explicit zero length so the server does not wait for a body
		h.req.Header.SetContentLength(0)
	}
	h.resp.SkipBody = t.Method == fasthttp.MethodHead
	log.Trace().Str("method", t.Method).Bytes("uri", t.URI).Array("headers", t.Headers).Msg("attached request")
	return nil
}

// Perform runs the exchange, following redirects, and then replays the final response's header
// lines to fn. The context deadline, if any, bounds the whole exchange. Cancellation is observed
// between redirects since a fasthttp exchange cannot be interrupted once started.
//
// Errors are *errors.RequestError values carrying an exchange status
func (h *Handle) Perform(ctx context.Context, fn HeaderFunc) error {
	if h.client == nil {
		return errors2.New(errors2.StatusFailedToInitializeRequest, "perform", errNotConfigured)
	}
	if err := ctx.Err(); err != nil {
		return classify(err)
	}
	deadline, _ := ctx.Deadline()

	err := h.doFollowRedirects(ctx, deadline)
	if err != nil && err != fasthttp.ErrTooManyRedirects && err != fasthttp.ErrMissingLocation {
		return classify(err)
	}
	// on redirect failures the last redirect response received is reported as the final one
	h.code = h.resp.StatusCode()
	if fn != nil {
		h.replayHeaders(fn)
	}
	return classify(err)
}

func (h *Handle) do(deadline time.Time) error {
	if deadline.IsZero() {
		return h.client.Do(h.req, h.resp)
	}
	return h.client.DoDeadline(h.req, h.resp, deadline)
}

func (h *Handle) replayHeaders(fn HeaderFunc) {
	b := bytebufferpool.Get()
	b.B = append(b.B[:0], strProtocol...)
	b.B = strconv.AppendInt(b.B, int64(h.code), 10)
	b.B = append(b.B, ' ')
	b.B = append(b.B, fasthttp.StatusMessage(h.code)...)
	b.B = append(b.B, strCRLF...)
	fn(b.B)

	h.resp.Header.VisitAll(func(k, v []byte) {
		b.B = append(b.B[:0], k...)
		b.B = append(b.B, ": "...)
		b.B = append(b.B, v...)
		b.B = append(b.B, strCRLF...)
		fn(b.B)
	})
	bytebufferpool.Put(b)
	fn(strCRLF)
}

// ResponseCode returns the final HTTP response code, 0 if no response was obtained
func (h *Handle) ResponseCode() int {
	return h.code
}

// ResponseBody returns the final response body. It is valid until the next Reset
func (h *Handle) ResponseBody() []byte {
	if h.code == 0 || h.resp == nil {
		return nil
	}
	return h.resp.Body()
}

// Close releases the request and response. Idle connections are closed by the client once their
// keep-alive expires
func (h *Handle) Close() error {
	if h.req == nil {
		return errHandleClosed
	}
	fasthttp.ReleaseRequest(h.req)
	fasthttp.ReleaseResponse(h.resp)
	h.req = nil
	h.resp = nil
	h.client = nil
	log.Trace().Msg("closed transport handle")
	return nil
}
