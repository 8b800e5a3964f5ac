package engine

import (
	"context"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/http"
)

// Handle is the transport handle a descriptor exclusively owns. Implementations adapt one transport
// library; the engine only ever calls them from the goroutine driving the descriptor
type Handle interface {
	// Reset returns the handle to its default state, dropping the previous exchange
	Reset() error
	// Configure applies timeouts, redirect policy, user agent and keep-alive hints
	Configure(opts *http.Options) error
	// Attach sets the request line, canonical headers, extra headers and body
	Attach(t *http.Target) error
	// Perform runs the exchange and calls fn for every raw response header line
	Perform(ctx context.Context, fn http.HeaderFunc) error
	// ResponseCode is the final HTTP response code, 0 if none was obtained
	ResponseCode() int
	// ResponseBody is valid until the next Reset
	ResponseBody() []byte
	Close() error
}

var _ Handle = (*http.Handle)(nil)

// HandleFactory creates a new transport handle
type HandleFactory func() (Handle, error)

// DefaultHandleFactory creates fasthttp backed handles
func DefaultHandleFactory() (Handle, error) {
	return http.NewHandle()
}

// Authorizer computes the Authorization header value for a request from the canonical header set.
// resource is the canonical resource, e.g. "/bucket/key?acl"
type Authorizer interface {
	Authorize(method, contentType, resource string, headers *amz.CanonicalHeaders) (string, error)
}

// AuthorizerFunc adapts a function into an Authorizer
type AuthorizerFunc func(method, contentType, resource string, headers *amz.CanonicalHeaders) (string, error)

func (f AuthorizerFunc) Authorize(method, contentType, resource string, headers *amz.CanonicalHeaders) (string, error) {
	return f(method, contentType, resource, headers)
}

// Multiplexer advances many registered requests cooperatively. It is owned by the caller; the
// engine only registers ready requests with it. A multiplexer must eventually call Transfer,
// ParseHeaderLine for each header line and Finish exactly once on every request it accepted
type Multiplexer interface {
	Add(r *Request) error
}
