package engine

import (
	"sync/atomic"

	"github.com/assetnote/kites3/pkg/amz"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/http"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/segmentio/ksuid"
)

// State is the lifecycle state of a request descriptor
type State int32

const (
	StateIdle State = iota
	StateInitializing
	StateReady
	StateInFlight
	StateHeadersDelivered
	StateCompleted
	StatePooled
	StateDestroyed
)

var stateNames = [...]string{
	StateIdle:             "idle",
	StateInitializing:     "initializing",
	StateReady:            "ready",
	StateInFlight:         "in-flight",
	StateHeadersDelivered: "headers-delivered",
	StateCompleted:        "completed",
	StatePooled:           "pooled",
	StateDestroyed:        "destroyed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Request is a descriptor for one logical HTTP exchange bound to a reusable transport handle.
// Once handed out by the engine it is exclusively owned by whoever drives the exchange until Finish
// returns it to the pool. It must not be used after Finish.
type Request struct {
	id     ksuid.KSUID
	engine *Engine
	handle Handle
	state  int32

	// used is set once the descriptor has been initialized for an exchange
	used bool

	target    http.Target
	canonical amz.CanonicalHeaders
	parser    amz.HeaderParser
	handler   Handler

	headersCallbackMade  bool
	completeCallbackMade bool
	errPayload           *amz.ErrorPayload
}

// ID uniquely identifies the descriptor across its reuses, used in logs
func (r *Request) ID() string {
	return r.id.String()
}

func (r *Request) State() State {
	return State(atomic.LoadInt32(&r.state))
}

func (r *Request) setState(s State) {
	atomic.StoreInt32(&r.state, int32(s))
	log.Trace().Str("req", r.ID()).Str("state", s.String()).Msg("request state")
}

// Canonical returns the canonical header set attached to the request
func (r *Request) Canonical() *amz.CanonicalHeaders {
	return &r.canonical
}

// URI returns the request URI attached to the request
func (r *Request) URI() string {
	return string(r.target.URI)
}

// newRequest allocates a descriptor and its transport handle
func newRequest(e *Engine) (*Request, error) {
	h, err := e.config.HandleFactory()
	if err != nil {
		return nil, errors2.New(errors2.StatusFailedToCreateRequest, "create handle", err)
	}
	if h == nil {
		return nil, errors2.New(errors2.StatusFailedToCreateRequest, "create handle", nil)
	}
	r := &Request{
		id:     ksuid.New(),
		engine: e,
		handle: h,
	}
	log.Trace().Str("req", r.ID()).Msg("created request")
	return r, nil
}

// initialize clears the previous exchange and resets the handle to the engine defaults so nothing
// leaks between reuses
func (r *Request) initialize(handler Handler) error {
	r.setState(StateInitializing)
	if r.used {
		if err := r.handle.Reset(); err != nil {
			return errors2.New(errors2.StatusFailedToInitializeRequest, "reset handle", err)
		}
	} else {
		r.used = true
	}

	r.target.Reset()
	r.canonical.Reset()
	r.parser.Reset()
	r.handler = handler
	r.headersCallbackMade = false
	r.completeCallbackMade = false
	r.errPayload = nil

	if err := r.handle.Configure(&r.engine.handleOptions); err != nil {
		return errors2.New(errors2.StatusFailedToInitializeRequest, "configure handle", err)
	}
	return nil
}

// destroy closes the transport handle. The descriptor is unusable afterwards
func (r *Request) destroy() error {
	r.setState(StateDestroyed)
	r.handler = Handler{}
	if r.handle == nil {
		return nil
	}
	err := r.handle.Close()
	r.handle = nil
	return err
}
