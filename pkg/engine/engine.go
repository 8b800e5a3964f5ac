package engine

import (
	"fmt"
	"sync/atomic"

	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/http"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/hashicorp/go-multierror"
)

var errEngineClosed = fmt.Errorf("engine is closed")

// Engine owns the process wide state shared by every request: the pool of idle descriptors and
// the user agent. It is safe for concurrent use. Create one with New and tear it down with Close
// once no exchange is in flight
type Engine struct {
	config        Config
	pool          *Pool
	userAgent     string
	handleOptions http.Options
	closed        int32
}

// New validates the configuration, builds the user agent and creates the descriptor pool
func New(opts ...ConfigOption) (*Engine, error) {
	config := NewDefaultConfig()
	for _, o := range opts {
		o(config)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		config:    *config,
		pool:      NewPool(config.PoolSize),
		userAgent: buildUserAgent(config.UserAgentInfo),
	}
	e.handleOptions = e.config.handleOptions(e.userAgent)

	log.Debug().
		Str("user_agent", e.userAgent).
		Int("pool_size", e.config.PoolSize).
		Int("max_redirects", e.config.MaxRedirects).
		Msg("engine initialized")
	return e, nil
}

// UserAgent returns the user agent sent with every request
func (e *Engine) UserAgent() string {
	return e.userAgent
}

// Config returns a copy of the validated configuration
func (e *Engine) Config() Config {
	return e.config
}

// Idle is the number of descriptors waiting in the pool
func (e *Engine) Idle() int {
	return e.pool.Len()
}

// Close drains the pool and destroys every idle descriptor. Descriptors released afterwards are
// destroyed instead of pooled. Close must not race with Do or Add
func (e *Engine) Close() error {
	if !atomic.CompareAndSwapInt32(&e.closed, 0, 1) {
		return nil
	}
	var merr *multierror.Error
	idle := e.pool.Drain()
	for _, r := range idle {
		if err := r.destroy(); err != nil {
			merr = multierror.Append(merr, fmt.Errorf("destroy request %s: %w", r.ID(), err))
		}
	}
	log.Debug().Int("destroyed", len(idle)).Msg("engine closed")
	return merr.ErrorOrNil()
}

// get hands out an initialized descriptor, reusing the most recently released one if possible.
// A descriptor that fails to initialize is destroyed and never pooled
func (e *Engine) get(handler Handler) (*Request, error) {
	if atomic.LoadInt32(&e.closed) == 1 {
		return nil, errors2.New(errors2.StatusFailedToCreateRequest, "acquire request", errEngineClosed)
	}

	r := e.pool.Get()
	if r == nil {
		log.Trace().Msg("request pool miss")
		var err error
		if r, err = newRequest(e); err != nil {
			return nil, err
		}
	}

	if err := r.initialize(handler); err != nil {
		log.Debug().Str("req", r.ID()).Err(err).Msg("failed to initialize request")
		if derr := r.destroy(); derr != nil {
			log.Trace().Str("req", r.ID()).Err(derr).Msg("failed to destroy request")
		}
		return nil, err
	}
	return r, nil
}

// release returns r to the pool or destroys it if the pool is full. In flight descriptors are
// never released and releasing twice is a no-op
func (e *Engine) release(r *Request) {
	switch st := r.State(); st {
	case StatePooled, StateDestroyed:
		log.Trace().Str("req", r.ID()).Str("state", st.String()).Msg("ignoring repeated release")
		return
	case StateInFlight, StateHeadersDelivered:
		log.Error().Str("req", r.ID()).Str("state", st.String()).Msg("refusing to release in flight request")
		return
	}

	r.handler = Handler{}
	r.target.Body = nil
	r.errPayload = nil

	// the state must be set before the descriptor becomes visible to other goroutines
	r.setState(StatePooled)
	if e.pool.Put(r) {
		return
	}
	log.Trace().Str("req", r.ID()).Msg("request pool full, destroying")
	if err := r.destroy(); err != nil {
		log.Debug().Str("req", r.ID()).Err(err).Msg("failed to destroy request")
	}
}
