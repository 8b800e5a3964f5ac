package multiplex

import (
	"context"
	"fmt"
	"sync"

	"github.com/assetnote/kites3/pkg/engine"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/google/uuid"
)

var (
	// ErrClosed is returned when adding to a closed context
	ErrClosed = fmt.Errorf("multiplexer is closed")
	// ErrFull is returned when MaxPending requests are already registered
	ErrFull = fmt.Errorf("multiplexer is full")
	// ErrRemoved is the reason reported for requests removed before their exchange finished
	ErrRemoved = errors2.New(errors2.StatusInterrupted, "remove request", nil)
)

// Context drives many requests from a single goroutine. The exchanges themselves run on short
// lived worker goroutines, bounded by the configured concurrency, but every callback is made on the
// goroutine calling RunOnce, Run, Remove or Close. Only one goroutine may drive a context at a time;
// Add is safe to call from any goroutine, including from inside a callback.
type Context struct {
	id     uuid.UUID
	config Config

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending []*entry
	active  map[*engine.Request]*entry
	closed  bool

	done chan *entry
}

var _ engine.Multiplexer = (*Context)(nil)

func New(opts ...ConfigOption) *Context {
	config := NewDefaultConfig()
	for _, o := range opts {
		o(config)
	}
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Context{
		id:     uuid.New(),
		config: *config,
		ctx:    ctx,
		cancel: cancel,
		active: make(map[*engine.Request]*entry, config.Concurrency),
		done:   make(chan *entry, config.Concurrency),
	}
	log.Debug().Str("mux", c.id.String()).Int("concurrency", config.Concurrency).Msg("created multiplexer")
	return c
}

// ID identifies the context in logs
func (c *Context) ID() string {
	return c.id.String()
}

// Add registers r. The exchange starts on the next call to RunOnce or Run
func (c *Context) Add(r *engine.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if c.config.MaxPending > 0 && len(c.pending)+len(c.active) >= c.config.MaxPending {
		return ErrFull
	}
	c.pending = append(c.pending, acquireEntry(r))
	log.Trace().Str("mux", c.id.String()).Str("req", r.ID()).Msg("registered request")
	return nil
}

// Remove abandons r. A request whose exchange has not started is finished immediately as
// interrupted, making its callbacks on the calling goroutine. A request in flight is cancelled and
// reported as interrupted once its transport returns. It returns false if r is not registered
func (c *Context) Remove(r *engine.Request) bool {
	c.mu.Lock()
	for i, en := range c.pending {
		if en.req != r {
			continue
		}
		copy(c.pending[i:], c.pending[i+1:])
		c.pending[len(c.pending)-1] = nil
		c.pending = c.pending[:len(c.pending)-1]
		c.mu.Unlock()

		log.Trace().Str("mux", c.id.String()).Str("req", r.ID()).Msg("removed pending request")
		releaseEntry(en)
		r.Finish(ErrRemoved)
		return true
	}

	en, ok := c.active[r]
	if ok {
		en.removed = true
		en.cancel()
	}
	c.mu.Unlock()
	if ok {
		log.Trace().Str("mux", c.id.String()).Str("req", r.ID()).Msg("removed active request")
	}
	return ok
}

// Pending returns how many registered requests have not been finished yet
func (c *Context) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) + len(c.active)
}

// start launches pending exchanges until the concurrency limit is reached
func (c *Context) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) > 0 && len(c.active) < c.config.Concurrency {
		en := c.pending[0]
		c.pending[0] = nil
		c.pending = c.pending[1:]

		var ctx context.Context
		ctx, en.cancel = context.WithCancel(c.ctx)
		c.active[en.req] = en
		go c.transfer(ctx, en)
	}
}

func (c *Context) transfer(ctx context.Context, en *entry) {
	en.err = en.req.Transfer(ctx, en.capture)
	en.cancel()
	c.done <- en
}

// finish replays the captured headers and finalizes the request on the driving goroutine
func (c *Context) finish(en *entry) {
	c.mu.Lock()
	delete(c.active, en.req)
	removed := en.removed
	c.mu.Unlock()

	r, err := en.req, en.err
	if removed {
		err = ErrRemoved
	} else {
		en.replay()
	}
	releaseEntry(en)
	r.Finish(err)
}

// RunOnce starts as many registered exchanges as the concurrency allows, then waits until at least
// one running exchange finishes and finalizes every finished one. It returns the number of requests
// still registered. It returns early with the context's error if ctx is done
func (c *Context) RunOnce(ctx context.Context) (int, error) {
	c.start()
	if c.running() == 0 {
		return c.Pending(), nil
	}

	select {
	case en := <-c.done:
		c.finish(en)
	case <-ctx.Done():
		return c.Pending(), ctx.Err()
	}
	for {
		select {
		case en := <-c.done:
			c.finish(en)
		default:
			return c.Pending(), nil
		}
	}
}

// Run drives the context until every registered request, including those added from callbacks, is
// finished or ctx is done
func (c *Context) Run(ctx context.Context) error {
	for {
		n, err := c.RunOnce(ctx)
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}

func (c *Context) running() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.active)
}

// Close refuses further requests, finishes every pending request as interrupted and waits for the
// running exchanges, which are cancelled and reported as interrupted too
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = nil
	for _, en := range c.active {
		en.removed = true
	}
	c.mu.Unlock()
	c.cancel()

	for _, en := range pending {
		r := en.req
		releaseEntry(en)
		r.Finish(ErrRemoved)
	}
	for c.running() > 0 {
		c.finish(<-c.done)
	}
	log.Debug().Str("mux", c.id.String()).Int("interrupted", len(pending)).Msg("closed multiplexer")
}
