package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/assetnote/kites3/pkg/amz"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/http"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/valyala/fasthttp"
)

// composed canonical header sets are swapped into the descriptor, the descriptor's old buffers
// come back here
var canonicalPool = sync.Pool{
	New: func() interface{} {
		return &amz.CanonicalHeaders{}
	},
}

const (
	headerAuthorization = "Authorization"
)

// Do performs the request described by p on the calling goroutine and blocks until the exchange
// is finished. The handler's callbacks run on the calling goroutine before Do returns.
//
// The returned error is only ever a resource or validation error, in which case no callback is
// made. Every exchange failure is reported through OnComplete
func (e *Engine) Do(ctx context.Context, p Params, h Handler) error {
	r, err := e.prepare(&p, h)
	if err != nil {
		return err
	}
	r.Finish(r.Transfer(ctx, r.ParseHeaderLine))
	return nil
}

// Add prepares the request described by p and registers it with m, which then owns driving the
// exchange. The returned descriptor identifies the request to m, e.g. to remove it, and must not be
// used once its completion callback has been made.
//
// If m refuses the request it is released without any callback and a registration error is
// returned
func (e *Engine) Add(p Params, h Handler, m Multiplexer) (*Request, error) {
	r, err := e.prepare(&p, h)
	if err != nil {
		return nil, err
	}
	if m == nil {
		e.release(r)
		return nil, errors2.New(errors2.StatusFailedToRegister, "register request", fmt.Errorf("no multiplexer"))
	}
	if err := m.Add(r); err != nil {
		log.Debug().Str("req", r.ID()).Err(err).Msg("multiplexer refused request")
		e.release(r)
		return nil, errors2.New(errors2.StatusFailedToRegister, "register request", err)
	}
	return r, nil
}

// prepare validates p, acquires a descriptor and attaches the request to its handle. The headers
// are composed before a descriptor is acquired so validation never touches the pool
func (e *Engine) prepare(p *Params, h Handler) (*Request, error) {
	scratch := canonicalPool.Get().(*amz.CanonicalHeaders)
	if err := amz.ComposeHeaders(scratch, &p.Headers, e.config.Clock()); err != nil {
		canonicalPool.Put(scratch)
		return nil, err
	}

	r, err := e.get(h)
	if err != nil {
		canonicalPool.Put(scratch)
		return nil, err
	}
	r.canonical, *scratch = *scratch, r.canonical
	scratch.Reset()
	canonicalPool.Put(scratch)

	if err := r.attach(p, e.config.Authorizer); err != nil {
		e.release(r)
		return nil, err
	}
	r.setState(StateReady)
	log.Trace().Str("req", r.ID()).Object("params", p).Msg("request ready")
	return r, nil
}

func (r *Request) attach(p *Params, auth Authorizer) error {
	t := &r.target
	t.Method = p.Method
	if t.Method == "" {
		t.Method = fasthttp.MethodGet
	}
	t.URI = p.AppendURI(t.URI[:0])
	t.Canonical = &r.canonical
	t.Body = p.Body
	if p.ContentType != "" {
		t.Headers.Set(fasthttp.HeaderContentType, p.ContentType)
	}
	if auth != nil {
		v, err := auth.Authorize(t.Method, p.ContentType, p.CanonicalResource(), &r.canonical)
		if err != nil {
			return errors2.New(errors2.StatusFailedToCreateRequest, "authorize request", err)
		}
		if v != "" {
			t.Headers.Set(headerAuthorization, v)
		}
	}
	if err := r.handle.Attach(t); err != nil {
		return errors2.New(errors2.StatusFailedToCreateRequest, "attach request", err)
	}
	return nil
}

// Transfer runs the exchange on the calling goroutine, calling fn for every raw response header
// line. Blocking callers pass ParseHeaderLine; multiplexers may buffer the lines and replay them
// later. The returned error must be handed to Finish
func (r *Request) Transfer(ctx context.Context, fn http.HeaderFunc) error {
	if st := r.State(); st != StateReady {
		return errors2.New(errors2.StatusInternalError, "transfer", fmt.Errorf("request is %s", st))
	}
	r.setState(StateInFlight)
	return r.handle.Perform(ctx, fn)
}

// ParseHeaderLine feeds one raw header line to the response parser. The headers callback fires on
// the line completing the header section; lines after that are ignored
func (r *Request) ParseHeaderLine(line []byte) {
	if r.parser.Feed(line) {
		r.deliverHeaders()
	}
}

func (r *Request) deliverHeaders() {
	if r.headersCallbackMade {
		return
	}
	r.headersCallbackMade = true
	r.setState(StateHeadersDelivered)
	if r.handler.OnHeaders != nil {
		r.handler.OnHeaders(&r.parser.Headers)
	}
}

// Finish is the single finalization path of a request: it normalizes err into a status, makes the
// headers callback if the transport never completed the header section, makes the completion
// callback and finally releases the descriptor. Calling Finish more than once is a no-op.
//
// err is the error returned by Transfer, or the reason a multiplexer gave up on the request
func (r *Request) Finish(err error) {
	e := r.engine
	if st := r.State(); st == StatePooled || st == StateDestroyed {
		log.Trace().Str("req", r.ID()).Str("state", st.String()).Msg("ignoring repeated finish")
		return
	}

	res := Result{Status: errors2.StatusOf(err)}
	if err != nil {
		res.Cause = err
	}

	var body []byte
	if r.handle != nil {
		res.HTTPCode = r.handle.ResponseCode()
		body = r.handle.ResponseBody()
	}
	if err == nil && (res.HTTPCode < 200 || res.HTTPCode > 299) {
		res.Status = errors2.StatusHTTPError
		if res.HTTPCode >= 300 && len(body) > 0 {
			payload, perr := amz.ParseErrorDocument(body, res.HTTPCode)
			if perr != nil {
				log.Trace().Str("req", r.ID()).Err(perr).Msg("response body is not an error document")
			} else {
				r.errPayload = payload
			}
		}
	}
	res.Err = r.errPayload

	if !r.parser.Complete() {
		r.parser.MarkComplete()
	}
	r.deliverHeaders()

	if res.Status == errors2.StatusOK && len(body) > 0 && r.handler.OnData != nil {
		r.handler.OnData(body)
	}

	if !r.completeCallbackMade {
		r.completeCallbackMade = true
		r.setState(StateCompleted)
		log.Trace().Str("req", r.ID()).Object("result", res).Msg("request complete")
		if r.handler.OnComplete != nil {
			r.handler.OnComplete(res)
		}
	}
	e.release(r)
}
