package engine

import (
	"github.com/assetnote/kites3/pkg/amz"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/rs/zerolog"
)

// Result is delivered to the completion callback
type Result struct {
	Status errors2.Status
	// HTTPCode is the final response code, 0 if no response was obtained
	HTTPCode int
	// Err is the error document the server returned, if any
	Err *amz.ErrorPayload
	// Cause is the transport error behind a failed status, if any
	Cause error
}

// OK reports whether the exchange completed with a 2xx response
func (r Result) OK() bool {
	return r.Status == errors2.StatusOK
}

func (r Result) MarshalZerologObject(e *zerolog.Event) {
	e.Str("status", r.Status.String()).Int("code", r.HTTPCode)
	if r.Err != nil {
		e.Object("error", r.Err)
	}
	if r.Cause != nil {
		e.AnErr("cause", r.Cause)
	}
}

// Handler receives the outcome of a request. Every exchange that was started calls OnHeaders
// exactly once and then OnComplete exactly once, in that order, including when the exchange fails
// before any header arrived. OnData, if set, is called with the body of a 2xx response between the
// two.
//
// The header record and body are owned by the engine and are only valid during the callback. Use
// ResponseHeaders.Clone or copy the body to retain them.
//
// Any callback may be nil.
type Handler struct {
	OnHeaders  func(h *amz.ResponseHeaders)
	OnData     func(body []byte)
	OnComplete func(res Result)
}
