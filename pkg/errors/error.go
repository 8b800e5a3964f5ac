package errors

import (
	"errors"
	"fmt"

	"github.com/assetnote/kites3/pkg/log"
	"github.com/hashicorp/go-multierror"
)

// prefixfromDepth will create the indent prefix for a certain depth
// of string, e.g. 2 will yield "  " * 2 -> "    "
func prefixFromDepth(depth int) string {
	var p []byte
	for i := 0; i < depth; i++ {
		p = append(p, "  "...)
	}
	return string(p)
}

// PrintError will attempt to traverse the nested error and
// recursively print out any nested RequestErrors found
// If a multierror.Error is found, we will recurisvely print out
// each error found
func PrintError(err error, depth int) {
	var (
		merr *multierror.Error
		rerr *RequestError
	)

	if errors.As(err, &merr) {
		for _, v := range merr.Errors {
			PrintError(v, depth+1)
		}
	} else if errors.As(err, &rerr) {
		rerr.LogError(depth)
	} else {
		log.Debug().Err(err).Msg(prefixFromDepth(depth) + "error")
	}
}

// RequestError encapsulates a failure that prevented a request from being started, or the
// normalised outcome of a failed exchange.
type RequestError struct {
	Status Status // Status is the normalised status for the failure
	Kind   Kind   // Kind determines how the failure was reported to the caller
	Op     string // Op is the engine operation that failed, e.g. "compose headers"
	Err    error  // Err is the underlying cause, may be nil
}

// New creates a RequestError with the kind derived from the status
func New(status Status, op string, err error) *RequestError {
	return &RequestError{Status: status, Kind: KindOfStatus(status), Op: op, Err: err}
}

// Error will return the string representation of the error including its cause. Aggregated
// causes are left out, PrintError displays those one per line.
func (e *RequestError) Error() string {
	var merr *multierror.Error
	if e.Err == nil || errors.As(e.Err, &merr) {
		return fmt.Sprintf("%s error [%s]: %s", e.Kind, e.Status, e.Op)
	}
	return fmt.Sprintf("%s error [%s]: %s: %s", e.Kind, e.Status, e.Op, e.Err.Error())
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is matches any RequestError carrying the same status, so errors.Is(err, ErrBadMetaHeader)
// works regardless of the op or cause attached
func (e *RequestError) Is(target error) bool {
	t, ok := target.(*RequestError)
	if !ok {
		return false
	}
	return t.Status == e.Status
}

// LogError will log to Debug() the context surrounding the error.
// the depth argument modifies the indentation depth of the pretty printed error
func (e *RequestError) LogError(depth int) {
	var (
		merr *multierror.Error
		rerr *RequestError
	)
	base := log.Debug().
		Str("status", e.Status.String()).
		Str("kind", e.Kind.String()).
		Str("op", e.Op)

	if errors.As(e.Err, &merr) {
		base.Msg(prefixFromDepth(depth))
		PrintError(merr, depth+1)
	} else if errors.As(e.Err, &rerr) {
		base.Err(rerr.Err).Msg(prefixFromDepth(depth))
		rerr.LogError(depth + 1)
	} else {
		base.Err(e.Err).Msg(prefixFromDepth(depth))
	}
}

// Sentinels for use with errors.Is
var (
	ErrMetaHeadersTooLong    = &RequestError{Status: StatusMetaHeadersTooLong, Kind: KindValidation}
	ErrBadMetaHeader         = &RequestError{Status: StatusBadMetaHeader, Kind: KindValidation}
	ErrBadCannedACL          = &RequestError{Status: StatusBadCannedACL, Kind: KindValidation}
	ErrInvalidBucketName     = &RequestError{Status: StatusInvalidBucketName, Kind: KindValidation}
	ErrFailedToCreateRequest = &RequestError{Status: StatusFailedToCreateRequest, Kind: KindResource}
	ErrFailedToInitialize    = &RequestError{Status: StatusFailedToInitializeRequest, Kind: KindResource}
	ErrFailedToRegister      = &RequestError{Status: StatusFailedToRegister, Kind: KindRegistration}
)

// StatusOf returns the status carried by err. nil yields StatusOK and errors that
// are not RequestErrors yield StatusFailure
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Status
	}
	return StatusFailure
}

// KindOf returns the kind carried by err
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return KindExchange
}
