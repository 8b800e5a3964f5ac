package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/valyala/fasthttp"
)

var (
	errHandleClosed  = fmt.Errorf("transport handle closed")
	errNotConfigured = fmt.Errorf("transport handle not configured")
)

// classify normalises a transport error into an exchange RequestError
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rerr *errors2.RequestError
	if errors.As(err, &rerr) {
		return err
	}
	return errors2.New(statusOf(err), "perform", err)
}

func statusOf(err error) errors2.Status {
	var nerr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return errors2.StatusInterrupted
	case errors.Is(err, context.DeadlineExceeded),
		err == fasthttp.ErrTimeout,
		err == fasthttp.ErrDialTimeout:
		return errors2.StatusTimedOut
	case err == fasthttp.ErrTooManyRedirects:
		return errors2.StatusTooManyRedirects
	case err == fasthttp.ErrNoFreeConns,
		err == fasthttp.ErrConnectionClosed,
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return errors2.StatusConnectionFailed
	case errors.As(err, &nerr):
		if nerr.Timeout() {
			return errors2.StatusTimedOut
		}
		return errors2.StatusConnectionFailed
	}
	return errors2.StatusFailure
}
