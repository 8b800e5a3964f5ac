package http

import (
	"bytes"
	"context"
	"time"

	"github.com/assetnote/kites3/pkg/log"
	"github.com/valyala/fasthttp"
)

var (
	strLocation      = []byte(fasthttp.HeaderLocation)
	strLocationLower = []byte("location")
)

// doFollowRedirects will perform the prepared request and follow up to opts.MaxRedirects redirects.
// Only the final response is kept in h.resp
func (h *Handle) doFollowRedirects(ctx context.Context, deadline time.Time) error {
	redirectsCount := 0
	for {
		if err := h.do(deadline); err != nil {
			return err
		}
		statusCode := h.resp.StatusCode()
		if !StatusCodeIsRedirect(statusCode) || h.opts.MaxRedirects == 0 {
			return nil
		}

		redirectsCount++
		if redirectsCount > h.opts.MaxRedirects {
			log.Trace().Msg("bailing out. reached max redirects")
			return fasthttp.ErrTooManyRedirects
		}

		// header names are not normalized on our responses
		location := h.resp.Header.PeekBytes(strLocation)
		if len(location) == 0 {
			location = h.resp.Header.PeekBytes(strLocationLower)
		}
		if len(location) == 0 {
			log.Trace().Msg("bailing out. reached missing location header")
			return fasthttp.ErrMissingLocation
		}
		samehost := updateRedirectURL(h.req.URI(), location)
		log.Trace().
			Bytes("location", location).
			Bool("samehost", samehost).
			Msg("following redirect")

		// a 303 is always followed with a GET and no body
		if statusCode == fasthttp.StatusSeeOther {
			h.req.Header.SetMethod(fasthttp.MethodGet)
			h.req.ResetBody()
		}
		// the host header is derived from the uri, drop any stale one
		if !samehost {
			h.req.Header.SetHostBytes(h.req.URI().Host())
		}
		skipBody := h.resp.SkipBody
		h.resp.Reset()
		h.resp.Header.DisableNormalizing()
		h.resp.SkipBody = skipBody

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// updateRedirectURL will update base with the location header. This will also return if the
// redirect is on the same host or not.
func updateRedirectURL(base *fasthttp.URI, location []byte) bool {
	// preserve the old values to determine whether our scheme/host has changed
	var (
		host   = append([]byte{}, base.Host()...)
		scheme = append([]byte{}, base.Scheme()...)
	)
	base.UpdateBytes(location)
	// we need to compare the host (including port) and the scheme (protocol), otherwise we'll be trying a http
	// request against a https redirect
	return bytes.Equal(host, base.Host()) && bytes.Equal(scheme, base.Scheme())
}

// StatusCodeIsRedirect returns true if the status code indicates a redirect.
func StatusCodeIsRedirect(statusCode int) bool {
	return statusCode == fasthttp.StatusMovedPermanently ||
		statusCode == fasthttp.StatusFound ||
		statusCode == fasthttp.StatusSeeOther ||
		statusCode == fasthttp.StatusTemporaryRedirect ||
		statusCode == fasthttp.StatusPermanentRedirect
}
