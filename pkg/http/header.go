package http

import (
	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"
)

// Header is a request header sent in addition to the canonical x-amz-* set, e.g. Content-Type or
// Authorization
type Header struct {
	Key   string
	Value string
}

type Headers []Header

func (rr Headers) MarshalZerologArray(a *zerolog.Array) {
	for _, u := range rr {
		a.Object(u)
	}
}

func (h Header) MarshalZerologObject(e *zerolog.Event) {
	e.Str("k", h.Key).
		Str("v", h.Value)
}

// AppendBytes appends the header line without a line terminator
func (h Header) AppendBytes(b []byte) []byte {
	b = append(b, h.Key...)
	b = append(b, ": "...)
	return append(b, h.Value...)
}

func (h Header) String() string {
	w := bytebufferpool.Get()
	w.B = h.AppendBytes(w.B)
	ret := w.String()
	bytebufferpool.Put(w)
	return ret
}

// Get returns the value of the first header whose key matches exactly
func (rr Headers) Get(key string) (string, bool) {
	for _, h := range rr {
		if h.Key == key {
			return h.Value, true
		}
	}
	return "", false
}

// Set replaces the value of key, appending it when missing
func (rr *Headers) Set(key, value string) {
	for i := range *rr {
		if (*rr)[i].Key == key {
			(*rr)[i].Value = value
			return
		}
	}
	*rr = append(*rr, Header{Key: key, Value: value})
}
