package amz

import (
	"bytes"
	"strconv"
	"time"

	"github.com/francoispqt/gojay"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// MetaHeader is a user metadata pair captured from a response. Name has the x-amz-meta- prefix
// removed and is lowercased
type MetaHeader struct {
	Name  string
	Value string
}

func (m MetaHeader) MarshalZerologObject(e *zerolog.Event) {
	e.Str("k", m.Name).Str("v", m.Value)
}

func (m *MetaHeader) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("name", m.Name)
	enc.StringKey("value", m.Value)
}

func (m *MetaHeader) IsNil() bool {
	return m == nil
}

type MetaHeaders []MetaHeader

func (mm MetaHeaders) MarshalZerologArray(a *zerolog.Array) {
	for _, m := range mm {
		a.Object(m)
	}
}

func (mm MetaHeaders) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range mm {
		enc.Object(&mm[i])
	}
}

func (mm MetaHeaders) IsNil() bool {
	return len(mm) == 0
}

// ResponseHeaders is the typed record of the protocol headers of a response. The fields are empty
// when the response did not carry the header. ContentLength is -1 when absent or unparseable
type ResponseHeaders struct {
	RequestID     string
	RequestID2    string
	ContentType   string
	ContentLength int64
	Server        string
	ETag          string
	// LastModified is the raw header value; LastModifiedTime is its parsed form, zero if unparseable
	LastModified     string
	LastModifiedTime time.Time
	MetaHeaders      MetaHeaders

	// arena holds the text of every string field above so a reused record does not reallocate
	arena []byte
}

// Reset clears every field, keeping allocated storage for reuse
func (r *ResponseHeaders) Reset() {
	arena := r.arena[:0]
	meta := r.MetaHeaders[:0]
	*r = ResponseHeaders{ContentLength: -1, arena: arena, MetaHeaders: meta}
}

// Clone returns a copy of r that does not share storage with r. Use this to retain the record
// beyond the headers callback
func (r *ResponseHeaders) Clone() *ResponseHeaders {
	c := &ResponseHeaders{
		RequestID:        cloneString(r.RequestID),
		RequestID2:       cloneString(r.RequestID2),
		ContentType:      cloneString(r.ContentType),
		ContentLength:    r.ContentLength,
		Server:           cloneString(r.Server),
		ETag:             cloneString(r.ETag),
		LastModified:     cloneString(r.LastModified),
		LastModifiedTime: r.LastModifiedTime,
	}
	if len(r.MetaHeaders) > 0 {
		c.MetaHeaders = make(MetaHeaders, len(r.MetaHeaders))
		for i, m := range r.MetaHeaders {
			c.MetaHeaders[i] = MetaHeader{Name: cloneString(m.Name), Value: cloneString(m.Value)}
		}
	}
	return c
}

// intern copies b into the arena and returns a string backed by the arena. The arena is never
// shrunk in place, once it would grow a fresh one is started so earlier strings stay valid
func (r *ResponseHeaders) intern(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if cap(r.arena)-len(r.arena) < len(b) {
		n := 2 * cap(r.arena)
		if n < 256 {
			n = 256
		}
		if n < len(b) {
			n = len(b)
		}
		r.arena = make([]byte, 0, n)
	}
	start := len(r.arena)
	r.arena = append(r.arena, b...)
	return b2s(r.arena[start:len(r.arena):len(r.arena)])
}

func (r *ResponseHeaders) MarshalZerologObject(e *zerolog.Event) {
	e.Str("request_id", r.RequestID).
		Str("request_id2", r.RequestID2).
		Str("content_type", r.ContentType).
		Int64("content_length", r.ContentLength).
		Str("server", r.Server).
		Str("etag", r.ETag).
		Str("last_modified", r.LastModified).
		Array("meta", r.MetaHeaders)
}

func (r *ResponseHeaders) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKeyOmitEmpty("request_id", r.RequestID)
	enc.StringKeyOmitEmpty("request_id2", r.RequestID2)
	enc.StringKeyOmitEmpty("content_type", r.ContentType)
	enc.Int64Key("content_length", r.ContentLength)
	enc.StringKeyOmitEmpty("server", r.Server)
	enc.StringKeyOmitEmpty("etag", r.ETag)
	enc.StringKeyOmitEmpty("last_modified", r.LastModified)
	enc.ArrayKeyOmitEmpty("meta", r.MetaHeaders)
}

func (r *ResponseHeaders) IsNil() bool {
	return r == nil
}

// HeaderParser incrementally fills a ResponseHeaders from raw header lines as a transport
// delivers them. The zero value is not ready for use; call Reset first
type HeaderParser struct {
	Headers  ResponseHeaders
	complete bool
}

// Reset prepares the parser for a new exchange
func (p *HeaderParser) Reset() {
	p.Headers.Reset()
	p.complete = false
}

// Complete reports whether the blank line ending the header section has been seen
func (p *HeaderParser) Complete() bool {
	return p.complete
}

// MarkComplete ends the header section without a terminator line, used when a transport fails
// before delivering headers
func (p *HeaderParser) MarkComplete() {
	p.complete = true
}

var (
	strRequestID     = []byte(HeaderRequestID)
	strRequestID2    = []byte(HeaderRequestID2)
	strContentType   = []byte(HeaderContentType)
	strContentLength = []byte(HeaderContentLength)
	strServer        = []byte(HeaderServer)
	strETag          = []byte(HeaderETag)
	strLastModified  = []byte(HeaderLastModified)
	strMetaPrefix    = []byte(MetaHeaderPrefix)
)

// Feed consumes one raw header line including its line ending. It returns true exactly once: on
// the line that completes the header section. Lines fed after completion are ignored, as are lines
// without a colon such as the status line
func (p *HeaderParser) Feed(line []byte) bool {
	if p.complete {
		return false
	}
	line = bytes.TrimRight(line, "\r\n")
	if len(line) == 0 {
		p.complete = true
		return true
	}

	colon := bytes.IndexByte(line, ':')
	if colon < 0 {
		return false
	}
	name := line[:colon]
	value := bytes.TrimSpace(line[colon+1:])

	h := &p.Headers
	switch {
	case bytes.EqualFold(name, strRequestID):
		h.RequestID = h.intern(value)
	case bytes.EqualFold(name, strRequestID2):
		h.RequestID2 = h.intern(value)
	case bytes.EqualFold(name, strContentType):
		h.ContentType = h.intern(value)
	case bytes.EqualFold(name, strContentLength):
		if n, err := strconv.ParseInt(b2s(value), 10, 64); err == nil && n >= 0 {
			h.ContentLength = n
		}
	case bytes.EqualFold(name, strServer):
		h.Server = h.intern(value)
	case bytes.EqualFold(name, strETag):
		h.ETag = h.intern(value)
	case bytes.EqualFold(name, strLastModified):
		h.LastModified = h.intern(value)
		if t, err := fasthttp.ParseHTTPDate(value); err == nil {
			h.LastModifiedTime = t
		}
	case len(name) > len(strMetaPrefix) && bytes.EqualFold(name[:len(strMetaPrefix)], strMetaPrefix):
		// capped silently, header limits are enforced by the server
		if len(h.MetaHeaders) >= MaxMetaHeaderCount {
			return false
		}
		mname := bytes.ToLower(name[len(strMetaPrefix):])
		h.MetaHeaders = append(h.MetaHeaders, MetaHeader{Name: h.intern(mname), Value: h.intern(value)})
	}
	return false
}
