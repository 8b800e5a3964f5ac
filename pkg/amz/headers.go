package amz

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

// RequestHeaders is the logical header set a caller supplies for a request
type RequestHeaders struct {
	CannedACL CannedACL
	// MetaHeaders are "x-amz-meta-<name>: <value>" strings. Names may only contain alphanumerics
	// after the prefix and are compared case insensitively
	MetaHeaders []string
}

// CanonicalHeaders is the ordered x-amz-* header set for a request: the acl header if any, the date
// header, then the metadata headers in input order with lowercased names.
//
// The text lives in one contiguous buffer, each header terminated by '\n', with the start offset of
// every header indexed so the lines can be handed to a transport without copying.
type CanonicalHeaders struct {
	raw     []byte
	offsets []int
}

// Len returns the number of headers in the set
func (c *CanonicalHeaders) Len() int {
	return len(c.offsets)
}

// Line returns the i'th header as "name: value" without the line terminator. The slice aliases the
// internal buffer and is valid until the next Reset or Compose
func (c *CanonicalHeaders) Line(i int) []byte {
	end := len(c.raw)
	if i+1 < len(c.offsets) {
		end = c.offsets[i+1]
	}
	return c.raw[c.offsets[i] : end-1]
}

// Header returns the name and value of the i'th header
func (c *CanonicalHeaders) Header(i int) (name, value []byte) {
	line := c.Line(i)
	colon := bytes.IndexByte(line, ':')
	name = line[:colon]
	value = line[colon+1:]
	for len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	return name, value
}

// VisitAll calls f for every header in order
func (c *CanonicalHeaders) VisitAll(f func(name, value []byte)) {
	for i := range c.offsets {
		f(c.Header(i))
	}
}

// Bytes returns the full canonical text, one "name: value\n" line per header. This is the form a
// request signer consumes
func (c *CanonicalHeaders) Bytes() []byte {
	return c.raw
}

func (c *CanonicalHeaders) String() string {
	return string(c.raw)
}

// Strings returns a copy of every header line
func (c *CanonicalHeaders) Strings() []string {
	ret := make([]string, 0, len(c.offsets))
	for i := range c.offsets {
		ret = append(ret, string(c.Line(i)))
	}
	return ret
}

// Reset empties the set while keeping its buffers for reuse
func (c *CanonicalHeaders) Reset() {
	c.raw = c.raw[:0]
	c.offsets = c.offsets[:0]
}

func (c *CanonicalHeaders) MarshalZerologArray(a *zerolog.Array) {
	for i := range c.offsets {
		a.Bytes(c.Line(i))
	}
}

func (c *CanonicalHeaders) begin() {
	c.offsets = append(c.offsets, len(c.raw))
}

func (c *CanonicalHeaders) end() error {
	c.raw = append(c.raw, '\n')
	if len(c.raw) > MaxCanonicalSize {
		return errors2.New(errors2.StatusMetaHeadersTooLong, "compose headers",
			fmt.Errorf("canonical headers exceed %d bytes", MaxCanonicalSize))
	}
	return nil
}

func (c *CanonicalHeaders) appendHeader(name string, value []byte) error {
	c.begin()
	c.raw = append(c.raw, name...)
	c.raw = append(c.raw, ": "...)
	c.raw = append(c.raw, value...)
	return c.end()
}

// ValidateMetaHeaders checks the count and aggregate size limits for a set of metadata headers
func ValidateMetaHeaders(meta []string) error {
	if len(meta) > MaxMetaHeaderCount {
		return errors2.New(errors2.StatusMetaHeadersTooLong, "compose headers",
			fmt.Errorf("%d metadata headers exceeds maximum of %d", len(meta), MaxMetaHeaderCount))
	}
	total := 0
	for _, v := range meta {
		total += len(v)
	}
	if total > MaxMetaHeaderSize {
		return errors2.New(errors2.StatusMetaHeadersTooLong, "compose headers",
			fmt.Errorf("metadata headers total %d bytes exceeds maximum of %d", total, MaxMetaHeaderSize))
	}
	return nil
}

// ComposeHeaders builds the canonical header set for rh stamped with now into dst. dst is reset
// first. Identical input with the same second yields byte identical output.
//
// A nil rh yields only the date header. Errors are either StatusMetaHeadersTooLong or
// StatusBadMetaHeader and are returned before dst is modified when the limits are exceeded.
func ComposeHeaders(dst *CanonicalHeaders, rh *RequestHeaders, now time.Time) error {
	if rh != nil {
		if err := ValidateMetaHeaders(rh.MetaHeaders); err != nil {
			return err
		}
	}
	dst.Reset()

	if rh != nil && rh.CannedACL != CannedACLNone {
		if err := dst.appendHeader(HeaderACL, []byte(rh.CannedACL.String())); err != nil {
			return err
		}
	}

	dst.begin()
	dst.raw = append(dst.raw, HeaderDate...)
	dst.raw = append(dst.raw, ": "...)
	dst.raw = fasthttp.AppendHTTPDate(dst.raw, now)
	if err := dst.end(); err != nil {
		return err
	}

	if rh == nil {
		return nil
	}
	for i, h := range rh.MetaHeaders {
		if err := dst.appendMeta(h); err != nil {
			if errors2.StatusOf(err) == errors2.StatusMetaHeadersTooLong {
				return err
			}
			return errors2.New(errors2.StatusBadMetaHeader, "compose headers",
				fmt.Errorf("metadata header %d: %w", i, err))
		}
	}
	return nil
}

var (
	errMissingPrefix = fmt.Errorf("name must begin with %q", MetaHeaderPrefix)
	errBadName       = fmt.Errorf("name may only contain alphanumerics after %q", MetaHeaderPrefix)
	errEmptyValue    = fmt.Errorf("value is empty")
)

func (c *CanonicalHeaders) appendMeta(h string) error {
	if len(h) < len(MetaHeaderPrefix) || !strings.EqualFold(h[:len(MetaHeaderPrefix)], MetaHeaderPrefix) {
		return errMissingPrefix
	}
	i := len(MetaHeaderPrefix)
	for i < len(h) && isAlnum(h[i]) {
		i++
	}
	if i == len(MetaHeaderPrefix) || i == len(h) || h[i] != ':' {
		return errBadName
	}
	value := strings.TrimSpace(h[i+1:])
	if value == "" {
		return errEmptyValue
	}

	c.begin()
	for j := 0; j < i; j++ {
		c.raw = append(c.raw, toLower(h[j]))
	}
	c.raw = append(c.raw, ": "...)
	c.raw = append(c.raw, value...)
	return c.end()
}

func toLower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}
