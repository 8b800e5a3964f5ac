package engine

import (
	"github.com/assetnote/kites3/pkg/amz"
	"github.com/rs/zerolog"
)

const (
	// DefaultHost is the service endpoint used when Params.Host is empty
	DefaultHost = "s3.amazonaws.com"
)

type Protocol int

const (
	ProtocolHTTPS Protocol = iota
	ProtocolHTTP
)

func (p Protocol) String() string {
	if p == ProtocolHTTP {
		return "http"
	}
	return "https"
}

// URIStyle selects where the bucket name goes in the request URI
type URIStyle int

const (
	// URIStyleVirtualHost addresses buckets as <bucket>.<host>
	URIStyleVirtualHost URIStyle = iota
	// URIStylePath addresses buckets as <host>/<bucket>
	URIStylePath
)

// Params is the logical request a caller hands to the engine
type Params struct {
	Method   string
	Protocol Protocol
	URIStyle URIStyle
	Host     string
	Bucket   string
	// Key is the raw object key, it is encoded by the engine
	Key string
	// SubResource is appended to the query and the canonical resource, e.g. "location" or "acl"
	SubResource string
	// Query is an already encoded query string without the leading '?'
	Query string

	Headers     amz.RequestHeaders
	ContentType string
	Body        []byte
}

func (p *Params) host() string {
	if p.Host == "" {
		return DefaultHost
	}
	return p.Host
}

// AppendURI appends the absolute request URI to dst
func (p *Params) AppendURI(dst []byte) []byte {
	dst = append(dst, p.Protocol.String()...)
	dst = append(dst, "://"...)
	if p.Bucket != "" && p.URIStyle == URIStyleVirtualHost {
		dst = append(dst, p.Bucket...)
		dst = append(dst, '.')
	}
	dst = append(dst, p.host()...)
	dst = append(dst, '/')
	if p.Bucket != "" && p.URIStyle == URIStylePath {
		dst = append(dst, p.Bucket...)
		if p.Key != "" {
			dst = append(dst, '/')
		}
	}
	dst = amz.AppendEncodedKey(dst, p.Key)

	sep := byte('?')
	if p.SubResource != "" {
		dst = append(dst, sep)
		dst = append(dst, p.SubResource...)
		sep = '&'
	}
	if p.Query != "" {
		dst = append(dst, sep)
		dst = append(dst, p.Query...)
	}
	return dst
}

// URI returns the absolute request URI
func (p *Params) URI() string {
	return string(p.AppendURI(nil))
}

// CanonicalResource is the resource string request signers consume: "/<bucket>/<encoded key>"
// followed by "?<subresource>" if any. It does not depend on the URI style
func (p *Params) CanonicalResource() string {
	b := make([]byte, 0, len(p.Bucket)+len(p.Key)+len(p.SubResource)+3)
	b = append(b, '/')
	if p.Bucket != "" {
		b = append(b, p.Bucket...)
		b = append(b, '/')
	}
	b = amz.AppendEncodedKey(b, p.Key)
	if p.SubResource != "" {
		b = append(b, '?')
		b = append(b, p.SubResource...)
	}
	return string(b)
}

func (p *Params) MarshalZerologObject(e *zerolog.Event) {
	e.Str("method", p.Method).
		Str("host", p.host()).
		Str("bucket", p.Bucket).
		Str("key", p.Key).
		Str("sub", p.SubResource)
}
