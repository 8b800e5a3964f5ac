package http

import (
	"net"
	"time"

	"github.com/assetnote/kites3/pkg/amz"
)

const (
	// DefaultMaxRedirects is the safety valve for servers that keep redirecting
	DefaultMaxRedirects = 10
	// DefaultLowSpeedTime aborts a transfer that has not received a byte for this long
	DefaultLowSpeedTime = 15 * time.Second
)

// DialFunc must establish a connection to addr
type DialFunc func(addr string) (net.Conn, error)

// Options is the per handle transport configuration applied every time a handle is (re)initialized.
// A zero duration disables the corresponding timeout
type Options struct {
	UserAgent string `toml:"user_agent" json:"user_agent" mapstructure:"user_agent"`
	// Timeout bounds writing the request and reading the full response of a single exchange
	Timeout time.Duration `toml:"timeout" json:"timeout" mapstructure:"timeout"`
	// ConnectTimeout bounds establishing a new connection
	ConnectTimeout time.Duration `toml:"connect_timeout" json:"connect_timeout" mapstructure:"connect_timeout"`
	// LowSpeedTime aborts an exchange when no response bytes arrive for the duration
	LowSpeedTime time.Duration `toml:"low_speed_time" json:"low_speed_time" mapstructure:"low_speed_time"`
	// MaxRedirects corresponds to how many redirects to follow. 0 means the first response is
	// returned as is
	MaxRedirects int `toml:"max_redirects" json:"max_redirects" mapstructure:"max_redirects"`
	// MaxConns is the number of connections a handle keeps per host
	MaxConns int `toml:"max_conns" json:"max_conns" mapstructure:"max_conns"`
	// KeepAlive is how long an idle connection is kept for reuse
	KeepAlive time.Duration `toml:"keep_alive" json:"keep_alive" mapstructure:"keep_alive"`

	// Dial overrides how connections are established. Mostly useful in tests
	Dial DialFunc `toml:"-" json:"-" mapstructure:"-"`
}

func (o *Options) equal(other *Options) bool {
	return o.UserAgent == other.UserAgent &&
		o.Timeout == other.Timeout &&
		o.ConnectTimeout == other.ConnectTimeout &&
		o.LowSpeedTime == other.LowSpeedTime &&
		o.MaxRedirects == other.MaxRedirects &&
		o.MaxConns == other.MaxConns &&
		o.KeepAlive == other.KeepAlive &&
		(o.Dial == nil) == (other.Dial == nil)
}

// Target is everything a handle needs to put a request on the wire
type Target struct {
	Method string
	// URI is the absolute request URI including scheme, host, encoded path and query
	URI []byte
	// Canonical are the x-amz-* headers, sent exactly as composed
	Canonical *amz.CanonicalHeaders
	// Headers are sent after the canonical headers
	Headers Headers
	Body    []byte
}

// Reset clears the target for reuse, keeping the URI buffer
func (t *Target) Reset() {
	t.Method = ""
	t.URI = t.URI[:0]
	t.Canonical = nil
	t.Headers = t.Headers[:0]
	t.Body = nil
}
