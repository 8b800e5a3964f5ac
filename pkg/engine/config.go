package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/assetnote/kites3/pkg/http"
)

const (
	// DefaultPoolSize is the number of idle request descriptors kept for reuse
	DefaultPoolSize = 32
)

type Config struct {
	// PoolSize is the maximum number of idle descriptors kept for reuse
	PoolSize int `toml:"pool_size" json:"pool_size" mapstructure:"pool_size"`
	// UserAgentInfo is embedded in the user agent, "Unknown" if empty
	UserAgentInfo string `toml:"user_agent_info" json:"user_agent_info" mapstructure:"user_agent_info"`
	// Timeout bounds a single exchange, 0 disables it
	Timeout        time.Duration `toml:"timeout" json:"timeout" mapstructure:"timeout"`
	ConnectTimeout time.Duration `toml:"connect_timeout" json:"connect_timeout" mapstructure:"connect_timeout"`
	// LowSpeedTime aborts exchanges that stall for longer than this
	LowSpeedTime time.Duration `toml:"low_speed_time" json:"low_speed_time" mapstructure:"low_speed_time"`
	MaxRedirects int           `toml:"max_redirects" json:"max_redirects" mapstructure:"max_redirects"`
	// MaxConnsPerHandle is the number of connections each transport handle keeps per host.
	// Defaults to half the pool size
	MaxConnsPerHandle int           `toml:"max_conns_per_handle" json:"max_conns_per_handle" mapstructure:"max_conns_per_handle"`
	KeepAlive         time.Duration `toml:"keep_alive" json:"keep_alive" mapstructure:"keep_alive"`

	// Authorizer, when set, produces the Authorization header for every request
	Authorizer Authorizer `toml:"-" json:"-" mapstructure:"-"`
	// HandleFactory creates transport handles. Defaults to fasthttp backed handles
	HandleFactory HandleFactory `toml:"-" json:"-" mapstructure:"-"`
	// Dial is passed through to the default transport handles
	Dial http.DialFunc `toml:"-" json:"-" mapstructure:"-"`
	// Clock stamps the date header, defaults to time.Now
	Clock func() time.Time `toml:"-" json:"-" mapstructure:"-"`
}

func NewDefaultConfig() *Config {
	return &Config{
		PoolSize:     DefaultPoolSize,
		MaxRedirects: http.DefaultMaxRedirects,
		LowSpeedTime: http.DefaultLowSpeedTime,
		KeepAlive:    10 * time.Second,
	}
}

type ErrBadConfig struct {
	fields []string
}

func (e *ErrBadConfig) Error() string {
	return fmt.Sprintf("config has invalid values in: %v", strings.Join(e.fields, ", "))
}

// Validate checks the config and fills in derived defaults
func (c *Config) Validate() error {
	badFields := make([]string, 0)
	if c.PoolSize < 1 {
		badFields = append(badFields, "PoolSize")
	}
	if c.MaxRedirects < 0 {
		badFields = append(badFields, "MaxRedirects")
	}
	if c.MaxConnsPerHandle < 0 {
		badFields = append(badFields, "MaxConnsPerHandle")
	}
	if c.Timeout < 0 {
		badFields = append(badFields, "Timeout")
	}
	if c.ConnectTimeout < 0 {
		badFields = append(badFields, "ConnectTimeout")
	}
	if c.LowSpeedTime < 0 {
		badFields = append(badFields, "LowSpeedTime")
	}
	if len(badFields) != 0 {
		return &ErrBadConfig{fields: badFields}
	}

	if c.MaxConnsPerHandle == 0 {
		c.MaxConnsPerHandle = c.PoolSize / 2
		if c.MaxConnsPerHandle < 1 {
			c.MaxConnsPerHandle = 1
		}
	}
	if c.HandleFactory == nil {
		c.HandleFactory = DefaultHandleFactory
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return nil
}

// handleOptions derives the transport options every handle is reset to
func (c *Config) handleOptions(userAgent string) http.Options {
	return http.Options{
		UserAgent:      userAgent,
		Timeout:        c.Timeout,
		ConnectTimeout: c.ConnectTimeout,
		LowSpeedTime:   c.LowSpeedTime,
		MaxRedirects:   c.MaxRedirects,
		MaxConns:       c.MaxConnsPerHandle,
		KeepAlive:      c.KeepAlive,
		Dial:           c.Dial,
	}
}

type ConfigOption func(*Config)

func PoolSize(n int) ConfigOption {
	return func(c *Config) {
		c.PoolSize = n
	}
}

func UserAgentInfo(v string) ConfigOption {
	return func(c *Config) {
		c.UserAgentInfo = v
	}
}

func Timeout(n time.Duration) ConfigOption {
	return func(c *Config) {
		c.Timeout = n
	}
}

func ConnectTimeout(n time.Duration) ConfigOption {
	return func(c *Config) {
		c.ConnectTimeout = n
	}
}

func LowSpeedTime(n time.Duration) ConfigOption {
	return func(c *Config) {
		c.LowSpeedTime = n
	}
}

func MaxRedirects(n int) ConfigOption {
	return func(c *Config) {
		c.MaxRedirects = n
	}
}

func MaxConnsPerHandle(n int) ConfigOption {
	return func(c *Config) {
		c.MaxConnsPerHandle = n
	}
}

func KeepAlive(n time.Duration) ConfigOption {
	return func(c *Config) {
		c.KeepAlive = n
	}
}

func WithAuthorizer(a Authorizer) ConfigOption {
	return func(c *Config) {
		c.Authorizer = a
	}
}

func WithHandleFactory(f HandleFactory) ConfigOption {
	return func(c *Config) {
		c.HandleFactory = f
	}
}

func WithDial(d http.DialFunc) ConfigOption {
	return func(c *Config) {
		c.Dial = d
	}
}

func WithClock(f func() time.Time) ConfigOption {
	return func(c *Config) {
		c.Clock = f
	}
}

// WithConfig copies every field of v into the config. Useful when the config was decoded from a
// file
func WithConfig(v Config) ConfigOption {
	return func(c *Config) {
		*c = v
	}
}
