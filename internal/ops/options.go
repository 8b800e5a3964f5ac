package ops

import (
	"io"
	"os"
	"time"

	"github.com/assetnote/kites3/pkg/engine"
	"github.com/assetnote/kites3/pkg/s3"
)

// Options are the settings shared by every command
type Options struct {
	Host      string
	HTTPS     bool
	PathStyle bool
	Output    Format

	UserAgentInfo string
	Timeout       time.Duration
	MaxRedirects  int
	// Concurrency is how many requests are in flight at once for batch operations
	Concurrency int
	// Yes skips confirmation prompts
	Yes      bool
	Progress bool

	// Stdout receives the command output
	Stdout io.Writer
	// engineOptions are appended to the engine options derived from the fields above
	engineOptions []engine.ConfigOption
}

type Option func(o *Options)

func Host(v string) Option {
	return func(o *Options) {
		o.Host = v
	}
}

func HTTPS(v bool) Option {
	return func(o *Options) {
		o.HTTPS = v
	}
}

func PathStyle(v bool) Option {
	return func(o *Options) {
		o.PathStyle = v
	}
}

func OutputFormat(v Format) Option {
	return func(o *Options) {
		o.Output = v
	}
}

func UserAgentInfo(v string) Option {
	return func(o *Options) {
		o.UserAgentInfo = v
	}
}

func Timeout(v time.Duration) Option {
	return func(o *Options) {
		o.Timeout = v
	}
}

func MaxRedirects(v int) Option {
	return func(o *Options) {
		o.MaxRedirects = v
	}
}

func Concurrency(v int) Option {
	return func(o *Options) {
		o.Concurrency = v
	}
}

func AssumeYes(v bool) Option {
	return func(o *Options) {
		o.Yes = v
	}
}

func Progress(v bool) Option {
	return func(o *Options) {
		o.Progress = v
	}
}

func Stdout(w io.Writer) Option {
	return func(o *Options) {
		o.Stdout = w
	}
}

// EngineOptions appends options applied when the engine is created
func EngineOptions(v ...engine.ConfigOption) Option {
	return func(o *Options) {
		o.engineOptions = append(o.engineOptions, v...)
	}
}

func NewOptions(opts ...Option) *Options {
	o := &Options{
		Output:       Pretty,
		Timeout:      30 * time.Second,
		MaxRedirects: 10,
		Concurrency:  16,
		Stdout:       os.Stdout,
	}
	for _, v := range opts {
		v(o)
	}
	return o
}

func (o *Options) uriStyle() engine.URIStyle {
	if o.PathStyle {
		return engine.URIStylePath
	}
	return engine.URIStyleVirtualHost
}

// client creates the engine and a client bound to it. The engine must be closed by the caller
func (o *Options) client() (*engine.Engine, *s3.Client, error) {
	opts := append([]engine.ConfigOption{
		engine.UserAgentInfo(o.UserAgentInfo),
		engine.Timeout(o.Timeout),
		engine.MaxRedirects(o.MaxRedirects),
	}, o.engineOptions...)
	e, err := engine.New(opts...)
	if err != nil {
		return nil, nil, err
	}

	protocol := engine.ProtocolHTTP
	if o.HTTPS {
		protocol = engine.ProtocolHTTPS
	}
	c := s3.New(e,
		s3.Host(o.Host),
		s3.Protocol(protocol),
		s3.URIStyle(o.uriStyle()),
	)
	return e, c, nil
}
