package s3

import (
	"context"
	"fmt"
	"strings"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/engine"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/valyala/fasthttp"
)

type Config struct {
	// Host is the service endpoint, engine.DefaultHost when empty
	Host     string          `toml:"host" json:"host" mapstructure:"host"`
	Protocol engine.Protocol `toml:"protocol" json:"protocol" mapstructure:"protocol"`
	URIStyle engine.URIStyle `toml:"uri_style" json:"uri_style" mapstructure:"uri_style"`
}

type ConfigOption func(*Config)

func Host(v string) ConfigOption {
	return func(c *Config) {
		c.Host = v
	}
}

func Protocol(v engine.Protocol) ConfigOption {
	return func(c *Config) {
		c.Protocol = v
	}
}

func URIStyle(v engine.URIStyle) ConfigOption {
	return func(c *Config) {
		c.URIStyle = v
	}
}

// Client builds bucket and object requests and hands them to an engine.
//
// Every operation takes an optional multiplexer. With a nil multiplexer the request is performed
// on the calling goroutine and done is called before the operation returns. Otherwise the request
// is registered with m, ctx is unused and done is called while m is driven.
//
// An operation returning an error never calls done. Once an operation returned nil, done is called
// exactly once
type Client struct {
	engine *engine.Engine
	config Config
}

func New(e *engine.Engine, opts ...ConfigOption) *Client {
	c := &Client{engine: e}
	for _, o := range opts {
		o(&c.config)
	}
	return c
}

func (c *Client) params(method, bucket, key string) engine.Params {
	return engine.Params{
		Method:   method,
		Protocol: c.config.Protocol,
		URIStyle: c.config.URIStyle,
		Host:     c.config.Host,
		Bucket:   bucket,
		Key:      key,
	}
}

func (c *Client) submit(ctx context.Context, m engine.Multiplexer, p engine.Params, h engine.Handler) error {
	if m == nil {
		return c.engine.Do(ctx, p, h)
	}
	_, err := c.engine.Add(p, h, m)
	return err
}

// response collects the callbacks of one exchange
type response struct {
	headers *amz.ResponseHeaders
	body    []byte
	done    func(resp *response, err error)
}

func (r *response) handler() engine.Handler {
	return engine.Handler{
		OnHeaders: func(h *amz.ResponseHeaders) {
			r.headers = h.Clone()
		},
		OnData: func(b []byte) {
			r.body = append(r.body[:0], b...)
		},
		OnComplete: func(res engine.Result) {
			r.done(r, r.resultError(res))
		},
	}
}

// resultError converts a completion result into the error handed to callers. Failed responses
// carry the server's error document, or one synthesized from the response code, which errors.As
// finds as an awserr.RequestFailure
func (r *response) resultError(res engine.Result) error {
	if res.OK() {
		return nil
	}
	if res.Err != nil {
		return errors2.New(res.Status, "s3 request", res.Err)
	}
	if res.Cause != nil {
		return res.Cause
	}
	if res.HTTPCode != 0 {
		var requestID string
		if r.headers != nil {
			requestID = r.headers.RequestID
		}
		msg := fasthttp.StatusMessage(res.HTTPCode)
		payload := amz.NewErrorPayload(strings.Replace(msg, " ", "", -1), msg, requestID, res.HTTPCode)
		return errors2.New(res.Status, "s3 request", payload)
	}
	return errors2.New(res.Status, "s3 request", fmt.Errorf("no response"))
}
