package s3

import (
	"context"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/engine"
	"github.com/valyala/fasthttp"
)

// Object is a fetched object. Headers and Body are owned by the caller
type Object struct {
	Headers *amz.ResponseHeaders
	Body    []byte
}

func (c *Client) HeadObject(ctx context.Context, m engine.Multiplexer, bucket, key string, done func(h *amz.ResponseHeaders, err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodHead, bucket, key)
	r := &response{done: func(resp *response, err error) {
		done(resp.headers, err)
	}}
	return c.submit(ctx, m, p, r.handler())
}

func (c *Client) GetObject(ctx context.Context, m engine.Multiplexer, bucket, key string, done func(o *Object, err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodGet, bucket, key)
	r := &response{done: func(resp *response, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		done(&Object{Headers: resp.headers, Body: resp.body}, nil)
	}}
	return c.submit(ctx, m, p, r.handler())
}

type PutObjectOptions struct {
	ACL amz.CannedACL
	// MetaHeaders are "x-amz-meta-<name>: <value>" strings stored with the object
	MetaHeaders []string
	ContentType string
}

// PutObject stores body under key. The headers of the response are passed to done, notably the
// ETag of the stored object
func (c *Client) PutObject(ctx context.Context, m engine.Multiplexer, bucket, key string, body []byte, opts PutObjectOptions, done func(h *amz.ResponseHeaders, err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodPut, bucket, key)
	p.Headers = amz.RequestHeaders{CannedACL: opts.ACL, MetaHeaders: opts.MetaHeaders}
	p.ContentType = opts.ContentType
	p.Body = body

	r := &response{done: func(resp *response, err error) {
		done(resp.headers, err)
	}}
	return c.submit(ctx, m, p, r.handler())
}

func (c *Client) DeleteObject(ctx context.Context, m engine.Multiplexer, bucket, key string, done func(err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodDelete, bucket, key)
	r := &response{done: func(_ *response, err error) {
		done(err)
	}}
	return c.submit(ctx, m, p, r.handler())
}
