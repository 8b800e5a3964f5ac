package s3

import (
	"context"
	"strconv"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/engine"
	"github.com/valyala/fasthttp"
)

const (
	subResourceLocation = "location"
	contentTypeXML      = "application/xml"
)

// TestBucket checks the bucket exists and is accessible and reports its location constraint
func (c *Client) TestBucket(ctx context.Context, m engine.Multiplexer, bucket string, done func(location string, err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodGet, bucket, "")
	p.SubResource = subResourceLocation

	r := &response{done: func(resp *response, err error) {
		if err != nil {
			done("", err)
			return
		}
		done(ParseLocationConstraint(resp.body))
	}}
	return c.submit(ctx, m, p, r.handler())
}

type CreateBucketOptions struct {
	ACL amz.CannedACL
	// LocationConstraint places the bucket in a region, "" for the default
	LocationConstraint string
}

func (c *Client) CreateBucket(ctx context.Context, m engine.Multiplexer, bucket string, opts CreateBucketOptions, done func(err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	body, err := CreateBucketConfiguration(opts.LocationConstraint)
	if err != nil {
		return err
	}
	p := c.params(fasthttp.MethodPut, bucket, "")
	p.Headers.CannedACL = opts.ACL
	p.Body = body
	if len(body) > 0 {
		p.ContentType = contentTypeXML
	}

	r := &response{done: func(_ *response, err error) {
		done(err)
	}}
	return c.submit(ctx, m, p, r.handler())
}

func (c *Client) DeleteBucket(ctx context.Context, m engine.Multiplexer, bucket string, done func(err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodDelete, bucket, "")
	r := &response{done: func(_ *response, err error) {
		done(err)
	}}
	return c.submit(ctx, m, p, r.handler())
}

type ListOptions struct {
	Prefix string
	// Marker lists keys after this one
	Marker    string
	Delimiter string
	// MaxKeys limits the page size, 0 leaves it to the server
	MaxKeys int
}

func (o *ListOptions) query() string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	if o.Delimiter != "" {
		args.Add("delimiter", o.Delimiter)
	}
	if o.Marker != "" {
		args.Add("marker", o.Marker)
	}
	if o.MaxKeys > 0 {
		args.Add("max-keys", strconv.Itoa(o.MaxKeys))
	}
	if o.Prefix != "" {
		args.Add("prefix", o.Prefix)
	}
	return string(args.QueryString())
}

// ListBucket lists one page of the bucket's keys
func (c *Client) ListBucket(ctx context.Context, m engine.Multiplexer, bucket string, opts ListOptions, done func(res *ListBucketResult, err error)) error {
	if err := ValidateBucketName(bucket, c.config.URIStyle); err != nil {
		return err
	}
	p := c.params(fasthttp.MethodGet, bucket, "")
	p.Query = opts.query()

	r := &response{done: func(resp *response, err error) {
		if err != nil {
			done(nil, err)
			return
		}
		done(ParseListBucketResult(resp.body))
	}}
	return c.submit(ctx, m, p, r.handler())
}
