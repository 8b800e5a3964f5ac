package s3test

import (
	"bytes"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/beevik/etree"
	"github.com/fasthttp/router"
	"github.com/segmentio/ksuid"
	"github.com/valyala/fasthttp"
)

const (
	// BaseHost is the host virtual host style requests are expected against, e.g. bucket.s3.test
	BaseHost = "s3.test"

	headerACL       = "x-amz-acl"
	headerRequestID = "x-amz-request-id"
	metaPrefix      = "x-amz-meta-"
	defaultMaxKeys  = 1000
)

// Server is a fake object storage server speaking enough of the S3 REST protocol to exercise
// bucket and object requests. Both virtual host and path style addressing are supported
type Server struct {
	Store *Store
	// Authorization, when set, is the only Authorization header value accepted
	Authorization string
	// OnRequest is called with every request before it is handled
	OnRequest func(ctx *fasthttp.RequestCtx)

	router   *router.Router
	requests uint32
}

func NewServer(store *Store) *Server {
	if store == nil {
		store = NewStore()
	}
	s := &Server{Store: store}

	r := router.New()
	r.GET("/{bucket}", s.getBucket)
	r.HEAD("/{bucket}", s.headBucket)
	r.PUT("/{bucket}", s.putBucket)
	r.DELETE("/{bucket}", s.deleteBucket)
	r.GET("/{bucket}/{key:*}", s.getObject)
	r.HEAD("/{bucket}/{key:*}", s.getObject)
	r.PUT("/{bucket}/{key:*}", s.putObject)
	r.DELETE("/{bucket}/{key:*}", s.deleteObject)
	s.router = r
	return s
}

// Requests is the number of requests served
func (s *Server) Requests() uint32 {
	return atomic.LoadUint32(&s.requests)
}

// Handler serves the protocol
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	atomic.AddUint32(&s.requests, 1)
	ctx.Response.Header.Set(headerRequestID, ksuid.New().String())

	host := ctx.Host()
	if i := bytes.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	if suffix := "." + BaseHost; bytes.HasSuffix(host, []byte(suffix)) {
		bucket := host[:len(host)-len(suffix)]
		rest := ctx.RequestURI()
		// "/" and "/?sub" address the bucket itself
		if len(rest) == 1 || (len(rest) > 1 && rest[1] == '?') {
			rest = rest[1:]
		}
		uri := append([]byte("/"), bucket...)
		uri = append(uri, rest...)
		ctx.Request.SetRequestURIBytes(uri)
	}

	if s.OnRequest != nil {
		s.OnRequest(ctx)
	}
	if s.Authorization != "" && string(ctx.Request.Header.Peek("Authorization")) != s.Authorization {
		s.writeError(ctx, fasthttp.StatusForbidden, "AccessDenied", "Access Denied")
		return
	}
	s.router.Handler(ctx)
}

// resource returns the bucket and decoded key of the request from the raw path
func resource(ctx *fasthttp.RequestCtx) (bucket, key string) {
	path := ctx.URI().PathOriginal()
	if len(path) > 0 && path[0] == '/' {
		path = path[1:]
	}
	i := bytes.IndexByte(path, '/')
	if i < 0 {
		return string(path), ""
	}
	return string(path[:i]), string(fasthttp.AppendUnquotedArg(nil, path[i+1:]))
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	ctx.SetStatusCode(status)
	if ctx.IsHead() {
		return
	}
	bucket, key := resource(ctx)
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("Error")
	root.CreateElement("Code").SetText(code)
	root.CreateElement("Message").SetText(message)
	if key != "" {
		root.CreateElement("Key").SetText(key)
	}
	if bucket != "" {
		root.CreateElement("BucketName").SetText(bucket)
	}
	root.CreateElement("RequestId").SetText(string(ctx.Response.Header.Peek(headerRequestID)))
	s.writeDocument(ctx, doc)
}

func (s *Server) writeCode(ctx *fasthttp.RequestCtx, code string) {
	switch code {
	case codeNoSuchBucket:
		s.writeError(ctx, fasthttp.StatusNotFound, code, "The specified bucket does not exist")
	case codeNoSuchKey:
		s.writeError(ctx, fasthttp.StatusNotFound, code, "The specified key does not exist.")
	case codeBucketNotEmpty:
		s.writeError(ctx, fasthttp.StatusConflict, code, "The bucket you tried to delete is not empty")
	default:
		s.writeError(ctx, fasthttp.StatusInternalServerError, "InternalError", code)
	}
}

func (s *Server) writeDocument(ctx *fasthttp.RequestCtx, doc *etree.Document) {
	b, err := doc.WriteToBytes()
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/xml")
	ctx.SetBody(b)
}

func (s *Server) getBucket(ctx *fasthttp.RequestCtx) {
	bucket, _ := resource(ctx)
	args := ctx.QueryArgs()
	if args.Has("location") {
		b, ok := s.Store.Bucket(bucket)
		if !ok {
			s.writeCode(ctx, codeNoSuchBucket)
			return
		}
		doc := etree.NewDocument()
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
		el := doc.CreateElement("LocationConstraint")
		el.CreateAttr("xmlns", "http://s3.amazonaws.com/doc/2006-03-01/")
		el.SetText(b.Location)
		s.writeDocument(ctx, doc)
		return
	}

	prefix := string(args.Peek("prefix"))
	marker := string(args.Peek("marker"))
	delimiter := string(args.Peek("delimiter"))
	maxKeys := defaultMaxKeys
	if v := args.Peek("max-keys"); len(v) > 0 {
		n, err := strconv.Atoi(string(v))
		if err != nil || n < 0 {
			s.writeError(ctx, fasthttp.StatusBadRequest, "InvalidArgument", "max-keys must be a non negative integer")
			return
		}
		maxKeys = n
	}

	res, code := s.Store.List(bucket, prefix, marker, delimiter, maxKeys)
	if code != "" {
		s.writeCode(ctx, code)
		return
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("ListBucketResult")
	root.CreateAttr("xmlns", "http://s3.amazonaws.com/doc/2006-03-01/")
	root.CreateElement("Name").SetText(bucket)
	root.CreateElement("Prefix").SetText(prefix)
	root.CreateElement("Marker").SetText(marker)
	if delimiter != "" {
		root.CreateElement("Delimiter").SetText(delimiter)
		if res.Truncated {
			root.CreateElement("NextMarker").SetText(res.NextMarker)
		}
	}
	root.CreateElement("MaxKeys").SetText(strconv.Itoa(maxKeys))
	root.CreateElement("IsTruncated").SetText(strconv.FormatBool(res.Truncated))
	for _, o := range res.Objects {
		c := root.CreateElement("Contents")
		c.CreateElement("Key").SetText(o.Key)
		c.CreateElement("LastModified").SetText(o.LastModified.Format("2006-01-02T15:04:05.000Z"))
		c.CreateElement("ETag").SetText(o.ETag)
		c.CreateElement("Size").SetText(strconv.Itoa(len(o.Body)))
		c.CreateElement("StorageClass").SetText("STANDARD")
		owner := c.CreateElement("Owner")
		owner.CreateElement("ID").SetText("kites3")
		owner.CreateElement("DisplayName").SetText("kites3")
	}
	for _, p := range res.CommonPrefixes {
		root.CreateElement("CommonPrefixes").CreateElement("Prefix").SetText(p)
	}
	s.writeDocument(ctx, doc)
}

func (s *Server) headBucket(ctx *fasthttp.RequestCtx) {
	bucket, _ := resource(ctx)
	if _, ok := s.Store.Bucket(bucket); !ok {
		s.writeCode(ctx, codeNoSuchBucket)
	}
}

func (s *Server) putBucket(ctx *fasthttp.RequestCtx) {
	bucket, _ := resource(ctx)
	var location string
	if body := ctx.PostBody(); len(bytes.TrimSpace(body)) > 0 {
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(body); err != nil {
			s.writeError(ctx, fasthttp.StatusBadRequest, "MalformedXML", err.Error())
			return
		}
		if el := doc.FindElement("CreateBucketConfiguration/LocationConstraint"); el != nil {
			location = el.Text()
		}
	}
	if !s.Store.CreateBucket(bucket, location, string(ctx.Request.Header.Peek(headerACL))) {
		s.writeError(ctx, fasthttp.StatusConflict, "BucketAlreadyOwnedByYou", "Your previous request to create the named bucket succeeded and you already own it.")
		return
	}
	ctx.Response.Header.Set("Location", "/"+bucket)
}

func (s *Server) deleteBucket(ctx *fasthttp.RequestCtx) {
	bucket, _ := resource(ctx)
	if code := s.Store.DeleteBucket(bucket); code != "" {
		s.writeCode(ctx, code)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) getObject(ctx *fasthttp.RequestCtx) {
	bucket, key := resource(ctx)
	o, code := s.Store.Get(bucket, key)
	if code != "" {
		s.writeCode(ctx, code)
		return
	}
	h := &ctx.Response.Header
	h.Set("ETag", o.ETag)
	h.SetBytesV("Last-Modified", fasthttp.AppendHTTPDate(nil, o.LastModified))
	for k, v := range o.Meta {
		h.Set(metaPrefix+k, v)
	}
	if o.ContentType != "" {
		ctx.SetContentType(o.ContentType)
	}
	if ctx.IsHead() {
		h.SetContentLength(len(o.Body))
		return
	}
	ctx.SetBody(o.Body)
}

func (s *Server) putObject(ctx *fasthttp.RequestCtx) {
	bucket, key := resource(ctx)
	o := Object{
		Key:         key,
		Body:        append([]byte(nil), ctx.PostBody()...),
		ContentType: string(ctx.Request.Header.ContentType()),
		ACL:         string(ctx.Request.Header.Peek(headerACL)),
		Meta:        make(map[string]string),
	}
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		name := strings.ToLower(string(k))
		if strings.HasPrefix(name, metaPrefix) {
			o.Meta[name[len(metaPrefix):]] = string(v)
		}
	})

	stored, ok := s.Store.Put(bucket, o)
	if !ok {
		s.writeCode(ctx, codeNoSuchBucket)
		return
	}
	ctx.Response.Header.Set("ETag", stored.ETag)
}

func (s *Server) deleteObject(ctx *fasthttp.RequestCtx) {
	bucket, key := resource(ctx)
	if code := s.Store.Delete(bucket, key); code != "" {
		s.writeCode(ctx, code)
		return
	}
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}
