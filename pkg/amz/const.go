package amz

const (
	// MetaHeaderPrefix is the prefix every user metadata header name carries
	MetaHeaderPrefix = "x-amz-meta-"

	// MaxMetaHeaderSize is the maximum aggregate length of the raw metadata header strings supplied
	// for a single request
	MaxMetaHeaderSize = 2048
	// MaxMetaHeaderCount is the maximum number of metadata headers on a request or captured from a
	// response. The smallest well formed metadata header is 14 bytes ("x-amz-meta-a:b")
	MaxMetaHeaderCount = MaxMetaHeaderSize / (len(MetaHeaderPrefix) + 3)
	// MaxCanonicalSize bounds the composed canonical header text: the metadata, the ": " and line
	// terminator added to each metadata header, plus room for the acl and date headers
	MaxCanonicalSize = MaxMetaHeaderSize + 2*MaxMetaHeaderCount + 256

	HeaderACL       = "x-amz-acl"
	HeaderDate      = "x-amz-date"
	HeaderRequestID = "x-amz-request-id"
	// HeaderRequestID2 is the extended request id S3 returns for support requests
	HeaderRequestID2    = "x-amz-id-2"
	HeaderContentType   = "content-type"
	HeaderContentLength = "content-length"
	HeaderServer        = "server"
	HeaderETag          = "etag"
	HeaderLastModified  = "last-modified"
)
