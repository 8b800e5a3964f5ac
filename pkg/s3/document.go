package s3

import (
	"fmt"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/francoispqt/gojay"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Owner of a listed object
type Owner struct {
	ID          string
	DisplayName string
}

// ListedObject is one entry of a bucket listing
type ListedObject struct {
	Key          string
	LastModified time.Time
	ETag         string
	Size         int64
	StorageClass string
	Owner        Owner
}

func (o *ListedObject) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("key", o.Key)
	enc.StringKey("last_modified", o.LastModified.Format(time.RFC3339))
	enc.StringKeyOmitEmpty("etag", o.ETag)
	enc.Int64Key("size", o.Size)
	enc.StringKeyOmitEmpty("storage_class", o.StorageClass)
	enc.StringKeyOmitEmpty("owner_id", o.Owner.ID)
	enc.StringKeyOmitEmpty("owner_name", o.Owner.DisplayName)
}

func (o *ListedObject) IsNil() bool {
	return o == nil
}

func (o ListedObject) MarshalZerologObject(e *zerolog.Event) {
	e.Str("key", o.Key).Int64("size", o.Size).Str("etag", o.ETag)
}

type ListedObjects []ListedObject

func (oo ListedObjects) MarshalJSONArray(enc *gojay.Encoder) {
	for i := range oo {
		enc.Object(&oo[i])
	}
}

func (oo ListedObjects) IsNil() bool {
	return len(oo) == 0
}

// ListBucketResult is a decoded ListBucketResult document
type ListBucketResult struct {
	Name           string
	Prefix         string
	Marker         string
	NextMarker     string
	Delimiter      string
	MaxKeys        int
	IsTruncated    bool
	Contents       ListedObjects
	CommonPrefixes []string
}

func (l *ListBucketResult) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("name", l.Name)
	enc.StringKeyOmitEmpty("prefix", l.Prefix)
	enc.StringKeyOmitEmpty("marker", l.Marker)
	enc.StringKeyOmitEmpty("next_marker", l.NextMarker)
	enc.BoolKey("truncated", l.IsTruncated)
	enc.ArrayKey("contents", l.Contents)
	enc.ArrayKey("common_prefixes", gojay.EncodeArrayFunc(func(enc *gojay.Encoder) {
		for _, p := range l.CommonPrefixes {
			enc.String(p)
		}
	}))
}

func (l *ListBucketResult) IsNil() bool {
	return l == nil
}

// NextPageMarker is the marker to continue a truncated listing with, "" when the listing is
// complete. Servers only return NextMarker when a delimiter was used, otherwise the last key is
// the marker
func (l *ListBucketResult) NextPageMarker() string {
	if !l.IsTruncated {
		return ""
	}
	if l.NextMarker != "" {
		return l.NextMarker
	}
	if n := len(l.Contents); n > 0 {
		return l.Contents[n-1].Key
	}
	return ""
}

func readDocument(body []byte, root string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(err, "failed to parse response document")
	}
	el := doc.SelectElement(root)
	if el == nil {
		return nil, fmt.Errorf("document root is not <%s>", root)
	}
	return el, nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.SelectElement(tag); c != nil {
		return c.Text()
	}
	return ""
}

// ParseListBucketResult decodes a ListBucketResult document
func ParseListBucketResult(body []byte) (*ListBucketResult, error) {
	root, err := readDocument(body, "ListBucketResult")
	if err != nil {
		return nil, err
	}

	ret := &ListBucketResult{
		Name:        childText(root, "Name"),
		Prefix:      childText(root, "Prefix"),
		Marker:      childText(root, "Marker"),
		NextMarker:  childText(root, "NextMarker"),
		Delimiter:   childText(root, "Delimiter"),
		IsTruncated: childText(root, "IsTruncated") == "true",
	}
	if v := childText(root, "MaxKeys"); v != "" {
		if ret.MaxKeys, err = strconv.Atoi(v); err != nil {
			return nil, errors.Wrap(err, "invalid MaxKeys")
		}
	}

	for _, c := range root.SelectElements("Contents") {
		o := ListedObject{
			Key:          childText(c, "Key"),
			ETag:         childText(c, "ETag"),
			StorageClass: childText(c, "StorageClass"),
		}
		if v := childText(c, "Size"); v != "" {
			if o.Size, err = strconv.ParseInt(v, 10, 64); err != nil {
				return nil, errors.Wrapf(err, "invalid size for %s", o.Key)
			}
		}
		if v := childText(c, "LastModified"); v != "" {
			if o.LastModified, err = time.Parse(time.RFC3339Nano, v); err != nil {
				return nil, errors.Wrapf(err, "invalid last modified for %s", o.Key)
			}
		}
		if owner := c.SelectElement("Owner"); owner != nil {
			o.Owner = Owner{ID: childText(owner, "ID"), DisplayName: childText(owner, "DisplayName")}
		}
		ret.Contents = append(ret.Contents, o)
	}
	for _, p := range root.SelectElements("CommonPrefixes") {
		ret.CommonPrefixes = append(ret.CommonPrefixes, childText(p, "Prefix"))
	}
	return ret, nil
}

// ParseLocationConstraint decodes a LocationConstraint document. An empty constraint is the
// default region
func ParseLocationConstraint(body []byte) (string, error) {
	root, err := readDocument(body, "LocationConstraint")
	if err != nil {
		return "", err
	}
	return root.Text(), nil
}

// CreateBucketConfiguration renders the body of a create bucket request placing the bucket in
// location. An empty location needs no body
func CreateBucketConfiguration(location string) ([]byte, error) {
	if location == "" {
		return nil, nil
	}
	doc := etree.NewDocument()
	root := doc.CreateElement("CreateBucketConfiguration")
	root.CreateElement("LocationConstraint").SetText(location)
	return doc.WriteToBytes()
}
