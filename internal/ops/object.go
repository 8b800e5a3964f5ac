package ops

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/assetnote/kites3/pkg/amz"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/log"
	"github.com/assetnote/kites3/pkg/multiplex"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/dustin/go-humanize"
	"github.com/francoispqt/gojay"
	"github.com/olekukonko/tablewriter"
)

// HeadResult is the outcome of a HEAD on one key
type HeadResult struct {
	Key     string
	Headers *amz.ResponseHeaders
	Err     error
}

func (r *HeadResult) MarshalJSONObject(enc *gojay.Encoder) {
	enc.StringKey("key", r.Key)
	if r.Err != nil {
		enc.StringKey("status", errorStatus(r.Err))
		enc.StringKey("error", errorMessage(r.Err))
		return
	}
	enc.ObjectKey("headers", r.Headers)
}

func (r *HeadResult) IsNil() bool {
	return r == nil
}

type HeadResults []*HeadResult

func (rr HeadResults) MarshalJSONArray(enc *gojay.Encoder) {
	for _, r := range rr {
		enc.Object(r)
	}
}

func (rr HeadResults) IsNil() bool {
	return len(rr) == 0
}

// HeadObjects issues a HEAD for every key concurrently through a multiplexer and prints the
// response headers in the order of keys
func HeadObjects(ctx context.Context, bucket string, keys []string, opts ...Option) (HeadResults, error) {
	o := NewOptions(opts...)
	e, c, err := o.client()
	if err != nil {
		return nil, err
	}
	defer e.Close()

	m := multiplex.New(multiplex.Concurrency(o.Concurrency))
	defer m.Close()
	log.Debug().Str("mux", m.ID()).Int("keys", len(keys)).Msg("issuing head requests")

	pb := NewProgress(int64(len(keys)), o.Progress)
	ret := make(HeadResults, len(keys))
	for i, k := range keys {
		res := &HeadResult{Key: k}
		ret[i] = res
		err := c.HeadObject(ctx, m, bucket, k, func(h *amz.ResponseHeaders, err error) {
			res.Headers, res.Err = h, err
			pb.Incr(1)
		})
		if err != nil {
			// validation failures apply to every key
			return nil, err
		}
	}

	if err := m.Run(ctx); err != nil {
		return nil, fmt.Errorf("head requests interrupted: %w", err)
	}
	pb.Finish()

	switch o.Output {
	case Plain:
		for _, r := range ret {
			if r.Err != nil {
				fmt.Fprintln(o.Stdout, TabString(r.Key, "error", errorStatus(r.Err), errorMessage(r.Err)))
				continue
			}
			fmt.Fprintln(o.Stdout, TabString(r.Key, r.Headers.ETag, strconv.FormatInt(r.Headers.ContentLength, 10), r.Headers.LastModified, r.Headers.ContentType))
		}
	case JSON:
		if err := gojay.NewEncoder(o.Stdout).EncodeArray(ret); err != nil {
			return nil, fmt.Errorf("failed to encode results: %w", err)
		}
		fmt.Fprintln(o.Stdout)
	case Pretty:
		fallthrough
	default:
		table := tablewriter.NewWriter(o.Stdout)
		table.SetHeader([]string{"key", "status", "etag", "size", "modified", "type", "meta"})
		for _, r := range ret {
			if r.Err != nil {
				table.Append([]string{r.Key, errorStatus(r.Err), "", "", "", "", errorMessage(r.Err)})
				continue
			}
			h := r.Headers
			size := ""
			if h.ContentLength >= 0 {
				size = humanize.Bytes(uint64(h.ContentLength))
			}
			modified := h.LastModified
			if !h.LastModifiedTime.IsZero() {
				modified = humanize.Time(h.LastModifiedTime)
			}
			table.Append([]string{r.Key, "OK", h.ETag, size, modified, h.ContentType, metaString(h.MetaHeaders)})
		}
		table.Render()
	}
	return ret, nil
}

func metaString(mm amz.MetaHeaders) string {
	ret := ""
	for i, m := range mm {
		if i > 0 {
			ret += ", "
		}
		ret += m.Name + "=" + m.Value
	}
	return ret
}

// errorStatus names the failure, using the response code when the server answered
func errorStatus(err error) string {
	var rf awserr.RequestFailure
	if errors.As(err, &rf) {
		return strconv.Itoa(rf.StatusCode()) + " " + rf.Code()
	}
	return errors2.StatusOf(err).String()
}

// errorMessage is a single line description of the failure, the server's message when it sent one
func errorMessage(err error) string {
	var rf awserr.RequestFailure
	if errors.As(err, &rf) && rf.Message() != "" {
		return strings.Join(strings.Fields(rf.Message()), " ")
	}
	return strings.Join(strings.Fields(err.Error()), " ")
}
