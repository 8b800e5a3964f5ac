package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"github.com/assetnote/kites3/pkg/amz"
	errors2 "github.com/assetnote/kites3/pkg/errors"
	"github.com/assetnote/kites3/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoCallbackOrder(t *testing.T) {
	f := &fakeFactory{newHandle: func() *fakeHandle {
		return &fakeHandle{code: 200, lines: okLines, body: []byte("abc")}
	}}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	err = e.Do(context.Background(), Params{Method: "GET", Bucket: "bucket", Key: "a b"}, rec.handler())
	require.NoError(t, err)

	assert.Equal(t, []string{"headers", "data", "complete"}, rec.events)
	assert.Equal(t, `"abc"`, rec.etag)
	assert.Equal(t, "abc", rec.body)
	require.Len(t, rec.results, 1)
	assert.Equal(t, errors2.StatusOK, rec.results[0].Status)
	assert.Equal(t, 200, rec.results[0].HTTPCode)
	assert.Nil(t, rec.results[0].Err)
	assert.True(t, rec.results[0].OK())

	h := f.last()
	assert.Equal(t, "https://bucket.s3.amazonaws.com/a+b", h.uri)
	assert.Equal(t, "GET", h.method)
	assert.Equal(t, "x-amz-date: Thu, 04 Mar 2021 05:06:07 GMT\n", h.canonical)
	assert.Equal(t, 1, e.Idle())
}

func TestDoForcesHeadersOnTransportFailure(t *testing.T) {
	f := &fakeFactory{newHandle: func() *fakeHandle {
		return &fakeHandle{performErr: errors2.New(errors2.StatusConnectionFailed, "perform", fmt.Errorf("refused"))}
	}}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	var headers *amz.ResponseHeaders
	rec := &recorder{}
	h := rec.handler()
	onHeaders := h.OnHeaders
	h.OnHeaders = func(rh *amz.ResponseHeaders) {
		headers = rh
		onHeaders(rh)
	}
	require.NoError(t, e.Do(context.Background(), Params{Method: "HEAD", Bucket: "b", Key: "k"}, h))

	assert.Equal(t, []string{"headers", "complete"}, rec.events)
	require.NotNil(t, headers)
	assert.Equal(t, "", rec.etag)
	res := rec.results[0]
	assert.Equal(t, errors2.StatusConnectionFailed, res.Status)
	assert.Equal(t, 0, res.HTTPCode)
	assert.Error(t, res.Cause)
	assert.False(t, res.OK())
	assert.Equal(t, 1, e.Idle())
}

func TestDoHTTPErrorCapturesPayload(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message><Key>k</Key><RequestId>R1</RequestId></Error>`
	f := &fakeFactory{newHandle: func() *fakeHandle {
		return &fakeHandle{
			code:  404,
			lines: []string{"HTTP/1.1 404 Not Found\r\n", "Content-Type: application/xml\r\n", "\r\n"},
			body:  []byte(body),
		}
	}}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	require.NoError(t, e.Do(context.Background(), Params{Method: "GET", Bucket: "b", Key: "k"}, rec.handler()))

	// no data callback for error responses
	assert.Equal(t, []string{"headers", "complete"}, rec.events)
	res := rec.results[0]
	assert.Equal(t, errors2.StatusHTTPError, res.Status)
	assert.Equal(t, 404, res.HTTPCode)
	require.NotNil(t, res.Err)
	assert.Equal(t, "NoSuchKey", res.Err.Code())
	assert.Equal(t, "R1", res.Err.RequestID())
	assert.Nil(t, res.Cause)
}

func TestDoHTTPErrorWithoutDocument(t *testing.T) {
	f := &fakeFactory{newHandle: func() *fakeHandle {
		return &fakeHandle{code: 500, lines: []string{"HTTP/1.1 500 Internal Server Error\r\n", "\r\n"}, body: []byte("oops")}
	}}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b"}, rec.handler()))
	res := rec.results[0]
	assert.Equal(t, errors2.StatusHTTPError, res.Status)
	assert.Equal(t, 500, res.HTTPCode)
	assert.Nil(t, res.Err)
}

func TestDoValidationFailsBeforeAcquire(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	tests := []struct {
		name   string
		meta   []string
		status errors2.Status
	}{
		{"missing prefix", []string{"x-foo: bar"}, errors2.StatusBadMetaHeader},
		{"bad name", []string{"x-amz-meta-a_b: c"}, errors2.StatusBadMetaHeader},
		{"empty value", []string{"x-amz-meta-a:   "}, errors2.StatusBadMetaHeader},
		{"too long", []string{"x-amz-meta-a: " + strings.Repeat("v", amz.MaxMetaHeaderSize)}, errors2.StatusMetaHeadersTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			err := e.Do(context.Background(), Params{
				Method:  "PUT",
				Bucket:  "b",
				Key:     "k",
				Headers: amz.RequestHeaders{MetaHeaders: tt.meta},
			}, rec.handler())
			require.Error(t, err)
			assert.Equal(t, tt.status, errors2.StatusOf(err))
			assert.Equal(t, errors2.KindValidation, errors2.KindOf(err))
			assert.Empty(t, rec.events)
		})
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&f.created))
}

func TestDoFactoryFailure(t *testing.T) {
	f := &fakeFactory{err: fmt.Errorf("out of handles")}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	err = e.Do(context.Background(), Params{Bucket: "b"}, rec.handler())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors2.ErrFailedToCreateRequest))
	assert.Equal(t, errors2.KindResource, errors2.KindOf(err))
	assert.Empty(t, rec.events)
}

func TestDoReuseResetsState(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b", Key: "one",
		Headers: amz.RequestHeaders{CannedACL: amz.CannedACLPublicRead, MetaHeaders: []string{"X-Amz-Meta-Color: blue"}},
	}, rec.handler()))
	h := f.last()
	assert.Equal(t, "x-amz-acl: public-read\nx-amz-date: Thu, 04 Mar 2021 05:06:07 GMT\nx-amz-meta-color: blue\n", h.canonical)
	assert.Equal(t, 0, h.resets)

	// second exchange gets a response without an etag, nothing may leak from the first
	h.lines = []string{"HTTP/1.1 200 OK\r\n", "\r\n"}
	rec2 := &recorder{}
	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b", Key: "two"}, rec2.handler()))

	assert.Equal(t, int32(1), atomic.LoadInt32(&f.created))
	assert.Equal(t, 1, h.resets)
	assert.Equal(t, 2, h.configures)
	assert.Equal(t, "https://b.s3.amazonaws.com/two", h.uri)
	assert.Equal(t, "x-amz-date: Thu, 04 Mar 2021 05:06:07 GMT\n", h.canonical)
	assert.Equal(t, "", rec2.etag)
	assert.Equal(t, []string{"headers", "complete"}, rec2.events)
}

func TestDoInitializeFailureDestroys(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b"}, Handler{}))
	h := f.last()
	h.resetErr = fmt.Errorf("broken handle")

	rec := &recorder{}
	err = e.Do(context.Background(), Params{Bucket: "b"}, rec.handler())
	require.Error(t, err)
	assert.Equal(t, errors2.StatusFailedToInitializeRequest, errors2.StatusOf(err))
	assert.Empty(t, rec.events)
	assert.Equal(t, 1, h.closes)
	assert.Equal(t, 0, e.Idle())
}

func TestDoConfiguresHandle(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f, PoolSize(8), MaxRedirects(3))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b"}, Handler{}))
	opts := f.last().opts
	assert.Equal(t, e.UserAgent(), opts.UserAgent)
	assert.Equal(t, 3, opts.MaxRedirects)
	assert.Equal(t, 4, opts.MaxConns)
	assert.Equal(t, http.DefaultLowSpeedTime, opts.LowSpeedTime)
}

func TestDoAuthorizer(t *testing.T) {
	var (
		gotMethod, gotType, gotResource, gotCanonical string
	)
	auth := AuthorizerFunc(func(method, contentType, resource string, headers *amz.CanonicalHeaders) (string, error) {
		gotMethod, gotType, gotResource, gotCanonical = method, contentType, resource, headers.String()
		return "AWS key:signature", nil
	})
	f := &fakeFactory{}
	e, err := newTestEngine(f, WithAuthorizer(auth))
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Do(context.Background(), Params{
		Method:      "PUT",
		Bucket:      "b",
		Key:         "dir/a b",
		SubResource: "acl",
		ContentType: "text/plain",
	}, Handler{}))

	assert.Equal(t, "PUT", gotMethod)
	assert.Equal(t, "text/plain", gotType)
	assert.Equal(t, "/b/dir/a+b?acl", gotResource)
	assert.Equal(t, "x-amz-date: Thu, 04 Mar 2021 05:06:07 GMT\n", gotCanonical)

	h := f.last()
	v, ok := h.headers.Get("Authorization")
	require.True(t, ok)
	assert.Equal(t, "AWS key:signature", v)
	v, ok = h.headers.Get("Content-Type")
	require.True(t, ok)
	assert.Equal(t, "text/plain", v)
}

func TestDoAuthorizerFailure(t *testing.T) {
	auth := AuthorizerFunc(func(string, string, string, *amz.CanonicalHeaders) (string, error) {
		return "", fmt.Errorf("no credentials")
	})
	f := &fakeFactory{}
	e, err := newTestEngine(f, WithAuthorizer(auth))
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	err = e.Do(context.Background(), Params{Bucket: "b"}, rec.handler())
	require.Error(t, err)
	assert.Equal(t, errors2.KindResource, errors2.KindOf(err))
	assert.Empty(t, rec.events)
	// the descriptor went back to the pool
	assert.Equal(t, 1, e.Idle())
}

func TestAddRegistrationFailure(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	m := &queueMux{err: fmt.Errorf("multiplexer full")}
	r, err := e.Add(Params{Bucket: "b"}, rec.handler(), m)
	assert.Nil(t, r)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors2.ErrFailedToRegister))
	assert.Equal(t, errors2.KindRegistration, errors2.KindOf(err))
	assert.Empty(t, rec.events)
	assert.Equal(t, 1, e.Idle())
	assert.Equal(t, 0, f.last().performs)

	_, err = e.Add(Params{Bucket: "b"}, rec.handler(), nil)
	assert.Equal(t, errors2.StatusFailedToRegister, errors2.StatusOf(err))
	assert.Equal(t, 1, e.Idle())
}

func TestAddDrivenByMultiplexer(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	m := &queueMux{}
	recs := make([]*recorder, 3)
	for i := range recs {
		recs[i] = &recorder{}
		r, err := e.Add(Params{Bucket: "b", Key: fmt.Sprintf("k%d", i)}, recs[i].handler(), m)
		require.NoError(t, err)
		assert.True(t, r == m.reqs[i])
	}
	require.Len(t, m.reqs, 3)
	assert.Equal(t, 0, e.Idle())

	for _, r := range m.reqs {
		assert.Equal(t, StateReady, r.State())
		var lines [][]byte
		err := r.Transfer(context.Background(), func(line []byte) {
			lines = append(lines, append([]byte(nil), line...))
		})
		assert.Equal(t, StateInFlight, r.State())
		for _, l := range lines {
			r.ParseHeaderLine(l)
		}
		assert.Equal(t, StateHeadersDelivered, r.State())
		r.Finish(err)
	}

	for _, rec := range recs {
		assert.Equal(t, []string{"headers", "complete"}, rec.events)
		assert.Equal(t, errors2.StatusOK, rec.results[0].Status)
	}
	assert.Equal(t, 3, e.Idle())
}

func TestFinishBeforeTransfer(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	m := &queueMux{}
	rec := &recorder{}
	r, err := e.Add(Params{Bucket: "b"}, rec.handler(), m)
	require.NoError(t, err)
	r.Finish(errors2.New(errors2.StatusInterrupted, "remove", nil))
	r.Finish(nil)

	assert.Equal(t, []string{"headers", "complete"}, rec.events)
	assert.Equal(t, errors2.StatusInterrupted, rec.results[0].Status)
	assert.Equal(t, 0, rec.results[0].HTTPCode)
	assert.Equal(t, StatePooled, r.State())
	assert.Equal(t, 0, f.last().performs)
}

func TestHeaderLinesAfterCompleteIgnored(t *testing.T) {
	f := &fakeFactory{newHandle: func() *fakeHandle {
		return &fakeHandle{code: 200, lines: append(append([]string(nil), okLines...), "ETag: \"later\"\r\n", "\r\n")}
	}}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	rec := &recorder{}
	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b"}, rec.handler()))
	assert.Equal(t, `"abc"`, rec.etag)
	assert.Equal(t, []string{"headers", "complete"}, rec.events)
}

func TestTransferRequiresReady(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()

	m := &queueMux{}
	r, err := e.Add(Params{Bucket: "b"}, Handler{}, m)
	require.NoError(t, err)
	require.NoError(t, r.Transfer(context.Background(), r.ParseHeaderLine))
	err = r.Transfer(context.Background(), r.ParseHeaderLine)
	assert.Equal(t, errors2.StatusInternalError, errors2.StatusOf(err))
	r.Finish(nil)
}

func TestDoConcurrent(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f, PoolSize(4))
	require.NoError(t, err)
	defer e.Close()

	var (
		wg        sync.WaitGroup
		headers   int32
		completes int32
	)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var gotHeaders bool
			err := e.Do(context.Background(), Params{Bucket: "b", Key: fmt.Sprintf("%d", i)}, Handler{
				OnHeaders: func(*amz.ResponseHeaders) {
					gotHeaders = true
					atomic.AddInt32(&headers, 1)
				},
				OnComplete: func(Result) {
					if gotHeaders {
						atomic.AddInt32(&completes, 1)
					}
				},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(64), atomic.LoadInt32(&headers))
	assert.Equal(t, int32(64), atomic.LoadInt32(&completes))
	assert.True(t, e.Idle() <= 4)
}

func TestCloseDestroysIdle(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)

	require.NoError(t, e.Do(context.Background(), Params{Bucket: "b"}, Handler{}))
	require.NoError(t, e.Close())
	assert.Equal(t, 1, f.last().closes)
	assert.Equal(t, 0, e.Idle())
	require.NoError(t, e.Close())

	err = e.Do(context.Background(), Params{Bucket: "b"}, Handler{})
	assert.Equal(t, errors2.StatusFailedToCreateRequest, errors2.StatusOf(err))
}

func TestUserAgent(t *testing.T) {
	f := &fakeFactory{}
	e, err := newTestEngine(f)
	require.NoError(t, err)
	defer e.Close()
	assert.True(t, strings.HasPrefix(e.UserAgent(), "Mozilla/4.0 (Compatible; test-info; kites3 1.0; "), e.UserAgent())
	assert.True(t, strings.HasSuffix(e.UserAgent(), ")"))

	assert.Contains(t, buildUserAgent(""), "Compatible; Unknown;")
	assert.Len(t, buildUserAgent(strings.Repeat("x", 300)), userAgentMax)

	// "Mozilla/4.0 (Compatible; " is 25 bytes so two byte runes straddle the limit
	ua := buildUserAgent(strings.Repeat("é", 200))
	assert.True(t, utf8.ValidString(ua), ua)
	assert.Equal(t, userAgentMax-1, len(ua))
	for _, info := range []string{strings.Repeat("日", 100), "a" + strings.Repeat("日", 100), "ab" + strings.Repeat("日", 100)} {
		ua := buildUserAgent(info)
		assert.True(t, utf8.ValidString(ua), info)
		assert.True(t, len(ua) <= userAgentMax && len(ua) > userAgentMax-3)
	}
}

func TestConfigValidate(t *testing.T) {
	_, err := New(PoolSize(0), MaxRedirects(-1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PoolSize")
	assert.Contains(t, err.Error(), "MaxRedirects")

	c := NewDefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, DefaultPoolSize/2, c.MaxConnsPerHandle)
	assert.NotNil(t, c.HandleFactory)
	assert.NotNil(t, c.Clock)
}
