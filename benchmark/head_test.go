package benchmark

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/assetnote/kites3/pkg/amz"
	"github.com/assetnote/kites3/pkg/engine"
	"github.com/assetnote/kites3/pkg/multiplex"
	"github.com/assetnote/kites3/pkg/s3"
	"github.com/assetnote/kites3/pkg/s3/s3test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

const bucket = "bench"

type env struct {
	engine *engine.Engine
	client *s3.Client
	ln     *fasthttputil.InmemoryListener
	keys   []string
}

func (e *env) Close() {
	e.engine.Close()
	e.ln.Close()
}

func newEnv(tb testing.TB, objects int) *env {
	srv := s3test.NewServer(nil)
	srv.Store.CreateBucket(bucket, "", "")
	keys := make([]string, 0, objects)
	for i := 0; i < objects; i++ {
		k := fmt.Sprintf("objects/%04d.bin", i)
		srv.Store.Put(bucket, s3test.Object{Key: k, Body: []byte(k)})
		keys = append(keys, k)
	}

	ln := fasthttputil.NewInmemoryListener()
	go (&fasthttp.Server{Handler: srv.Handler}).Serve(ln)

	e, err := engine.New(
		engine.Timeout(5*time.Second),
		engine.PoolSize(64),
		engine.WithDial(func(addr string) (net.Conn, error) {
			return ln.Dial()
		}),
	)
	require.NoError(tb, err)
	return &env{
		engine: e,
		client: s3.New(e, s3.Host(s3test.BaseHost), s3.Protocol(engine.ProtocolHTTP), s3.URIStyle(engine.URIStylePath)),
		ln:     ln,
		keys:   keys,
	}
}

// headAll issues a HEAD per key, through a multiplexer with the given concurrency or blocking when 0
func (e *env) headAll(ctx context.Context, concurrency int) (ok int, err error) {
	var m *multiplex.Context
	if concurrency > 0 {
		m = multiplex.New(multiplex.Concurrency(concurrency))
		defer m.Close()
	}
	done := func(h *amz.ResponseHeaders, err error) {
		if err == nil {
			ok++
		}
	}
	for _, k := range e.keys {
		var mux engine.Multiplexer
		if m != nil {
			mux = m
		}
		if err := e.client.HeadObject(ctx, mux, bucket, k, done); err != nil {
			return ok, err
		}
	}
	if m != nil {
		err = m.Run(ctx)
	}
	return ok, err
}

func TestHeadAll(t *testing.T) {
	e := newEnv(t, 50)
	defer e.Close()

	for _, c := range []int{0, 1, 8, 64} {
		ok, err := e.headAll(context.Background(), c)
		assert.Nil(t, err, c)
		assert.Equal(t, 50, ok, c)
	}
}

func BenchmarkHeadAll(b *testing.B) {
	e := newEnv(b, 100)
	defer e.Close()

	for _, c := range []int{0, 1, 4, 16, 64} {
		b.Run(fmt.Sprintf("concurrency-%d", c), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := e.headAll(context.Background(), c); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
