package engine

import (
	"sync"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPoolRequest() *Request {
	return &Request{id: ksuid.New()}
}

func TestPoolLIFO(t *testing.T) {
	p := NewPool(4)
	a, b := newPoolRequest(), newPoolRequest()
	require.True(t, p.Put(a))
	require.True(t, p.Put(b))

	assert.True(t, b == p.Get())
	assert.True(t, a == p.Get())
	assert.Nil(t, p.Get())
}

func TestPoolCapacity(t *testing.T) {
	p := NewPool(2)
	assert.True(t, p.Put(newPoolRequest()))
	assert.True(t, p.Put(newPoolRequest()))
	assert.False(t, p.Put(newPoolRequest()))
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 2, p.Cap())
}

func TestPoolDrain(t *testing.T) {
	p := NewPool(2)
	p.Put(newPoolRequest())
	drained := p.Drain()
	assert.Len(t, drained, 1)
	assert.Equal(t, 0, p.Len())
	assert.False(t, p.Put(newPoolRequest()))
	assert.Nil(t, p.Get())
}

func TestPoolConcurrent(t *testing.T) {
	const capacity = 8
	p := NewPool(capacity)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		// out tracks descriptors currently handed out, the pool must never hand one out twice
		out = make(map[*Request]bool)
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				r := p.Get()
				if r == nil {
					r = newPoolRequest()
				}
				mu.Lock()
				dup := out[r]
				out[r] = true
				mu.Unlock()
				assert.False(t, dup)

				mu.Lock()
				delete(out, r)
				mu.Unlock()
				p.Put(r)
				assert.True(t, p.Len() <= capacity)
			}
		}()
	}
	wg.Wait()
	assert.True(t, p.Len() <= capacity)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "in-flight", StateInFlight.String())
	assert.Equal(t, "pooled", StatePooled.String())
	assert.Equal(t, "unknown", State(42).String())
}
