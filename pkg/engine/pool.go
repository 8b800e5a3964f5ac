package engine

import (
	"sync"
)

// Pool is a bounded LIFO stack of idle request descriptors. The most recently released descriptor
// is handed out first since its handle is the most likely to hold a warm connection.
// The lock is only held for the slice operations
type Pool struct {
	mu       sync.Mutex
	idle     []*Request
	capacity int
	closed   bool
}

func NewPool(capacity int) *Pool {
	if capacity < 0 {
		capacity = 0
	}
	return &Pool{
		idle:     make([]*Request, 0, capacity),
		capacity: capacity,
	}
}

// Get pops the most recently released descriptor, nil if the pool is empty
func (p *Pool) Get() *Request {
	p.mu.Lock()
	n := len(p.idle)
	if n == 0 {
		p.mu.Unlock()
		return nil
	}
	r := p.idle[n-1]
	p.idle[n-1] = nil
	p.idle = p.idle[:n-1]
	p.mu.Unlock()
	return r
}

// Put pushes r onto the pool. It returns false when the pool is full or closed, in which case the
// caller must destroy r
func (p *Pool) Put(r *Request) bool {
	p.mu.Lock()
	if p.closed || len(p.idle) >= p.capacity {
		p.mu.Unlock()
		return false
	}
	p.idle = append(p.idle, r)
	p.mu.Unlock()
	return true
}

// Drain empties the pool and refuses every further Put
func (p *Pool) Drain() []*Request {
	p.mu.Lock()
	ret := p.idle
	p.idle = nil
	p.closed = true
	p.mu.Unlock()
	return ret
}

// Len is the number of idle descriptors
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle)
}

func (p *Pool) Cap() int {
	return p.capacity
}
