package multiplex

import (
	"context"
	"sync"

	"github.com/assetnote/kites3/pkg/engine"
	"github.com/valyala/bytebufferpool"
)

// entry tracks one registered request. The header lines the transport delivers on the worker
// goroutine are buffered so they can be replayed on the driving goroutine
type entry struct {
	req     *engine.Request
	lines   *bytebufferpool.ByteBuffer
	offsets []int
	err     error
	removed bool
	cancel  context.CancelFunc
}

var entryPool sync.Pool

func acquireEntry(r *engine.Request) *entry {
	v := entryPool.Get()
	if v == nil {
		v = &entry{}
	}
	en := v.(*entry)
	en.req = r
	en.lines = bytebufferpool.Get()
	return en
}

func releaseEntry(en *entry) {
	bytebufferpool.Put(en.lines)
	en.lines = nil
	en.req = nil
	en.offsets = en.offsets[:0]
	en.err = nil
	en.removed = false
	en.cancel = nil
	entryPool.Put(en)
}

// capture is handed to the transport as the header callback
func (en *entry) capture(line []byte) {
	en.offsets = append(en.offsets, len(en.lines.B))
	en.lines.B = append(en.lines.B, line...)
}

// replay feeds every captured line to the request's header parser in delivery order
func (en *entry) replay() {
	for i, start := range en.offsets {
		end := len(en.lines.B)
		if i+1 < len(en.offsets) {
			end = en.offsets[i+1]
		}
		en.req.ParseHeaderLine(en.lines.B[start:end])
	}
}
