package chunk

import (
	"sync/atomic"
)

// sharedBuffer is a reference-counted byte buffer backing one or more raw
// column chunks. A grouped read produces several chunks over one buffer;
// each holds a reference and the bytes stay alive until the last is
// released. Lifetime is caller-scoped; there is no background eviction.
type sharedBuffer struct {
	data []byte
	refs atomic.Int32
}

func newSharedBuffer(data []byte, refs int) *sharedBuffer {
	b := &sharedBuffer{data: data}
	b.refs.Store(int32(refs))
	return b
}

// release drops one reference, freeing the data when the count hits zero.
func (b *sharedBuffer) release() {
	if b.refs.Add(-1) == 0 {
		b.data = nil
	}
}

func (b *sharedBuffer) alive() bool {
	return b.refs.Load() > 0
}
