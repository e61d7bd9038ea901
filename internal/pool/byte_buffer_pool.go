// Package pool provides a sync.Pool-backed reusable byte buffer, adapted
// from arloliu/mebo/internal/pool/byte_buffer_pool.go.
//
// It backs the cache package's scratch buffer for marshaling a snapshot
// before compression, a hot path on every cached Open that would otherwise
// allocate a fresh buffer per call.
package pool

import "sync"

// DefaultSize is the default capacity handed out to a pooled ByteBuffer.
const DefaultSize = 4096

// ByteBuffer wraps a growable byte slice for reuse across calls.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given starting capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

// Bytes returns the underlying slice.
func (bb *ByteBuffer) Bytes() []byte { return bb.B }

// Reset empties the buffer while retaining its backing array.
func (bb *ByteBuffer) Reset() { bb.B = bb.B[:0] }

// Len returns the current length.
func (bb *ByteBuffer) Len() int { return len(bb.B) }

// Cap returns the current capacity.
func (bb *ByteBuffer) Cap() int { return cap(bb.B) }

// Grow ensures the buffer can hold n more bytes without reallocating,
// growing the backing array if necessary.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}
	grown := make([]byte, len(bb.B), len(bb.B)+n)
	copy(grown, bb.B)
	bb.B = grown
}

// MustWrite appends data, growing the buffer if necessary.
func (bb *ByteBuffer) MustWrite(data []byte) {
	bb.B = append(bb.B, data...)
}

var bufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(DefaultSize)
	},
}

// Get retrieves a reset ByteBuffer from the pool.
func Get() *ByteBuffer {
	bb, _ := bufferPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// Put returns a ByteBuffer to the pool. Buffers grown past
// maxPooledCapacity are dropped instead of pooled, to avoid pinning large
// allocations from an unusually big snapshot.
func Put(bb *ByteBuffer) {
	const maxPooledCapacity = 1024 * 1024 // 1MiB
	if bb.Cap() > maxPooledCapacity {
		return
	}
	bufferPool.Put(bb)
}
