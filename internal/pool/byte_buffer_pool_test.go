package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer_MustWriteAndReset(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3})
	require.Equal(t, 3, bb.Len())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, bb.Cap(), 4)
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(2)
	bb.MustWrite([]byte{1, 2})
	bb.Grow(100)
	require.GreaterOrEqual(t, bb.Cap(), 102)
	require.Equal(t, []byte{1, 2}, bb.Bytes())
}

func TestGetPut_ResetsOnGet(t *testing.T) {
	bb := Get()
	bb.MustWrite([]byte{1, 2, 3})
	Put(bb)

	bb2 := Get()
	require.Equal(t, 0, bb2.Len())
}

func TestPut_DropsOversizedBuffer(t *testing.T) {
	big := NewByteBuffer(2 * 1024 * 1024)
	// Should not panic and should simply be discarded rather than pooled.
	Put(big)
}
