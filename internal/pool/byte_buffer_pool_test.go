package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBuffer(t *testing.T) {
	bb := NewByteBuffer(16)
	require.Equal(t, 0, bb.Len())

	bb.Write([]byte{1, 2, 3})
	bb.Write([]byte{4})
	require.Equal(t, 4, bb.Len())
	require.Equal(t, []byte{1, 2, 3, 4}, bb.Bytes())

	bb.Reset()
	require.Equal(t, 0, bb.Len())
	require.GreaterOrEqual(t, cap(bb.B), 4)
}

func TestBlockBufferPool(t *testing.T) {
	bb := GetBlockBuffer()
	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())

	bb.Write(make([]byte, 100))
	PutBlockBuffer(bb)

	// A recycled buffer always comes back empty.
	again := GetBlockBuffer()
	require.Equal(t, 0, again.Len())
	PutBlockBuffer(again)

	// Oversized buffers are dropped instead of pooled.
	big := &ByteBuffer{B: make([]byte, BlockBufferMaxThreshold+1)}
	PutBlockBuffer(big)
	PutBlockBuffer(nil)
}

func TestPieceBufferPool(t *testing.T) {
	bb := GetPieceBuffer()
	require.NotNil(t, bb)
	bb.Write([]byte{0xFF})
	PutPieceBuffer(bb)

	again := GetPieceBuffer()
	require.Equal(t, 0, again.Len())
	PutPieceBuffer(again)
}
