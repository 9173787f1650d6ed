// Package pool provides pooled byte buffers for the block reader and the
// SFS piece reader, so per-fetch stitch buffers are reused instead of
// reallocated.
package pool

import "sync"

const (
	// BlockBufferDefaultSize fits one stitched spectrum block plus the
	// carried residue for typical BCF chunk sizes.
	BlockBufferDefaultSize  = 64 * 1024
	BlockBufferMaxThreshold = 512 * 1024

	// PieceBufferDefaultSize fits the piece reads the SFS layer performs
	// (compression block headers and compressed block bodies).
	PieceBufferDefaultSize  = 16 * 1024
	PieceBufferMaxThreshold = 256 * 1024
)

// ByteBuffer is a reusable byte slice wrapper handed out by the pools.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates a ByteBuffer with the given initial capacity.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, capacity)}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Len returns the current length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Reset empties the buffer while retaining its allocation.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Write appends data to the buffer, growing it if necessary.
func (bb *ByteBuffer) Write(data []byte) {
	bb.B = append(bb.B, data...)
}

var blockBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(BlockBufferDefaultSize)
	},
}

var pieceBufferPool = sync.Pool{
	New: func() any {
		return NewByteBuffer(PieceBufferDefaultSize)
	},
}

// GetBlockBuffer returns an empty ByteBuffer sized for block stitching.
func GetBlockBuffer() *ByteBuffer {
	bb, _ := blockBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutBlockBuffer returns a buffer obtained from GetBlockBuffer to the
// pool. Oversized buffers are dropped so one huge map does not pin its
// stitch buffer forever.
func PutBlockBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > BlockBufferMaxThreshold {
		return
	}
	blockBufferPool.Put(bb)
}

// GetPieceBuffer returns an empty ByteBuffer sized for SFS piece reads.
func GetPieceBuffer() *ByteBuffer {
	bb, _ := pieceBufferPool.Get().(*ByteBuffer)
	bb.Reset()

	return bb
}

// PutPieceBuffer returns a buffer obtained from GetPieceBuffer to the pool.
func PutPieceBuffer(bb *ByteBuffer) {
	if bb == nil || cap(bb.B) > PieceBufferMaxThreshold {
		return
	}
	pieceBufferPool.Put(bb)
}
