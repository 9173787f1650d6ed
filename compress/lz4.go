package compress

import (
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// LZ4Codec provides LZ4 block compression for cube payloads.
//
// The LZ4 block format does not record its decompressed length, so this
// codec leans on the callers always knowing the payload size up front:
// Decompress refuses to guess.
type LZ4Codec struct{}

var _ Codec = (*LZ4Codec)(nil)

// The lz4.Compressor carries a hash table worth reusing across cube
// encodes, so compression state is pooled rather than rebuilt per call.
var lz4Compressors = sync.Pool{
	New: func() any {
		return new(lz4.Compressor)
	},
}

// NewLZ4Codec creates a new LZ4 codec.
func NewLZ4Codec() LZ4Codec {
	return LZ4Codec{}
}

// Compress compresses the input data as a single LZ4 block.
func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	lc, _ := lz4Compressors.Get().(*lz4.Compressor)
	defer lz4Compressors.Put(lc)

	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses a single LZ4 block into a buffer of exactly
// size bytes. size must be the payload length recorded alongside the
// block; the block format itself cannot supply it.
func (c LZ4Codec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if size <= 0 {
		return nil, fmt.Errorf("lz4: decompressed size unknown, %d bytes given", size)
	}

	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}
