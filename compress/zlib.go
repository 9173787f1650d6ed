package compress

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// ZlibCodec provides zlib (RFC 1950) compression.
//
// This is the algorithm the SFS container uses for its compressed block
// layer: every compressed block is an independent zlib stream whose
// uncompressed size the AACS header records up front. The codec is also
// available for cube blobs, though zstd or lz4 are usually the better
// choice there.
type ZlibCodec struct{}

var _ Codec = (*ZlibCodec)(nil)

// zlibWriters pools zlib writers; Reset lets one writer serve many
// independent streams.
var zlibWriters = sync.Pool{
	New: func() any {
		return zlib.NewWriter(io.Discard)
	},
}

// NewZlibCodec creates a new zlib codec.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{}
}

// Compress compresses data into a single zlib stream.
func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var buf bytes.Buffer
	zw, _ := zlibWriters.Get().(*zlib.Writer)
	defer zlibWriters.Put(zw)

	zw.Reset(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates a single zlib stream into a buffer pre-sized to
// the known block length.
func (c ZlibCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	buf := bytes.NewBuffer(make([]byte, 0, size))
	if _, err := buf.ReadFrom(zr); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
