// Package compress provides the compression codecs used by the bcf
// module: zlib for the SFS container's compressed block layer, and
// zstd/s2/lz4/noop for cube blob serialization.
//
// Unlike general-purpose streaming, every payload this module
// decompresses has a known size before decoding starts: a cube blob
// header records the payload dimensions, and an SFS AACS header records
// the uncompressed block size. Decompress therefore takes the expected
// size and uses it to pre-size its output. The zlib codec still grows
// its buffer once when the output fills it, since it reads until the
// end of the stream.
package compress

import (
	"fmt"

	"github.com/spectralio/bcf/format"
)

// Compressor compresses a complete payload (a serialized cube or one
// SFS data block) in one call.
type Compressor interface {
	// Compress compresses the input data and returns the compressed
	// result. The returned slice is newly allocated and owned by the
	// caller; the input slice is not modified.
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a complete payload in one call.
type Decompressor interface {
	// Decompress decompresses the input data. size is the expected
	// uncompressed length (an upper bound for the short tail block of
	// an SFS file) and pre-sizes the output allocation. Codecs whose
	// wire format does not self-describe its decompressed length (LZ4
	// blocks) require size > 0.
	//
	// The returned slice is newly allocated and owned by the caller.
	Decompress(data []byte, size int) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZlib: NewZlibCodec(),
	format.CompressionZstd: NewZstdCodec(),
	format.CompressionS2:   NewS2Codec(),
	format.CompressionLZ4:  NewLZ4Codec(),
}

// GetCodec retrieves the built-in Codec for the specified compression
// type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
