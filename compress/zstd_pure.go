//go:build !zstdcgo

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// One shared encoder and decoder serve the whole process: EncodeAll and
// DecodeAll are documented as safe for concurrent use, and sharing keeps
// their window allocations warm across cube encodes.
var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		// Cannot happen with valid static options.
		panic(fmt.Sprintf("failed to create shared zstd encoder: %v", err))
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderLowmem(false))
	if err != nil {
		panic(fmt.Sprintf("failed to create shared zstd decoder: %v", err))
	}
}

// Compress compresses the input data using the pure Go zstd encoder.
func (c ZstdCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return zstdEncoder.EncodeAll(data, nil), nil
}

// Decompress decompresses the input data using the pure Go zstd
// decoder, pre-sizing the output to the known payload length.
func (c ZstdCodec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var dst []byte
	if size > 0 {
		dst = make([]byte, 0, size)
	}

	return zstdDecoder.DecodeAll(data, dst)
}
