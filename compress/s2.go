package compress

import "github.com/klauspost/compress/s2"

// S2Codec provides S2 compression for cube payloads. S2 trades some
// ratio for very fast decompression, a good fit for cached cubes that
// are re-read often.
type S2Codec struct{}

var _ Codec = (*S2Codec)(nil)

// NewS2Codec creates a new S2 codec.
func NewS2Codec() S2Codec {
	return S2Codec{}
}

// Compress compresses the input data using S2.
func (c S2Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses S2-compressed data. The S2 frame records its
// own length; size pre-sizes the output so the whole cube payload lands
// in one allocation.
func (c S2Codec) Decompress(data []byte, size int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var dst []byte
	if size > 0 {
		dst = make([]byte, size)
	}

	return s2.Decode(dst, data)
}
