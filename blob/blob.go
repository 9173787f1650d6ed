// Package blob persists decoded hypermap cubes as compact binary blobs,
// so a cube can be cached and re-read without re-parsing the BCF file.
//
// A blob is a fixed 32-byte header followed by the cube payload (counts
// in little-endian order, channel-fastest) compressed with the codec
// recorded in the header. The header carries an xxHash64 digest
// of the uncompressed payload, verified on decode.
package blob

import (
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/spectralio/bcf/compress"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
	"github.com/spectralio/bcf/hypermap"
	"github.com/spectralio/bcf/section"
)

// Encode serializes m into a cube blob using the given payload
// compression.
func Encode(m hypermap.Map, compression format.CompressionType) ([]byte, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	depth, width, height := m.Dims()
	payload := m.AppendPayload(make([]byte, 0, depth*width*height*m.CountWidth().Bytes()))

	compressed, err := codec.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to compress cube payload: %w", err)
	}

	header := section.CubeHeader{
		Flag:        section.NewCubeFlag(compression, m.CountWidth()),
		Depth:       uint32(depth),
		Width:       uint32(width),
		Height:      uint32(height),
		PayloadSize: uint32(len(compressed)),
		Checksum:    xxhash.Sum64(payload),
	}

	out := make([]byte, 0, section.HeaderSize+len(compressed))
	out = append(out, header.Bytes()...)
	out = append(out, compressed...)

	return out, nil
}

// Decode reconstructs a cube from blob data produced by Encode. It
// validates the header, decompresses the payload, and verifies the
// checksum before rebuilding the cube.
func Decode(data []byte) (hypermap.Map, error) {
	var header section.CubeHeader
	if err := header.Parse(data); err != nil {
		return nil, err
	}

	body := data[section.HeaderSize:]
	if len(body) != int(header.PayloadSize) {
		return nil, fmt.Errorf("%w: header claims %d payload bytes, blob has %d",
			errs.ErrPayloadSizeMismatch, header.PayloadSize, len(body))
	}

	codec, err := compress.GetCodec(header.Flag.CompressionType)
	if err != nil {
		return nil, err
	}

	// The header fixes the uncompressed payload size exactly, so the
	// codec can allocate its output in one go.
	uncompressed := int(header.Depth) * int(header.Width) * int(header.Height) *
		header.Flag.CountWidth.Bytes()
	payload, err := codec.Decompress(body, uncompressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress cube payload: %w", err)
	}

	if sum := xxhash.Sum64(payload); sum != header.Checksum {
		return nil, fmt.Errorf("%w: want 0x%016x, got 0x%016x",
			errs.ErrChecksumMismatch, header.Checksum, sum)
	}

	return hypermap.FromPayload(header.Flag.CountWidth,
		int(header.Depth), int(header.Width), int(header.Height), payload)
}
