package section

import (
	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

// CubeHeader is the fixed 32-byte header at the start of a cube blob.
// All fields are little-endian.
type CubeHeader struct {
	// Flag packs the magic number, compression type, and count width.
	Flag CubeFlag // byte offset 0-3

	// Depth is the channel depth of the cube.
	Depth uint32 // byte offset 4-7
	// Width is the raster width of the cube.
	Width uint32 // byte offset 8-11
	// Height is the raster height of the cube.
	Height uint32 // byte offset 12-15

	// PayloadSize is the size of the (possibly compressed) payload that
	// follows the header.
	PayloadSize uint32 // byte offset 16-19

	// Checksum is the xxHash64 digest of the uncompressed payload.
	Checksum uint64 // byte offset 20-27

	// bytes 28-31 are reserved
}

// Parse parses a cube header from data, which must hold at least
// HeaderSize bytes.
func (h *CubeHeader) Parse(data []byte) error {
	if len(data) < HeaderSize {
		return errs.ErrInvalidHeaderSize
	}

	h.Flag.Magic = endian.Uint16(data[0:2])
	h.Flag.CompressionType = format.CompressionType(data[2])
	h.Flag.CountWidth = format.CountWidth(data[3])
	h.Depth = endian.Uint32(data[4:8])
	h.Width = endian.Uint32(data[8:12])
	h.Height = endian.Uint32(data[12:16])
	h.PayloadSize = endian.Uint32(data[16:20])
	h.Checksum = endian.Little().Uint64(data[20:28])

	return h.Flag.Validate()
}

// Bytes serializes the header into a new HeaderSize-byte slice.
func (h *CubeHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)
	engine := endian.Little()

	engine.PutUint16(b[0:2], h.Flag.Magic)
	b[2] = uint8(h.Flag.CompressionType)
	b[3] = uint8(h.Flag.CountWidth)
	engine.PutUint32(b[4:8], h.Depth)
	engine.PutUint32(b[8:12], h.Width)
	engine.PutUint32(b[12:16], h.Height)
	engine.PutUint32(b[16:20], h.PayloadSize)
	engine.PutUint64(b[20:28], h.Checksum)

	return b
}
