package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

func TestCubeHeaderRoundTrip(t *testing.T) {
	header := CubeHeader{
		Flag:        NewCubeFlag(format.CompressionZstd, format.Count16),
		Depth:       2048,
		Width:       512,
		Height:      384,
		PayloadSize: 123456,
		Checksum:    0xDEADBEEFCAFEF00D,
	}

	data := header.Bytes()
	require.Len(t, data, HeaderSize)

	var parsed CubeHeader
	require.NoError(t, parsed.Parse(data))
	require.Equal(t, header, parsed)
}

func TestCubeHeaderLayout(t *testing.T) {
	header := CubeHeader{
		Flag:        NewCubeFlag(format.CompressionNone, format.Count8),
		Depth:       0x0403_0201,
		PayloadSize: 7,
	}

	data := header.Bytes()
	require.Equal(t, byte(0xC5), data[0]) // magic, little-endian
	require.Equal(t, byte(0xB3), data[1])
	require.Equal(t, byte(format.CompressionNone), data[2])
	require.Equal(t, byte(format.Count8), data[3])
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, data[4:8])
}

func TestCubeHeaderParseErrors(t *testing.T) {
	t.Run("ShortData", func(t *testing.T) {
		var h CubeHeader
		require.ErrorIs(t, h.Parse(make([]byte, HeaderSize-1)), errs.ErrInvalidHeaderSize)
	})

	t.Run("BadMagic", func(t *testing.T) {
		good := CubeHeader{Flag: NewCubeFlag(format.CompressionNone, format.Count8)}
		data := good.Bytes()
		data[0] ^= 0xFF

		var h CubeHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrInvalidMagic)
	})

	t.Run("BadCompression", func(t *testing.T) {
		good := CubeHeader{Flag: NewCubeFlag(format.CompressionNone, format.Count8)}
		data := good.Bytes()
		data[2] = 0x7F

		var h CubeHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrInvalidCompressionType)
	})

	t.Run("SixtyFourBitCounts", func(t *testing.T) {
		good := CubeHeader{Flag: NewCubeFlag(format.CompressionNone, format.Count8)}
		data := good.Bytes()
		data[3] = byte(format.Count64)

		var h CubeHeader
		require.ErrorIs(t, h.Parse(data), errs.ErrUnsupportedCountWidth)
	})
}
