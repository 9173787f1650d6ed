package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spectralio/bcf/format"
)

func testPayload() []byte {
	// A sparse-spectrum-like payload: long zero runs with occasional
	// counts, repeated enough for every codec to bite.
	payload := make([]byte, 0, 8192)
	for i := 0; i < 64; i++ {
		block := make([]byte, 128)
		block[3] = byte(i)
		block[17] = 0x42
		payload = append(payload, block...)
	}

	return payload
}

func TestCodecRoundTrip(t *testing.T) {
	codecs := map[string]Codec{
		"NoOp": NewNoOpCodec(),
		"Zlib": NewZlibCodec(),
		"Zstd": NewZstdCodec(),
		"S2":   NewS2Codec(),
		"LZ4":  NewLZ4Codec(),
	}

	payload := testPayload()
	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed, len(payload))
			require.NoError(t, err)
			require.True(t, bytes.Equal(payload, restored))
		})
	}
}

func TestDecompressOversizedHint(t *testing.T) {
	// The size is an upper bound for the short tail block of an SFS
	// file; a generous hint must not pad the output.
	payload := testPayload()[:300]
	for name, codec := range map[string]Codec{
		"Zlib": NewZlibCodec(),
		"Zstd": NewZstdCodec(),
		"S2":   NewS2Codec(),
		"LZ4":  NewLZ4Codec(),
	} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed, 4096)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestSelfDescribingCodecsWorkWithoutHint(t *testing.T) {
	// Zlib, zstd, and s2 frames carry their own length; the hint only
	// sizes the allocation.
	payload := testPayload()
	for name, codec := range map[string]Codec{
		"Zlib": NewZlibCodec(),
		"Zstd": NewZstdCodec(),
		"S2":   NewS2Codec(),
	} {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			restored, err := codec.Decompress(compressed, 0)
			require.NoError(t, err)
			require.Equal(t, payload, restored)
		})
	}
}

func TestLZ4RequiresSize(t *testing.T) {
	codec := NewLZ4Codec()
	compressed, err := codec.Compress(testPayload())
	require.NoError(t, err)

	_, err = codec.Decompress(compressed, 0)
	require.Error(t, err)

	// A short (but non-zero) size is a hard error, not a partial read.
	_, err = codec.Decompress(compressed, 16)
	require.Error(t, err)
}

func TestCodecCompresses(t *testing.T) {
	payload := testPayload()
	for name, codec := range map[string]Codec{
		"Zlib": NewZlibCodec(),
		"Zstd": NewZstdCodec(),
		"S2":   NewS2Codec(),
		"LZ4":  NewLZ4Codec(),
	} {
		compressed, err := codec.Compress(payload)
		require.NoError(t, err)
		require.Less(t, len(compressed), len(payload), "%s should shrink the zero-run payload", name)
	}
}

func TestCodecEmptyInput(t *testing.T) {
	for _, codec := range []Codec{NewZlibCodec(), NewZstdCodec(), NewS2Codec(), NewLZ4Codec()} {
		compressed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, compressed)

		restored, err := codec.Decompress(nil, 0)
		require.NoError(t, err)
		require.Empty(t, restored)
	}
}

func TestCorruptedInputFails(t *testing.T) {
	garbage := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x01, 0x02, 0x03}

	for name, codec := range map[string]Codec{
		"Zlib": NewZlibCodec(),
		"Zstd": NewZstdCodec(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decompress(garbage, 64)
			require.Error(t, err)
		})
	}
}

func TestGetCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{
		format.CompressionNone, format.CompressionZlib, format.CompressionZstd,
		format.CompressionS2, format.CompressionLZ4,
	} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := GetCodec(format.CompressionType(0x7F))
	require.Error(t, err)
}
