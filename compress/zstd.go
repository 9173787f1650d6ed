package compress

// ZstdCodec provides Zstandard compression for cube payloads.
//
// Zstd gives the best ratio of the available codecs for sparse spectral
// cubes, where long zero runs dominate. Use it for cold storage of
// decoded hypermaps; prefer S2 or LZ4 when decode latency matters more
// than size.
//
// Two implementations exist behind build tags: the default pure Go port
// and, under the zstdcgo tag, the libzstd binding.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)

// NewZstdCodec creates a new Zstd codec with default settings.
func NewZstdCodec() ZstdCodec {
	return ZstdCodec{}
}
