package compress

// NoOpCodec passes data through without compression. Useful for
// benchmarking the blob framing overhead and for payloads that are
// already dense enough not to compress.
type NoOpCodec struct{}

var _ Codec = (*NoOpCodec)(nil)

// NewNoOpCodec creates a new pass-through codec.
func NewNoOpCodec() NoOpCodec {
	return NoOpCodec{}
}

// Compress returns the input data unchanged.
func (c NoOpCodec) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns the input data unchanged; the size hint is
// irrelevant for stored payloads.
func (c NoOpCodec) Decompress(data []byte, _ int) ([]byte, error) {
	return data, nil
}
