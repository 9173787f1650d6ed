package format

type (
	// CompressionType identifies a payload compression algorithm.
	CompressionType uint8

	// CountWidth identifies the unsigned integer width of the count
	// elements in a decoded hypermap cube.
	CountWidth uint8
)

const (
	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZlib CompressionType = 0x2 // CompressionZlib represents zlib (RFC 1950) compression.
	CompressionZstd CompressionType = 0x3 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x4 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x5 // CompressionLZ4 represents LZ4 block compression.
)

const (
	Count8  CountWidth = 0x1 // Count8 represents uint8 count elements.
	Count16 CountWidth = 0x2 // Count16 represents uint16 count elements.
	Count32 CountWidth = 0x3 // Count32 represents uint32 count elements.
	Count64 CountWidth = 0x4 // Count64 represents uint64 count elements (estimated only, never decoded).
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (w CountWidth) String() string {
	switch w {
	case Count8:
		return "uint8"
	case Count16:
		return "uint16"
	case Count32:
		return "uint32"
	case Count64:
		return "uint64"
	default:
		return "Unknown"
	}
}

// Bytes returns the size of one count element in bytes, or 0 for an
// unknown width.
func (w CountWidth) Bytes() int {
	switch w {
	case Count8:
		return 1
	case Count16:
		return 2
	case Count32:
		return 4
	case Count64:
		return 8
	default:
		return 0
	}
}
