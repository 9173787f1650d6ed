// Package section defines the fixed-layout binary sections of the cube
// blob format.
package section

import (
	"fmt"

	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

const (
	// CubeMagic identifies a cube blob header.
	CubeMagic uint16 = 0xB3C5

	// HeaderSize is the fixed size of the cube blob header in bytes.
	HeaderSize = 32
)

// CubeFlag is the packed flag word at the start of a cube blob header:
// a 16-bit magic number, the payload compression type, and the count
// element width.
type CubeFlag struct {
	Magic           uint16
	CompressionType format.CompressionType
	CountWidth      format.CountWidth
}

// NewCubeFlag creates a flag word for the given compression and count
// width.
func NewCubeFlag(compression format.CompressionType, width format.CountWidth) CubeFlag {
	return CubeFlag{
		Magic:           CubeMagic,
		CompressionType: compression,
		CountWidth:      width,
	}
}

// Validate checks the magic number and the enum fields.
func (f CubeFlag) Validate() error {
	if f.Magic != CubeMagic {
		return fmt.Errorf("%w: 0x%04X", errs.ErrInvalidMagic, f.Magic)
	}

	switch f.CompressionType {
	case format.CompressionNone, format.CompressionZlib, format.CompressionZstd,
		format.CompressionS2, format.CompressionLZ4:
	default:
		return fmt.Errorf("%w: 0x%02X", errs.ErrInvalidCompressionType, uint8(f.CompressionType))
	}

	switch f.CountWidth {
	case format.Count8, format.Count16, format.Count32:
		return nil
	default:
		return fmt.Errorf("%w: 0x%02X", errs.ErrUnsupportedCountWidth, uint8(f.CountWidth))
	}
}
