package hypermap

import (
	"fmt"

	"github.com/spectralio/bcf/errs"
)

// pixel record field widths, little-endian:
//
//	pixel_x     u32  column index within the row
//	chan1       u16  reserved
//	chan2       u16  reserved
//	(skip)      u32  unknown constant
//	flag        u16  1 = 12-bit pulse list, else instructed bunches
//	data_size1  u16  reserved
//	n_of_pulses u16  pulse count / additional pulse count
//	data_size2  u16  payload length in bytes
//	(skip)      u16  padding
//
// The reserved fields do not drive control flow but must be consumed to
// advance the stream.

// walkMap decodes rows pixel rows from r into cube. Destination
// coordinates are (pixel_x/downsample, row/downsample); a pixel whose
// destination falls outside the cube raster is parsed and discarded.
func walkMap[T Counts](r *blockReader, cube *Cube[T], rows, downsample int, lt *legacyTag) error {
	for row := 0; row < rows; row++ {
		pixels, err := r.readUint32()
		if err != nil {
			return fmt.Errorf("pixel count of row %d: %w", row, err)
		}

		for p := uint32(0); p < pixels; p++ {
			if err := walkPixel(r, cube, row, downsample, lt); err != nil {
				return fmt.Errorf("row %d: %w", row, err)
			}
		}
	}

	return nil
}

func walkPixel[T Counts](r *blockReader, cube *Cube[T], row, downsample int, lt *legacyTag) error {
	pixelX, err := r.readUint32()
	if err != nil {
		return err
	}
	if err := r.skip(8); err != nil { // chan1, chan2, unknown constant
		return err
	}
	flag, err := r.readUint16()
	if err != nil {
		return err
	}
	if err := r.skip(2); err != nil { // data_size1
		return err
	}
	pulses, err := r.readUint16()
	if err != nil {
		return err
	}
	dataSize, err := r.readUint16()
	if err != nil {
		return err
	}
	if err := r.skip(2); err != nil { // padding
		return err
	}

	// A nil column keeps the cutoff and raster guards below while the
	// record is still fully consumed.
	var col []T
	xd, yd := int(pixelX)/downsample, row/downsample
	if xd < cube.width && yd < cube.height {
		col = cube.column(xd, yd)
	}

	if flag == 1 {
		data, err := r.borrow(int(dataSize))
		if err != nil {
			return err
		}

		return decodePulses(data, int(pulses), col)
	}

	if dataSize < 4 {
		return fmt.Errorf("%w: packed data size %d cannot hold the additional pulse size field",
			errs.ErrMalformedPixelRecord, dataSize)
	}
	data, err := r.borrow(int(dataSize) - 4)
	if err != nil {
		return err
	}
	if err := decodeBunches(data, col, lt); err != nil {
		return err
	}

	// Additional pulses accumulate into the same column, after the
	// bunches. The 4-byte size field is consumed either way; its value
	// is not used.
	if pulses == 0 {
		return r.skip(4)
	}
	if _, err := r.readUint32(); err != nil {
		return err
	}
	for i := 0; i < int(pulses); i++ {
		v, err := r.readUint16()
		if err != nil {
			return err
		}
		if int(v) < len(col) {
			col[v]++
		}
	}

	return nil
}
