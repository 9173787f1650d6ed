package hypermap

import (
	"fmt"
	"log/slog"

	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
)

// legacyTag records invocations of the size>4 bunch branch. No known
// file exercises it; tagging keeps real-world hits observable without
// flooding the log on a pathological input.
type legacyTag struct {
	logger *slog.Logger
	seen   bool
}

func (t *legacyTag) hit(size int) {
	if t.seen {
		return
	}
	t.seen = true
	t.logger.Debug("legacy wide bunch encountered", "size", size)
}

// decodeBunches walks an instructed spectrum payload and scatters the
// decoded counts into col, the (x, y) channel column of the cube.
//
// Each bunch starts with a two-byte head (size, channels). size selects
// both the gain width and the per-channel value width:
//
//	size 0:     advance the channel cursor by channels, no writes
//	size 1:     1-byte gain, 4-bit values packed two per byte, low first
//	size 2:     2-byte gain, 1-byte values
//	size 4:     4-byte gain, 2-byte values
//	size other: 8-byte gain, 4-byte values (legacy branch)
//
// Channels at or beyond len(col) are decoded but dropped; col may be
// nil when the whole column falls outside the output raster. A decode
// that would consume bytes past the payload end fails with
// ErrBunchOverrun.
func decodeBunches[T Counts](data []byte, col []T, lt *legacyTag) error {
	off := 0
	cursor := 0

	for off < len(data) {
		if off+2 > len(data) {
			return fmt.Errorf("%w: bunch head at byte %d of %d", errs.ErrBunchOverrun, off, len(data))
		}
		size := int(data[off])
		channels := int(data[off+1])
		off += 2

		if size == 0 {
			cursor += channels
			continue
		}

		gainWidth := size
		if size != 1 && size != 2 && size != 4 {
			gainWidth = 8
			lt.hit(size)
		}
		if off+gainWidth > len(data) {
			return fmt.Errorf("%w: %d-byte gain at byte %d of %d",
				errs.ErrBunchOverrun, gainWidth, off, len(data))
		}

		var gain uint64
		switch gainWidth {
		case 1:
			gain = uint64(data[off])
		case 2:
			gain = uint64(endian.Uint16(data[off:]))
		case 4:
			gain = uint64(endian.Uint32(data[off:]))
		default:
			gain = endian.Uint64(data[off:])
		}
		off += gainWidth

		var dataBytes int
		switch {
		case size == 1:
			dataBytes = (channels + 1) / 2
		case size == 2:
			dataBytes = channels
		case size == 4:
			dataBytes = channels * 2
		default:
			dataBytes = channels * 4
		}
		if off+dataBytes > len(data) {
			return fmt.Errorf("%w: %d data bytes at byte %d of %d",
				errs.ErrBunchOverrun, dataBytes, off, len(data))
		}

		switch {
		case size == 1:
			// Nibble packed, low nibble first.
			for i := 0; i < channels; i++ {
				b := data[off+i/2]
				v := uint64(b & 0x0F)
				if i%2 == 1 {
					v = uint64(b >> 4)
				}
				if ch := cursor + i; ch < len(col) {
					col[ch] += T(v + gain)
				}
			}
		case size == 2:
			for i := 0; i < channels; i++ {
				if ch := cursor + i; ch < len(col) {
					col[ch] += T(uint64(data[off+i]) + gain)
				}
			}
		case size == 4:
			for i := 0; i < channels; i++ {
				if ch := cursor + i; ch < len(col) {
					col[ch] += T(uint64(endian.Uint16(data[off+i*2:])) + gain)
				}
			}
		default:
			for i := 0; i < channels; i++ {
				if ch := cursor + i; ch < len(col) {
					col[ch] += T(uint64(endian.Uint32(data[off+i*4:])) + gain)
				}
			}
		}

		off += dataBytes
		cursor += channels
	}

	return nil
}
