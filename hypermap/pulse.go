package hypermap

import (
	"fmt"

	"github.com/spectralio/bcf/errs"
)

// decodePulses unpacks a 12-bit pulse list and increments the listed
// channels of col by one each. Four pulses pack into every six bytes;
// the channel index of pulse i is extracted from group g = i/4 by a
// fixed bit recipe over bytes b[6g..6g+6] depending on the phase i%4.
//
// Channels at or beyond len(col) are dropped; col may be nil when the
// column falls outside the output raster.
func decodePulses[T Counts](data []byte, pulses int, col []T) error {
	if pulses == 0 {
		return nil
	}

	// Extent of the last pulse's phase within its six-byte group.
	last := pulses - 1
	extent := 6
	switch last % 4 {
	case 0:
		extent = 2
	case 1:
		extent = 4
	}
	if need := 6*(last/4) + extent; need > len(data) {
		return fmt.Errorf("%w: %d pulses need %d bytes, payload has %d",
			errs.ErrMalformedPixelRecord, pulses, need, len(data))
	}

	for i := 0; i < pulses; i++ {
		b := data[6*(i/4):]

		var channel int
		switch i % 4 {
		case 0:
			channel = int(b[0]>>4) | int(b[1])<<4
		case 1:
			channel = (int(b[0])<<8 | int(b[3])) & 0x0FFF
		case 2:
			channel = int(b[2])<<4 | int(b[5]>>4)
		default:
			channel = (int(b[5])<<8 | int(b[4])) & 0x0FFF
		}

		if channel < len(col) {
			col[channel]++
		}
	}

	return nil
}
