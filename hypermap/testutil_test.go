package hypermap

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/spectralio/bcf/format"
)

// sliceSource feeds pre-split blocks to the reader.
type sliceSource struct {
	blocks [][]byte
	next   int
}

func (s *sliceSource) NextBlock() ([]byte, error) {
	if s.next >= len(s.blocks) {
		return nil, io.EOF
	}
	block := s.blocks[s.next]
	s.next++

	return block, nil
}

func splitBlocks(data []byte, size int) [][]byte {
	var blocks [][]byte
	for len(data) > size {
		blocks = append(blocks, data[:size])
		data = data[size:]
	}

	return append(blocks, data)
}

// testContainer adapts a raw spectrum stream to the Container contract.
type testContainer struct {
	data       []byte
	blockSize  int
	channels   uint32
	width      uint32
	height     uint32
	countWidth format.CountWidth
}

func (c *testContainer) SpectrumStream() (BlockSource, uint32, uint32, error) {
	blocks := splitBlocks(c.data, c.blockSize)

	return &sliceSource{blocks: blocks}, uint32(c.blockSize), uint32(len(blocks)), nil
}

func (c *testContainer) EstimateChannels() uint32 {
	return c.channels
}

func (c *testContainer) EstimateCountWidth(int) format.CountWidth {
	if c.countWidth == 0 {
		return format.Count32
	}

	return c.countWidth
}

func (c *testContainer) ImageSize() (uint32, uint32) {
	return c.width, c.height
}

// streamBuilder assembles synthetic spectrum streams: the 0x1A0-byte
// prologue followed by rows of pixel records.
type streamBuilder struct {
	buf []byte
}

func newStreamBuilder() *streamBuilder {
	return &streamBuilder{buf: make([]byte, mapDataOffset)}
}

func (b *streamBuilder) bytes(v ...byte) *streamBuilder {
	b.buf = append(b.buf, v...)
	return b
}

func (b *streamBuilder) u16(v uint16) *streamBuilder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *streamBuilder) u32(v uint32) *streamBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

// row starts a pixel row holding pixels records.
func (b *streamBuilder) row(pixels int) *streamBuilder {
	return b.u32(uint32(pixels))
}

// pixelHeader appends the fixed 22-byte record header.
func (b *streamBuilder) pixelHeader(x uint32, flag, pulses, dataSize uint16) *streamBuilder {
	b.u32(x)
	b.u16(0) // chan1
	b.u16(0) // chan2
	b.u32(0) // unknown constant
	b.u16(flag)
	b.u16(0) // data_size1
	b.u16(pulses)
	b.u16(dataSize)
	b.u16(0) // padding

	return b
}

// bunchPixel appends a whole instructed pixel: header, payload, and the
// trailing additional-pulse block.
func (b *streamBuilder) bunchPixel(x uint32, payload []byte, addPulses []uint16) *streamBuilder {
	b.pixelHeader(x, 2, uint16(len(addPulses)), uint16(len(payload)+4))
	b.bytes(payload...)
	b.u32(uint32(len(addPulses) * 2)) // add_pulse_size, value unused
	for _, p := range addPulses {
		b.u16(p)
	}

	return b
}

// pulsePixel appends a whole 12-bit pixel: header plus packed groups.
func (b *streamBuilder) pulsePixel(x uint32, pulses int, packed []byte) *streamBuilder {
	b.pixelHeader(x, 1, uint16(pulses), uint16(len(packed)))
	b.bytes(packed...)

	return b
}

func (b *streamBuilder) stream() []byte {
	return b.buf
}

// container wraps the built stream with raster geometry.
func (b *streamBuilder) container(channels, width, height uint32, blockSize int) *testContainer {
	return &testContainer{
		data:      b.stream(),
		blockSize: blockSize,
		channels:  channels,
		width:     width,
		height:    height,
	}
}

// calibratedContainer adds a linear energy calibration to a
// testContainer, satisfying EnergyCalibrated.
type calibratedContainer struct {
	*testContainer
	calibLin float64
}

func (c *calibratedContainer) ChannelAt(keV float64) int {
	return int(math.Round(keV / c.calibLin))
}

// encodePulse12 packs channel v as pulse phase within a six-byte group.
func encodePulse12(group []byte, phase int, v uint16) {
	switch phase {
	case 0:
		group[0] |= byte(v&0x0F) << 4
		group[1] = byte(v >> 4)
	case 1:
		group[0] |= byte(v >> 8 & 0x0F)
		group[3] = byte(v)
	case 2:
		group[2] = byte(v >> 4)
		group[5] |= byte(v&0x0F) << 4
	default:
		group[5] |= byte(v >> 8 & 0x0F)
		group[4] = byte(v)
	}
}

// cubesEqual compares two maps element-wise.
func cubesEqual(a, b Map) bool {
	ad, aw, ah := a.Dims()
	bd, bw, bh := b.Dims()
	if ad != bd || aw != bw || ah != bh {
		return false
	}
	for y := 0; y < ah; y++ {
		for x := 0; x < aw; x++ {
			for c := 0; c < ad; c++ {
				if a.At(c, x, y) != b.At(c, x, y) {
					return false
				}
			}
		}
	}

	return true
}
