package hypermap

import (
	"fmt"

	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

// Counts constrains the unsigned integer widths a cube can hold.
// Increments wrap modulo the chosen width; the caller picks a width
// large enough for the expected maximum accumulated count, usually via
// the header's estimate.
type Counts interface {
	~uint8 | ~uint16 | ~uint32
}

// Map is the width-erased view of a decoded cube. The driver selects
// the concrete count width at decode time; callers that do not care
// about the element type work through this interface.
type Map interface {
	// Dims returns the cube shape as (depth, width, height), indexed as
	// (channel, x, y).
	Dims() (depth, width, height int)

	// At returns the count at (channel, x, y), widened to uint64.
	At(channel, x, y int) uint64

	// Sum returns the total of all counts in the cube, widened to
	// uint64. With no cutoff and no overflow this equals the number of
	// recorded pulses in the input.
	Sum() uint64

	// CountWidth returns the width of the cube's count elements.
	CountWidth() format.CountWidth

	// AppendPayload appends the cube's counts to dst in little-endian
	// order, channel-fastest (the in-memory layout), and returns the
	// extended slice.
	AppendPayload(dst []byte) []byte
}

// Cube is a dense three-dimensional array of T counts with shape
// (depth, width, height). The layout is channel-fastest: element
// (c, x, y) lives at ((y*width)+x)*depth + c.
type Cube[T Counts] struct {
	depth  int
	width  int
	height int
	data   []T
}

var _ Map = (*Cube[uint8])(nil)

// NewCube allocates a zero-initialised cube of the given shape.
func NewCube[T Counts](depth, width, height int) *Cube[T] {
	return &Cube[T]{
		depth:  depth,
		width:  width,
		height: height,
		data:   make([]T, depth*width*height),
	}
}

// Dims returns the cube shape as (depth, width, height).
func (c *Cube[T]) Dims() (depth, width, height int) {
	return c.depth, c.width, c.height
}

// At returns the count at (channel, x, y), widened to uint64.
// It panics if the coordinates are out of range.
func (c *Cube[T]) At(channel, x, y int) uint64 {
	if channel < 0 || channel >= c.depth || x < 0 || x >= c.width || y < 0 || y >= c.height {
		panic(fmt.Sprintf("hypermap: coordinates (%d,%d,%d) out of range (%d,%d,%d)",
			channel, x, y, c.depth, c.width, c.height))
	}

	return uint64(c.data[(y*c.width+x)*c.depth+channel])
}

// Sum returns the total of all counts in the cube.
func (c *Cube[T]) Sum() uint64 {
	var total uint64
	for _, v := range c.data {
		total += uint64(v)
	}

	return total
}

// CountWidth returns the width of the cube's count elements.
func (c *Cube[T]) CountWidth() format.CountWidth {
	switch any(T(0)).(type) {
	case uint8:
		return format.Count8
	case uint16:
		return format.Count16
	default:
		return format.Count32
	}
}

// AppendPayload appends the counts to dst in little-endian order,
// channel-fastest, and returns the extended slice.
func (c *Cube[T]) AppendPayload(dst []byte) []byte {
	engine := endian.Little()
	switch data := any(c.data).(type) {
	case []uint8:
		dst = append(dst, data...)
	case []uint16:
		for _, v := range data {
			dst = engine.AppendUint16(dst, v)
		}
	case []uint32:
		for _, v := range data {
			dst = engine.AppendUint32(dst, v)
		}
	}

	return dst
}

// column returns the channel column at (x, y): a borrowed slice of
// length depth that the decoders scatter increments into.
func (c *Cube[T]) column(x, y int) []T {
	base := (y*c.width + x) * c.depth

	return c.data[base : base+c.depth]
}

// FromPayload reconstructs a cube from a little-endian channel-fastest
// payload, as produced by Map.AppendPayload. The payload length must
// equal depth*width*height elements of the given count width.
func FromPayload(width format.CountWidth, depth, w, h int, payload []byte) (Map, error) {
	elems := depth * w * h
	if len(payload) != elems*width.Bytes() {
		return nil, fmt.Errorf("%w: want %d bytes for (%d,%d,%d) %s, got %d",
			errs.ErrPayloadSizeMismatch, elems*width.Bytes(), depth, w, h, width, len(payload))
	}

	switch width {
	case format.Count8:
		cube := NewCube[uint8](depth, w, h)
		copy(cube.data, payload)

		return cube, nil
	case format.Count16:
		cube := NewCube[uint16](depth, w, h)
		for i := range cube.data {
			cube.data[i] = endian.Uint16(payload[i*2:])
		}

		return cube, nil
	case format.Count32:
		cube := NewCube[uint32](depth, w, h)
		for i := range cube.data {
			cube.data[i] = endian.Uint32(payload[i*4:])
		}

		return cube, nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCountWidth, width)
	}
}
