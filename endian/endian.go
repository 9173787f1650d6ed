// Package endian provides the little-endian scalar decoders used by the
// Bruker wire format, plus byte order utilities for the cube blob codec.
//
// The BCF spectrum stream is little-endian throughout. The decoders in
// this package operate on borrowed byte slices and perform no bounds
// checks beyond the implicit slice access; the caller guarantees a slice
// of at least the required width.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// Engine combines ByteOrder and AppendByteOrder from encoding/binary into
// a single interface for byte order operations. It is satisfied by
// binary.LittleEndian and binary.BigEndian.
type Engine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Little returns the little-endian engine, the byte order of every
// integer in the BCF format.
func Little() Engine {
	return binary.LittleEndian
}

// Big returns the big-endian engine.
func Big() Engine {
	return binary.BigEndian
}

// Native returns the byte order of the host, determined by inspecting a
// fixed integer value in memory.
func Native() binary.ByteOrder {
	var i uint16 = 0x0100

	// For a little-endian host the LSB (0x00) sits at the lowest address.
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittle reports whether the host is little-endian.
func IsNativeLittle() bool {
	return Native() == binary.LittleEndian
}

// Uint16 decodes a little-endian 16-bit unsigned integer from b.
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// Uint32 decodes a little-endian 32-bit unsigned integer from b.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// Uint64 decodes a little-endian 64-bit field from b, assembling only the
// low 40 bits and zero-filling the top 24. Values above 2^40-1 never
// occur in the BCF format, so the high bytes carry no information.
func Uint64(b []byte) uint64 {
	_ = b[7] // the field is still 8 bytes wide on disk
	return uint64(b[0]) | uint64(b[1])<<8 | uint64(b[2])<<16 |
		uint64(b[3])<<24 | uint64(b[4])<<32
}
