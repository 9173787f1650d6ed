// Package hypermap implements the streaming decoder for Bruker's packed
// hyperspectral map stream: the per-row pixel list starting at offset
// 0x1A0 of the SpectrumData file, with its two spectrum encodings: the
// instruction-driven "bunch" packing and the 12-bit pulse list.
//
// The decoder is single-pass and forward-only. It materialises the
// stream into a dense three-dimensional cube of unsigned counts indexed
// by (channel, x, y), optionally downsampling the spatial grid by an
// integer factor and clipping the channel axis at a cutoff.
//
// The container that supplies the block stream and the geometry
// estimates is abstracted behind the Container interface; the bcf root
// package provides the SFS-backed implementation.
package hypermap
