package hypermap

import (
	"github.com/spectralio/bcf/format"
)

// BlockSource supplies the spectrum stream as a finite lazy sequence of
// byte blocks. Every block but possibly the last has the same nominal
// size. Blocks are consumed strictly in order.
type BlockSource interface {
	// NextBlock returns the next block of the sequence, or io.EOF after
	// the last block. The returned slice is owned by the caller until
	// the next NextBlock call.
	NextBlock() ([]byte, error)
}

// Container is the contract the decoder needs from the surrounding BCF
// file: the spectrum block stream plus the geometry and depth estimates
// taken from the hypermap header.
type Container interface {
	// SpectrumStream returns the block source for the hypermap's
	// spectrum data, the nominal block size, and the total number of
	// blocks.
	SpectrumStream() (src BlockSource, blockSize uint32, totalBlocks uint32, err error)

	// EstimateChannels returns the default channel depth used when the
	// caller supplies no cutoff.
	EstimateChannels() uint32

	// EstimateCountWidth returns the suggested count element width for
	// the given downsample factor, derived from the sum spectrum.
	EstimateCountWidth(downsample int) format.CountWidth

	// ImageSize returns the raster width and height in pixels.
	ImageSize() (width, height uint32)
}

// EnergyCalibrated is implemented by containers that can convert an
// energy to a channel index through their spectrum calibration. The
// WithCutoffEnergy option requires it.
type EnergyCalibrated interface {
	// ChannelAt returns the channel index the given energy in keV maps
	// to.
	ChannelAt(keV float64) int
}

// mapDataOffset is the absolute offset of the map data from the start of
// the logical spectrum stream. The bytes before it are a fixed header
// prologue the decoder skips.
const mapDataOffset = 0x1A0
