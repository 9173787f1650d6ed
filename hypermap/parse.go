package hypermap

import (
	"fmt"
	"iter"

	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

// Parse decodes the whole map of c into a dense cube of shape
// (D, ceil(W/s), ceil(H/s)), where D is the cutoff channel (or the
// container's estimate when no cutoff option is given) and s the
// downsample factor. The count width is chosen from the container's
// estimate; a 64-bit estimate fails with ErrUnsupportedCountWidth.
func Parse(c Container, opts ...Option) (Map, error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	depth, err := resolveDepth(c, cfg)
	if err != nil {
		return nil, err
	}

	switch width := c.EstimateCountWidth(cfg.downsample); width {
	case format.Count8:
		return parseMap[uint8](c, cfg, depth)
	case format.Count16:
		return parseMap[uint16](c, cfg, depth)
	case format.Count32:
		return parseMap[uint32](c, cfg, depth)
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCountWidth, width)
	}
}

// ParseAs decodes the whole map of c with a caller-chosen count width,
// bypassing the container's estimate. The caller is responsible for
// picking a width the accumulated counts cannot overflow.
func ParseAs[T Counts](c Container, opts ...Option) (*Cube[T], error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	depth, err := resolveDepth(c, cfg)
	if err != nil {
		return nil, err
	}

	return parseMap[T](c, cfg, depth)
}

func parseMap[T Counts](c Container, cfg *config, depth int) (*Cube[T], error) {
	width, height := c.ImageSize()

	r, err := openMapReader(c)
	if err != nil {
		return nil, err
	}
	defer r.release()

	s := cfg.downsample
	cube := NewCube[T](depth, ceilDiv(int(width), s), ceilDiv(int(height), s))
	lt := &legacyTag{logger: cfg.logger}
	if err := walkMap(r, cube, int(height), s, lt); err != nil {
		return nil, err
	}

	return cube, nil
}

// ParseBands decodes the map of c lazily, one row band per yield. Band
// i covers heights[i] pixel rows and is returned as a cube of shape
// (D, W, heights[i]); the width axis is kept full, and the caller is
// responsible for passing heights quantised to the downsample factor.
// The heights must sum to at most the map height.
//
// The block reader carries over between yields, so consuming band i+1
// resumes exactly where band i stopped. When a band fails mid-decode,
// the sequence yields a nil Map with the error and stops; earlier bands
// remain valid.
func ParseBands(c Container, heights []int, opts ...Option) (iter.Seq2[Map, error], error) {
	cfg, err := buildConfig(opts)
	if err != nil {
		return nil, err
	}
	depth, err := resolveDepth(c, cfg)
	if err != nil {
		return nil, err
	}

	switch width := c.EstimateCountWidth(cfg.downsample); width {
	case format.Count8:
		return parseBands[uint8](c, heights, cfg, depth), nil
	case format.Count16:
		return parseBands[uint16](c, heights, cfg, depth), nil
	case format.Count32:
		return parseBands[uint32](c, heights, cfg, depth), nil
	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedCountWidth, width)
	}
}

func parseBands[T Counts](c Container, heights []int, cfg *config, depth int) iter.Seq2[Map, error] {
	return func(yield func(Map, error) bool) {
		width, _ := c.ImageSize()

		r, err := openMapReader(c)
		if err != nil {
			yield(nil, err)
			return
		}
		defer r.release()

		lt := &legacyTag{logger: cfg.logger}
		for _, bandHeight := range heights {
			cube := NewCube[T](depth, int(width), bandHeight)
			if err := walkMap(r, cube, bandHeight, cfg.downsample, lt); err != nil {
				yield(nil, err)
				return
			}
			if !yield(cube, nil) {
				return
			}
		}
	}
}

// resolveDepth turns the cutoff options into the cube's channel depth:
// an energy cutoff through the container's calibration, a channel
// cutoff as given, and otherwise the container's estimate.
func resolveDepth(c Container, cfg *config) (int, error) {
	if cfg.hasCutoffEnergy {
		cal, ok := c.(EnergyCalibrated)
		if !ok {
			return 0, fmt.Errorf("%w: cannot resolve cutoff at %g keV",
				errs.ErrNoCalibration, cfg.cutoffEnergy)
		}
		depth := cal.ChannelAt(cfg.cutoffEnergy)
		if depth <= 0 {
			return 0, fmt.Errorf("%w: %g keV maps to channel %d",
				errs.ErrInvalidCutoff, cfg.cutoffEnergy, depth)
		}

		return depth, nil
	}
	if cfg.cutoff > 0 {
		return cfg.cutoff, nil
	}

	return int(c.EstimateChannels()), nil
}

// openMapReader opens the spectrum stream and positions the reader at
// the start of the map data. The prologue normally fits the first
// block, so a plain seek lands on it; only block sizes smaller than the
// prologue need the fetching skip.
func openMapReader(c Container) (*blockReader, error) {
	src, _, _, err := c.SpectrumStream()
	if err != nil {
		return nil, err
	}

	r, err := newBlockReader(src)
	if err != nil {
		return nil, err
	}

	if r.cur.Len() >= mapDataOffset {
		err = r.seek(mapDataOffset)
	} else {
		err = r.skip(mapDataOffset)
	}
	if err != nil {
		r.release()
		return nil, err
	}

	return r, nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
