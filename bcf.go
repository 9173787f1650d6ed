// Package bcf reads Bruker composite files (bcf), the format Bruker's
// Esprit software uses to store EDS hypermaps together with 16-bit
// SEM/TEM imagery and acquisition metadata.
//
// A bcf file is an SFS container (see the sfs package) holding an XML
// header and one or more packed spectral maps. This package ties the
// pieces together: it opens the container, parses the header, and
// decodes hypermaps through the hypermap package.
//
// # Basic Usage
//
//	reader, err := bcf.Open("sample.bcf")
//	if err != nil {
//	    return err
//	}
//	defer reader.Close()
//
//	cube, err := reader.Hypermap(0,
//	    hypermap.WithDownsample(2),
//	    hypermap.WithCutoffEnergy(10.0))
//	if err != nil {
//	    return err
//	}
//	depth, width, height := cube.Dims()
//
// Decoded cubes can be cached with the blob package to avoid re-parsing
// the container.
//
// Writing bcf files is not supported.
package bcf

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
	"github.com/spectralio/bcf/hypermap"
	"github.com/spectralio/bcf/sfs"
)

const (
	databaseDir    = "EDSDatabase"
	headerDataPath = databaseDir + "/HeaderData"
	spectrumPrefix = "SpectrumData"
)

// Reader reads one bcf file: its metadata header and its hypermaps.
type Reader struct {
	sfs     *sfs.Reader
	header  *Header
	indexes []int
	logger  *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used for diagnostics while opening and
// decoding. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		r.logger = logger
	}
}

// Open opens the bcf file at path and parses its header.
func Open(path string, opts ...Option) (*Reader, error) {
	r := &Reader{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(r)
	}

	container, err := sfs.Open(path, r.logger)
	if err != nil {
		return nil, err
	}
	r.sfs = container

	if err := r.parse(); err != nil {
		container.Close()
		return nil, err
	}

	return r, nil
}

func (r *Reader) parse() error {
	entries, err := r.sfs.List(databaseDir)
	if err != nil {
		return fmt.Errorf("%w: no %s directory", errs.ErrMalformedHeader, databaseDir)
	}
	for _, name := range entries {
		if !strings.HasPrefix(name, spectrumPrefix) {
			continue
		}
		index, err := strconv.Atoi(strings.TrimPrefix(name, spectrumPrefix))
		if err != nil {
			continue
		}
		r.indexes = append(r.indexes, index)
	}
	slices.Sort(r.indexes)
	if len(r.indexes) == 0 {
		return fmt.Errorf("%w: no %s entries", errs.ErrMalformedHeader, spectrumPrefix)
	}

	headerItem, err := r.sfs.File(headerDataPath)
	if err != nil {
		return err
	}
	headerXML, err := headerItem.ReadAll()
	if err != nil {
		return fmt.Errorf("failed to read header data: %w", err)
	}

	r.header, err = ParseHeader(headerXML, r.indexes)
	if err != nil {
		return err
	}
	r.logger.Debug("parsed bcf header",
		"name", r.header.Name, "version", r.header.FileVersion, "hypermaps", len(r.indexes))

	return nil
}

// Close closes the underlying container.
func (r *Reader) Close() error {
	return r.sfs.Close()
}

// Header returns the parsed metadata header.
func (r *Reader) Header() *Header {
	return r.header
}

// Indexes returns the hypermap indexes present in the file, in
// ascending order. Version 1 files carry a single index.
func (r *Reader) Indexes() []int {
	return r.indexes
}

// ChannelAt converts an energy in keV to a channel index of the given
// hypermap. Hypermap decodes can clip at an energy directly with
// hypermap.WithCutoffEnergy; this helper serves callers that need the
// channel number itself. It returns 0 when the index is unknown.
func (r *Reader) ChannelAt(index int, keV float64) int {
	spectrum, err := r.header.Spectrum(index)
	if err != nil {
		return 0
	}

	return spectrum.EnergyToChannel(keV)
}

// Hypermap decodes the hypermap at the given index into a dense cube.
// See hypermap.Parse for the available options.
func (r *Reader) Hypermap(index int, opts ...hypermap.Option) (hypermap.Map, error) {
	container, err := r.container(index)
	if err != nil {
		return nil, err
	}

	return hypermap.Parse(container, opts...)
}

// HypermapBands decodes the hypermap at the given index lazily, one row
// band per yield. See hypermap.ParseBands for the band shape contract.
func (r *Reader) HypermapBands(index int, heights []int, opts ...hypermap.Option) (iter.Seq2[hypermap.Map, error], error) {
	container, err := r.container(index)
	if err != nil {
		return nil, err
	}

	return hypermap.ParseBands(container, heights, opts...)
}

func (r *Reader) container(index int) (*container, error) {
	if _, err := r.header.Spectrum(index); err != nil {
		return nil, err
	}
	item, err := r.sfs.File(databaseDir + "/" + spectrumPrefix + strconv.Itoa(index))
	if err != nil {
		return nil, err
	}

	return &container{item: item, header: r.header, index: index}, nil
}

// container adapts one spectrum-data item plus the parsed header to the
// hypermap decoder's collaborator contract.
type container struct {
	item   *sfs.Item
	header *Header
	index  int
}

var (
	_ hypermap.Container        = (*container)(nil)
	_ hypermap.EnergyCalibrated = (*container)(nil)
)

func (c *container) SpectrumStream() (hypermap.BlockSource, uint32, uint32, error) {
	return c.item.Blocks()
}

func (c *container) ChannelAt(keV float64) int {
	spectrum, err := c.header.Spectrum(c.index)
	if err != nil {
		return 0
	}

	return spectrum.EnergyToChannel(keV)
}

func (c *container) EstimateChannels() uint32 {
	channels, err := c.header.EstimateChannels(c.index)
	if err != nil || channels <= 0 {
		return uint32(c.header.ChannelCount)
	}

	return uint32(channels)
}

func (c *container) EstimateCountWidth(downsample int) format.CountWidth {
	width, err := c.header.EstimateCountWidth(c.index, downsample)
	if err != nil {
		return format.Count32
	}

	return width
}

func (c *container) ImageSize() (width, height uint32) {
	if c.header.Image == nil {
		return 0, 0
	}

	return c.header.Image.Width, c.header.Image.Height
}
