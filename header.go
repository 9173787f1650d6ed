package bcf

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spectralio/bcf/errs"
	"github.com/spectralio/bcf/format"
)

// Header holds the hypermap metadata parsed from the container's
// EDSDatabase/HeaderData XML: acquisition info, the SEM imagery, and
// the sum EDS spectrum of every recorded hypermap.
type Header struct {
	// Name is the hypermap name, or "Undefined" when the file carries
	// none.
	Name string

	// AcquiredAt is the acquisition date and time.
	AcquiredAt time.Time

	// FileVersion is the bcf file version (1 or 2; version 2 files may
	// stack several hypermaps).
	FileVersion int

	// ChannelCount is the mapping channel count recorded in the header.
	ChannelCount int

	// LineCounter holds the per-line acquisition counters.
	LineCounter []uint32

	// HV is the acceleration voltage in kV, when the microscope
	// metadata carries it.
	HV float64

	// XRes and YRes give the pixel size, in Units per pixel.
	XRes, YRes float64

	// Units is "µm" when the header carries a calibrated pixel size,
	// else "pix".
	Units string

	// Image is the SEM/TEM imagery recorded alongside the hypermap.
	Image *Image

	// Spectra maps hypermap indexes to their sum EDS spectra.
	Spectra map[int]*EDXSpectrum
}

// xmlNode is a generic element-tree node. The Bruker header nests
// ClassInstance elements distinguished by their Type attribute, which a
// static struct mapping cannot express.
type xmlNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []xmlNode  `xml:",any"`
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}

	return ""
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Nodes {
		if n.Nodes[i].XMLName.Local == name {
			return &n.Nodes[i]
		}
	}

	return nil
}

func (n *xmlNode) childText(name string) string {
	if c := n.child(name); c != nil {
		return strings.TrimSpace(c.Text)
	}

	return ""
}

// classInstance returns the first ClassInstance child of the given
// Type, or any-typed when typ is empty.
func (n *xmlNode) classInstance(typ string) *xmlNode {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local != "ClassInstance" {
			continue
		}
		if typ == "" || c.attr("Type") == typ {
			return c
		}
	}

	return nil
}

func (n *xmlNode) classInstances(typ string) []*xmlNode {
	var out []*xmlNode
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == "ClassInstance" && c.attr("Type") == typ {
			out = append(out, c)
		}
	}

	return out
}

// ParseHeader parses the HeaderData XML for the hypermaps listed in
// indexes.
func ParseHeader(data []byte, indexes []int) (*Header, error) {
	var doc xmlNode
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse hypermap header xml: %w", err)
	}

	root := &doc
	if root.XMLName.Local != "ClassInstance" || root.attr("Type") != "TRTSpectrumDatabase" {
		root = doc.classInstance("TRTSpectrumDatabase")
	}
	if root == nil {
		return nil, fmt.Errorf("%w: no TRTSpectrumDatabase element", errs.ErrMalformedHeader)
	}

	h := &Header{
		Name:    root.attr("Name"),
		Spectra: map[int]*EDXSpectrum{},
	}
	if h.Name == "" {
		h.Name = "Undefined"
	}

	if hd := root.child("Header"); hd != nil {
		stamp := hd.childText("Date") + " " + hd.childText("Time")
		if t, err := time.Parse("2.1.2006 15:04:05", stamp); err == nil {
			h.AcquiredAt = t
		}
		h.FileVersion, _ = strconv.Atoi(hd.childText("FileVersion"))
	}

	h.ChannelCount, _ = strconv.Atoi(root.childText("ChCount"))
	h.LineCounter = parseUint32List(root.childText("LineCounter"))

	h.parseMicroscope(root)

	imageNode := root.classInstance("TRTImageData")
	for _, n := range root.classInstances("TRTImageData") {
		if n.attr("Name") == "" {
			imageNode = n
		}
	}
	if imageNode != nil {
		image, err := parseImage(imageNode)
		if err != nil {
			return nil, err
		}
		h.Image = image
	}

	for _, index := range indexes {
		node := root.child("SpectrumData" + strconv.Itoa(index))
		if node == nil {
			continue
		}
		spectrumNode := node.classInstance("")
		if spectrumNode == nil {
			continue
		}
		spectrum, err := parseEDXSpectrum(spectrumNode)
		if err != nil {
			return nil, fmt.Errorf("spectrum data %d: %w", index, err)
		}
		h.Spectra[index] = spectrum
	}

	return h, nil
}

// parseMicroscope extracts the SEM column parameters: the acceleration
// voltage (which EstimateChannels uses) and the pixel size.
func (h *Header) parseMicroscope(root *xmlNode) {
	h.Units = "pix"
	h.XRes, h.YRes = 1.0, 1.0

	sem := root.classInstance("TRTSEMData")
	if sem == nil {
		return
	}

	h.HV, _ = strconv.ParseFloat(sem.childText("HV"), 64)
	if dx := sem.childText("DX"); dx != "" {
		h.XRes, _ = strconv.ParseFloat(dx, 64)
		h.YRes, _ = strconv.ParseFloat(sem.childText("DY"), 64)
		h.Units = "µm"
	}
}

// Spectrum returns the sum EDS spectrum of the given hypermap index.
func (h *Header) Spectrum(index int) (*EDXSpectrum, error) {
	spectrum, ok := h.Spectra[index]
	if !ok {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidIndex, index)
	}

	return spectrum, nil
}

// EstimateChannels estimates the minimal channel depth so no spectrum
// of any pixel is truncated: the full recorded depth when the detector
// range does not exceed the acceleration voltage, else the channel the
// acceleration voltage maps to.
func (h *Header) EstimateChannels(index int) (int, error) {
	spectrum, err := h.Spectrum(index)
	if err != nil {
		return 0, err
	}

	hvRange := spectrum.Amplification / 1000
	if h.HV >= hvRange {
		return len(spectrum.Data), nil
	}

	return spectrum.EnergyToChannel(h.HV), nil
}

// EstimateCountWidth estimates the count element width that cannot
// overflow, derived from the sum spectrum: its maximum divided over the
// raster, doubled for safety, scaled by the downsample area.
func (h *Header) EstimateCountWidth(index, downsample int) (format.CountWidth, error) {
	spectrum, err := h.Spectrum(index)
	if err != nil {
		return 0, err
	}
	if h.Image == nil || h.Image.Width == 0 || h.Image.Height == 0 {
		return 0, fmt.Errorf("%w: no image geometry", errs.ErrMalformedHeader)
	}

	var max uint64
	for _, v := range spectrum.Data {
		if v > max {
			max = v
		}
	}
	roof := max / uint64(h.Image.Width) / uint64(h.Image.Height) * 2 *
		uint64(downsample) * uint64(downsample)

	switch {
	case roof > 0xFFFFFFFF:
		return format.Count64, nil
	case roof > 0xFFFF:
		return format.Count32, nil
	case roof > 0xFF:
		return format.Count16, nil
	default:
		return format.Count8, nil
	}
}

func parseUint32List(text string) []uint32 {
	if text == "" {
		return nil
	}

	parts := strings.Split(text, ",")
	out := make([]uint32, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			continue
		}
		out = append(out, uint32(v))
	}

	return out
}
