package bcf

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spectralio/bcf/errs"
)

// EDXSpectrum is the sum EDS spectrum of one hypermap: the accumulated
// spectrum of all pixels, plus the energy calibration and detector
// parameters the depth estimates need.
type EDXSpectrum struct {
	// CalibAbs and CalibLin map channel index i to energy
	// CalibAbs + CalibLin*i, in keV.
	CalibAbs float64
	CalibLin float64

	// ChannelCount is the recorded channel count.
	ChannelCount int

	// Amplification is the hardware amplification; Amplification/1000
	// gives the detector's energy range in kV.
	Amplification float64

	// PrimaryEnergy is the primary beam energy in keV.
	PrimaryEnergy float64

	// ElevationAngle is the detector elevation angle in degrees.
	ElevationAngle float64

	// DetectorType names the detector hardware.
	DetectorType string

	// Data holds the accumulated counts per channel.
	Data []uint64
}

// parseEDXSpectrum parses a TRTSpectrum ClassInstance node.
func parseEDXSpectrum(node *xmlNode) (*EDXSpectrum, error) {
	s := &EDXSpectrum{}

	if headered := node.child("TRTHeaderedClass"); headered != nil {
		if hw := headered.classInstance("TRTSpectrumHardwareHeader"); hw != nil {
			s.Amplification, _ = strconv.ParseFloat(hw.childText("Amplification"), 64)
		}
		if det := headered.classInstance("TRTDetectorHeader"); det != nil {
			s.DetectorType = det.childText("Type")
		}
		if esma := headered.classInstance("TRTESMAHeader"); esma != nil {
			s.PrimaryEnergy, _ = strconv.ParseFloat(esma.childText("PrimaryEnergy"), 64)
			s.ElevationAngle, _ = strconv.ParseFloat(esma.childText("ElevationAngle"), 64)
		}
	}

	header := node.classInstance("TRTSpectrumHeader")
	if header == nil {
		return nil, fmt.Errorf("%w: no TRTSpectrumHeader element", errs.ErrMalformedHeader)
	}
	s.CalibAbs, _ = strconv.ParseFloat(header.childText("CalibAbs"), 64)
	s.CalibLin, _ = strconv.ParseFloat(header.childText("CalibLin"), 64)
	s.ChannelCount, _ = strconv.Atoi(header.childText("ChannelCount"))

	channels := node.childText("Channels")
	if channels == "" {
		return nil, fmt.Errorf("%w: no Channels element", errs.ErrMalformedHeader)
	}
	parts := strings.Split(channels, ",")
	s.Data = make([]uint64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad channel count %q", errs.ErrMalformedHeader, p)
		}
		s.Data = append(s.Data, v)
	}

	return s, nil
}

// Energy returns the energy of channel i in keV.
func (s *EDXSpectrum) Energy(i int) float64 {
	return s.CalibAbs + s.CalibLin*float64(i)
}

// EnergyToChannel converts an energy in keV to the nearest channel
// index.
func (s *EDXSpectrum) EnergyToChannel(keV float64) int {
	return int(math.Round((keV - s.CalibAbs) / s.CalibLin))
}
