package bcf

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/spectralio/bcf/endian"
	"github.com/spectralio/bcf/errs"
)

// Image is the 16-bit imagery recorded alongside a hypermap. A file can
// carry several planes, one per imaging detector (BSE, SE, ARGUS, ...).
type Image struct {
	// Width and Height are the raster size in pixels. They match the
	// hypermap raster.
	Width  uint32
	Height uint32

	// Planes holds one image per recorded detector. All-zero planes
	// are dropped.
	Planes []ImagePlane
}

// ImagePlane is a single 16-bit image, row-major.
type ImagePlane struct {
	// Description names the detector the plane was recorded with.
	Description string

	// Data holds Width*Height pixel values, row-major.
	Data []uint16
}

// parseImage parses a TRTImageData node: width, height, and PlaneN
// children whose Data elements hold base64-encoded little-endian uint16
// rasters.
func parseImage(node *xmlNode) (*Image, error) {
	width, err := strconv.ParseUint(node.childText("Width"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad image width", errs.ErrMalformedHeader)
	}
	height, err := strconv.ParseUint(node.childText("Height"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: bad image height", errs.ErrMalformedHeader)
	}
	planeCount, _ := strconv.Atoi(node.childText("PlaneCount"))

	image := &Image{
		Width:  uint32(width),
		Height: uint32(height),
	}

	for p := range planeCount {
		plane := node.child("Plane" + strconv.Itoa(p))
		if plane == nil {
			continue
		}
		// Exported headers wrap the base64 text; the decoder rejects
		// interior whitespace.
		encoded := strings.Join(strings.Fields(plane.childText("Data")), "")
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, fmt.Errorf("%w: plane %d data: %v", errs.ErrMalformedHeader, p, err)
		}
		if len(raw) != int(width)*int(height)*2 {
			return nil, fmt.Errorf("%w: plane %d holds %d bytes for %dx%d raster",
				errs.ErrMalformedHeader, p, len(raw), width, height)
		}

		data := make([]uint16, len(raw)/2)
		nonZero := false
		for i := range data {
			data[i] = endian.Uint16(raw[i*2:])
			if data[i] != 0 {
				nonZero = true
			}
		}
		if !nonZero {
			continue
		}

		image.Planes = append(image.Planes, ImagePlane{
			Description: plane.childText("Description"),
			Data:        data,
		})
	}

	return image, nil
}
