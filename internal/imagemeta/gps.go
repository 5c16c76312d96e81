package imagemeta

import (
	"os"

	"github.com/rwcarlsen/goexif/exif"
)

// GPS is a decimal-degrees coordinate pair read from an EXIF geotag.
type GPS struct {
	Latitude  float64
	Longitude float64
}

// readGPS extracts GPS coordinates from the file's EXIF block.
//
// Every failure mode (no EXIF segment, no GPS IFD, malformed rationals)
// returns nil. Geotag absence is not an error anywhere in the pipeline.
func readGPS(path string) *GPS {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	meta, err := exif.Decode(f)
	if err != nil {
		return nil
	}

	lat, lon, err := meta.LatLong()
	if err != nil {
		return nil
	}

	return &GPS{Latitude: lat, Longitude: lon}
}
