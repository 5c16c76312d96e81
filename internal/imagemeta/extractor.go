// Package imagemeta reads descriptive attributes and optional GPS
// coordinates from image files. It is purely local: no network calls, no
// full pixel decode for attribute extraction.
package imagemeta

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	// Container-format decoders for image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnreadableImage is returned when a file cannot be parsed as a supported
// image container.
var ErrUnreadableImage = errors.New("imagemeta: unreadable image")

// supportedExtensions mirrors the upload formats the pipeline accepts.
var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"}

// Attributes are the descriptive file properties captured at ingestion time.
type Attributes struct {
	FileName string
	FileSize int64
	Width    int
	Height   int
	Format   string
}

// IsSupported reports whether the path carries a supported image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range supportedExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// Extract reads file attributes and, when present, GPS coordinates.
//
// Dimensions come from the container header via image.DecodeConfig, so large
// files are never fully decoded. A missing or malformed EXIF block yields nil
// coordinates, not an error: absence of a geotag is a normal case.
func Extract(path string) (Attributes, *GPS, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attributes{}, nil, fmt.Errorf("imagemeta: stat %s: %w", path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return Attributes{}, nil, fmt.Errorf("imagemeta: open %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return Attributes{}, nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}

	attrs := Attributes{
		FileName: filepath.Base(path),
		FileSize: info.Size(),
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   strings.ToUpper(format),
	}

	return attrs, readGPS(path), nil
}
