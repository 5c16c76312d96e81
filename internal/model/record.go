package model

import (
	"time"

	"github.com/google/uuid"
)

// SourceType records how an image entered the system.
type SourceType string

const (
	SourceUpload SourceType = "upload"
	SourceBulk   SourceType = "bulk"
)

// CaptionDegradedModel marks records whose caption response could not be
// parsed: tags and description are empty and must not be trusted downstream.
const CaptionDegradedModel = "caption-degraded"

// GPSCoordinates is a decimal-degrees latitude/longitude pair.
type GPSCoordinates struct {
	Latitude  float64
	Longitude float64
}

// ImageRecord is the canonical unit stored per ingested image.
//
// A record is written once and never updated in place; re-ingesting the same
// path produces a new ImageID. The same record (vector included) is stored in
// every metric collection, so the collections stay projections of one logical
// dataset.
type ImageRecord struct {
	ImageID  string
	FilePath string
	FileName string
	FileSize int64
	Width    int
	Height   int
	Format   string

	GPS          *GPSCoordinates // nil when the source has no geotag
	LocationName string          // empty when GPS is nil or lookup failed

	AITags        []string
	AIDescription string
	ModelUsed     string

	Embedding    []float32
	EmbeddingDim int

	ProcessingTimestamp time.Time
	SourceType          SourceType
}

// NewImageID returns a fresh opaque record identifier.
func NewImageID() string {
	return uuid.NewString()
}
