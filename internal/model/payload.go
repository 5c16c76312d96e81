package model

import (
	"time"
)

// Payload converts the record into the JSON-serializable map stored alongside
// the vector in every collection. The vector itself is not part of the
// payload; it is the point's vector.
//
// gps_coordinates is a [lat, lon] two-element array and is omitted entirely
// when the record has no geotag, so "absent" and "0,0" stay distinguishable.
func (r *ImageRecord) Payload() map[string]any {
	payload := map[string]any{
		"image_id":             r.ImageID,
		"file_path":            r.FilePath,
		"file_name":            r.FileName,
		"file_size":            r.FileSize,
		"width":                r.Width,
		"height":               r.Height,
		"format":               r.Format,
		"processing_timestamp": r.ProcessingTimestamp.Format(time.RFC3339),
		"location_name":        r.LocationName,
		"ai_tags":              toAnySlice(r.AITags),
		"ai_description":       r.AIDescription,
		"model_used":           r.ModelUsed,
		"embedding_dim":        r.EmbeddingDim,
		"processed_at":         time.Now().UTC().Format(time.RFC3339),
		"source_type":          string(r.SourceType),
	}

	if r.GPS != nil {
		payload["gps_coordinates"] = []any{r.GPS.Latitude, r.GPS.Longitude}
	}

	return payload
}

// RecordFromPayload rebuilds the public record fields from a payload map as
// returned by a vector store query. The embedding vector is not part of the
// payload and stays empty.
//
// The map may contain int64/float64 numerics depending on the transport, so
// all numeric fields go through asInt64/asFloat64.
func RecordFromPayload(payload map[string]any) ImageRecord {
	rec := ImageRecord{
		ImageID:       asString(payload["image_id"]),
		FilePath:      asString(payload["file_path"]),
		FileName:      asString(payload["file_name"]),
		FileSize:      asInt64(payload["file_size"]),
		Width:         int(asInt64(payload["width"])),
		Height:        int(asInt64(payload["height"])),
		Format:        asString(payload["format"]),
		LocationName:  asString(payload["location_name"]),
		AIDescription: asString(payload["ai_description"]),
		ModelUsed:     asString(payload["model_used"]),
		EmbeddingDim:  int(asInt64(payload["embedding_dim"])),
		SourceType:    SourceType(asString(payload["source_type"])),
	}

	if ts, err := time.Parse(time.RFC3339, asString(payload["processing_timestamp"])); err == nil {
		rec.ProcessingTimestamp = ts
	}

	if tags, ok := payload["ai_tags"].([]any); ok {
		rec.AITags = make([]string, 0, len(tags))
		for _, t := range tags {
			rec.AITags = append(rec.AITags, asString(t))
		}
	}

	if coords, ok := payload["gps_coordinates"].([]any); ok && len(coords) == 2 {
		rec.GPS = &GPSCoordinates{
			Latitude:  asFloat64(coords[0]),
			Longitude: asFloat64(coords[1]),
		}
	}

	return rec
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return 0
	}
}

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	default:
		return 0
	}
}
