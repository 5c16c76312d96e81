package vectorstore

import (
	"fmt"

	qdrant "github.com/qdrant/go-client/qdrant"

	"picsema/internal/model"
)

// collectionName derives the deterministic collection name for a metric.
func collectionName(base string, m model.Metric) string {
	return fmt.Sprintf("%s_%s", base, m)
}

// distanceFor maps a metric onto Qdrant's distance function. Unknown metrics
// fall back to cosine, matching the collection bootstrap default.
func distanceFor(m model.Metric) qdrant.Distance {
	switch m {
	case model.MetricCosine:
		return qdrant.Distance_Cosine
	case model.MetricEuclid:
		return qdrant.Distance_Euclid
	case model.MetricDot:
		return qdrant.Distance_Dot
	case model.MetricManhattan:
		return qdrant.Distance_Manhattan
	default:
		return qdrant.Distance_Cosine
	}
}
