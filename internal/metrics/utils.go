package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementIngested counts a finished ingestion with its final status,
// e.g. "success", "degraded" or "failed".
func (m *Metrics) IncrementIngested(status string) {
	m.imagesIngested.WithLabelValues(status).Inc()
}

// IncrementStageFailure counts a failure in a named pipeline stage.
func (m *Metrics) IncrementStageFailure(stage string) {
	m.stageFailures.WithLabelValues(stage).Inc()
}

// RecordIngestDuration records the elapsed time of a pipeline stage.
// Example: defer metrics.RecordIngestDuration(time.Now(), "embed")
func (m *Metrics) RecordIngestDuration(start time.Time, stage string) {
	m.ingestDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// IncrementSearches counts a served search by kind ("text" or "image") and status.
func (m *Metrics) IncrementSearches(kind, status string) {
	m.searchesTotal.WithLabelValues(kind, status).Inc()
}

// RecordSearchDuration records the end-to-end latency of a search.
func (m *Metrics) RecordSearchDuration(start time.Time, kind string) {
	m.searchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

// SetCollectionPoints reports the current point count of a collection.
func (m *Metrics) SetCollectionPoints(collection string, points float64) {
	m.collectionSizes.WithLabelValues(collection).Set(points)
}

func createCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}

func createHistogramVec(name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    name,
			Help:    help,
			Buckets: buckets,
		},
		labels,
	)
}

func createGaugeVec(name, help string, labels []string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: name,
			Help: help,
		},
		labels,
	)
}
