package model

import (
	"sort"
	"time"
)

// Metric names a distance function and its backing collection.
type Metric string

const (
	MetricCosine    Metric = "cosine"
	MetricEuclid    Metric = "euclid"
	MetricDot       Metric = "dot"
	MetricManhattan Metric = "manhattan"
)

// AllMetrics lists every metric in collection order. Loop over this rather
// than spelling out the four collections at call sites.
func AllMetrics() []Metric {
	return []Metric{MetricCosine, MetricEuclid, MetricDot, MetricManhattan}
}

// QueryResult is one retrieval hit. Scores are native to the metric that
// produced them and are not comparable across metrics.
type QueryResult struct {
	ImageID string
	Record  ImageRecord
	Score   float32
	Metric  Metric
}

// SearchResponse groups per-metric ranked result lists. Metrics that failed
// during the fan-out are listed in Degraded instead of being silently absent.
type SearchResponse struct {
	ByMetric map[Metric][]QueryResult
	Degraded []Metric
}

// BatchFailure describes one failed item of a batch run.
type BatchFailure struct {
	Path   string
	Stage  string
	Reason string
}

// BatchReport summarizes a bulk ingestion run. Failures are sorted by path so
// reports are deterministic for a fixed directory snapshot regardless of
// worker completion order.
type BatchReport struct {
	Succeeded []string
	Failed    []BatchFailure
	Started   time.Time
	Finished  time.Time
}

// Sort orders both result lists by path / id for deterministic reporting.
func (r *BatchReport) Sort() {
	sort.Strings(r.Succeeded)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Path < r.Failed[j].Path })
}
