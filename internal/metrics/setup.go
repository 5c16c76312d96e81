package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus registry, the HTTP server that exposes it,
// and the counters and histograms tracked by the ingestion and search paths.
//
// Each process keeps its own isolated registry; all metrics carry a constant
// service label taken from the configuration.
type Metrics struct {
	// Server exposes the /metrics endpoint for Prometheus scraping.
	Server *http.Server

	// Registry is the isolated Prometheus registry for this service.
	Registry *prometheus.Registry

	imagesIngested  *prometheus.CounterVec
	stageFailures   *prometheus.CounterVec
	ingestDuration  *prometheus.HistogramVec
	searchesTotal   *prometheus.CounterVec
	searchDuration  *prometheus.HistogramVec
	collectionSizes *prometheus.GaugeVec
}

// NewMetrics sets up a dedicated registry, registers the ingestion and
// search instruments plus the optional default runtime collectors, and
// builds an HTTP server serving the /metrics endpoint.
//
// The server is not started here; RegisterMetricsLifecycle starts it when
// the Fx application boots.
func NewMetrics(cfg *Config) *Metrics {
	registry := prometheus.NewRegistry()

	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{Registry: registry}

	m.imagesIngested = createCounterVec(
		"images_ingested_total",
		"Total number of images that completed the ingestion pipeline, by final status",
		[]string{"status"},
	)
	m.stageFailures = createCounterVec(
		"ingest_stage_failures_total",
		"Ingestion failures by pipeline stage",
		[]string{"stage"},
	)
	m.ingestDuration = createHistogramVec(
		"ingest_duration_seconds",
		"Time spent in each ingestion stage",
		[]string{"stage"},
		prometheus.DefBuckets,
	)
	m.searchesTotal = createCounterVec(
		"searches_total",
		"Similarity searches served, by query kind and status",
		[]string{"kind", "status"},
	)
	m.searchDuration = createHistogramVec(
		"search_duration_seconds",
		"End-to-end similarity search latency",
		[]string{"kind"},
		prometheus.DefBuckets,
	)
	m.collectionSizes = createGaugeVec(
		"collection_points",
		"Number of points per metric collection",
		[]string{"collection"},
	)

	wrapped.MustRegister(
		m.imagesIngested,
		m.stageFailures,
		m.ingestDuration,
		m.searchesTotal,
		m.searchDuration,
		m.collectionSizes,
	)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}
	return m
}
