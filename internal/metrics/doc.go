// Package metrics exposes the ingestion and search instruments of the
// service over a Prometheus /metrics endpoint.
//
// Every process holds its own isolated registry. Metrics are wrapped with a
// constant service label so multiple deployments can share one Prometheus
// cluster without name collisions.
//
// The built-in instruments cover images ingested per final status, failures
// per pipeline stage, stage and search latencies, and per-collection point
// counts. Additional instruments can be registered at runtime through
// CreateCounter and CreateHistogram.
package metrics
