// Package ingest orchestrates the image ingestion pipeline.
//
// A single ingestion authorizes the path against the configured directory
// allow-list, extracts file and EXIF metadata, captions the image with a
// vision model, embeds it, and writes the finished record to every metric
// collection. Optional integrations enrich the result afterwards: the
// original bytes go to the object archive, an event is published, and the
// outcome lands in the audit ledger.
//
// Transient captioning and embedding failures are retried with a doubling
// backoff. An unparsable caption does not fail the image: it is stored
// without tags and marked degraded so it can be re-captioned later. All
// other stage failures abort the image before anything is written.
//
// Directory ingestion walks the tree recursively and runs the same pipeline
// per file under a bounded worker pool, collecting per-file failures into a
// report instead of aborting the batch. Cancelling the batch context stops
// new files from starting; files already mid-pipeline run to completion so
// their writes are never torn down halfway.
package ingest
