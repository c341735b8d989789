// Package metrics provides Prometheus instrumentation for sku-renamer.
//
// All metrics are prefixed with "sku_renamer_" and registered on the default
// registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//   - HTTPRequestsTotal: Counter of requests by method, path and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of requests being processed
//
// ## Intake Metrics
//   - IntakeFilesTotal: Counter of files by outcome (accepted, invalid_type, too_large, preview_failed)
//   - IntakeBatchesRejected: Counter of upload batches refused for exceeding the image limit
//   - IntakeDuration: Histogram of batch processing time
//   - IntakeWorkers: Gauge of the intake worker pool size
//
// ## Thumbnail Metrics
//   - ThumbnailGenerationsTotal: Counter by source (image/raw) and status (success/placeholder/error)
//   - ThumbnailGenerationDuration: Histogram by source
//   - ThumbnailRawSegments: Histogram of embedded JPEG candidates per RAW file
//   - ThumbnailRawCandidateFailures: Counter of candidates that failed to decode
//
// ## Batch and Export Metrics
//   - BatchImages, BatchBytes: Gauges refreshed by the [Collector]
//   - ExportsTotal: Counter of export attempts by status (success/invalid/error/busy)
//   - ExportDuration, ExportArchiveBytes: Histograms of archive builds
//   - PublishTotal: Counter of object storage uploads by status
//
// # Usage
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// Example PromQL, share of RAW files that end up with a placeholder:
//
//	sum(rate(sku_renamer_thumbnail_generations_total{source="raw",status="placeholder"}[1h])) /
//	sum(rate(sku_renamer_thumbnail_generations_total{source="raw"}[1h]))
package metrics
