package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Intake metrics
var (
	IntakeFilesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_intake_files_total",
			Help: "Files seen by the intake pipeline by outcome",
		},
		[]string{"outcome"}, // accepted, invalid_type, too_large, preview_failed
	)

	IntakeBatchesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sku_renamer_intake_batches_rejected_total",
			Help: "Upload batches rejected whole because they would exceed the image limit",
		},
	)

	IntakeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_intake_duration_seconds",
			Help:    "Time to process one upload batch",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	IntakeWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_intake_workers",
			Help: "Number of parallel intake workers",
		},
	)
)

// Thumbnail metrics
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_thumbnail_generations_total",
			Help: "Total number of preview generations",
		},
		[]string{"source", "status"},
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_thumbnail_generation_duration_seconds",
			Help:    "Preview generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	ThumbnailRawSegments = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_thumbnail_raw_segments",
			Help:    "Embedded JPEG candidates found per RAW file",
			Buckets: []float64{0, 1, 2, 3, 4, 6, 8, 12},
		},
	)

	ThumbnailRawCandidateFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sku_renamer_thumbnail_raw_candidate_failures_total",
			Help: "Embedded JPEG candidates that failed to decode",
		},
	)
)

// Batch metrics
var (
	BatchImages = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sku_renamer_batch_images",
			Help: "Images currently in the batch by descriptor state",
		},
		[]string{"state"}, // assigned, unassigned
	)

	BatchBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_batch_bytes",
			Help: "Total size of original files held in the batch",
		},
	)

	ExportInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_export_in_progress",
			Help: "1 while an export holds the batch",
		},
	)
)

// Export metrics
var (
	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_exports_total",
			Help: "Export attempts by status",
		},
		[]string{"status"}, // success, invalid, error, busy
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_export_duration_seconds",
			Help:    "Time to build an archive",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ExportArchiveBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sku_renamer_export_archive_bytes",
			Help:    "Size of built archives in bytes",
			Buckets: prometheus.ExponentialBuckets(1<<20, 2, 10),
		},
	)

	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_publish_total",
			Help: "Archive uploads to object storage by status",
		},
		[]string{"status"},
	)
)

// Resource metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_memory_usage_ratio",
			Help: "Heap allocation as a fraction of the memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sku_renamer_memory_paused",
			Help: "1 while intake is paused for memory pressure",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sku_renamer_memory_gc_pauses_total",
			Help: "Times intake was paused and a GC forced",
		},
	)

	FilesystemRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_filesystem_retries_total",
			Help: "Retried filesystem operations by outcome",
		},
		[]string{"operation", "outcome"}, // stat/open, retry/success/failure
	)

	StreamWritesAborted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sku_renamer_stream_writes_aborted_total",
			Help: "Response bodies that were not fully delivered",
		},
		[]string{"reason"}, // timeout, client_gone, error
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sku_renamer_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
