package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, outcome := range []string{"accepted", "invalid_type", "too_large", "preview_failed"} {
		IntakeFilesTotal.WithLabelValues(outcome)
	}

	for _, source := range []string{"image", "raw"} {
		for _, status := range []string{"success", "placeholder", "error"} {
			ThumbnailGenerationsTotal.WithLabelValues(source, status)
		}
		ThumbnailGenerationDuration.WithLabelValues(source)
	}

	for _, state := range []string{"assigned", "unassigned"} {
		BatchImages.WithLabelValues(state)
	}

	for _, status := range []string{"success", "invalid", "error", "busy"} {
		ExportsTotal.WithLabelValues(status)
	}

	for _, status := range []string{"success", "error"} {
		PublishTotal.WithLabelValues(status)
	}

	for _, op := range []string{"stat", "open"} {
		for _, outcome := range []string{"retry", "success", "failure"} {
			FilesystemRetries.WithLabelValues(op, outcome)
		}
	}

	for _, reason := range []string{"timeout", "client_gone", "error"} {
		StreamWritesAborted.WithLabelValues(reason)
	}
}
