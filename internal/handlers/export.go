package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/metrics"
	"sku-renamer/internal/publish"
	"sku-renamer/internal/rename"
	"sku-renamer/internal/streaming"
)

// Export validates the batch and returns the zip archive of renamed images.
// With ?publish=1 the archive is also uploaded to object storage. The batch is
// left untouched, so a failed export can be retried.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	wantPublish, _ := strconv.ParseBool(r.URL.Query().Get("publish"))
	if wantPublish && h.publisher == nil {
		writeJSONError(w, publish.ErrDisabled.Error(), http.StatusBadRequest)
		return
	}

	release, ok := h.store.TryStartProcessing()
	if !ok {
		metrics.ExportsTotal.WithLabelValues("busy").Inc()
		writeJSONError(w, "An export is already in progress", http.StatusConflict)
		return
	}
	defer release()

	sku, images := h.store.Snapshot()
	result := rename.ValidateBatch(images, sku)
	h.store.SetErrors(result.Errors)
	if !result.Valid {
		metrics.ExportsTotal.WithLabelValues("invalid").Inc()
		writeJSONCode(w, result, http.StatusUnprocessableEntity)
		return
	}

	start := time.Now()
	var buf bytes.Buffer
	manifest, err := h.builder.Build(&buf, images, sku)
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		logging.Error("Export for %s failed: %v", sku, err)
		writeJSONError(w, "Failed to create ZIP file", http.StatusInternalServerError)
		return
	}
	metrics.ExportDuration.Observe(time.Since(start).Seconds())
	metrics.ExportArchiveBytes.Observe(float64(manifest.Bytes))

	if wantPublish {
		loc, err := h.publisher.Publish(r.Context(), manifest.Name, buf.Bytes())
		if err != nil {
			metrics.ExportsTotal.WithLabelValues("error").Inc()
			logging.Error("Publishing %s failed: %v", manifest.Name, err)
			status := http.StatusBadGateway
			if errors.Is(err, publish.ErrDisabled) {
				status = http.StatusBadRequest
			}
			writeJSONError(w, "Failed to publish archive", status)
			return
		}
		w.Header().Set("X-Archive-Location", fmt.Sprintf("s3://%s/%s", loc.Bucket, loc.Key))
	}

	metrics.ExportsTotal.WithLabelValues("success").Inc()
	logging.Info("Exported %s: %d images in %v", manifest.Name, len(manifest.Entries), time.Since(start))

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", manifest.Name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if err := streaming.StreamWithTimeout(r.Context(), w, &buf, streaming.DefaultTimeoutWriterConfig()); err != nil {
		logging.Warn("failed to send %s: %v", manifest.Name, err)
	}
}
