/*
Package streaming delivers large response bodies, such as export archives,
with per-chunk write deadlines.

The HTTP server's WriteTimeout covers the whole response. An archive of
eleven RAW files can be several hundred megabytes, which a slow but healthy
client cannot download within any fixed limit that also protects against
stalled connections. TimeoutWriter instead sets a fresh deadline before every
chunk through http.ResponseController:

	w.Header().Set("Content-Type", "application/zip")
	err := streaming.StreamWithTimeout(r.Context(), w, bytes.NewReader(data),
		streaming.DefaultTimeoutWriterConfig())

Errors distinguish a stalled client (ErrWriteTimeout) from one that went away
(ErrClientGone). Both are counted in sku_renamer_stream_writes_aborted_total.

Writers that do not support deadlines, such as httptest.ResponseRecorder, are
written to in chunks without them.
*/
package streaming
