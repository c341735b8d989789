package streaming

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/metrics"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a chunk could not be delivered within
	// WriteTimeout, or the whole body not within MaxDuration.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the request context was canceled before
	// the body was delivered.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the writer was closed or its context
	// ended for a reason other than the client leaving.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig configures the timeout writer behavior
type TimeoutWriterConfig struct {
	// WriteTimeout bounds the delivery of a single chunk
	WriteTimeout time.Duration
	// MaxDuration is the absolute maximum streaming duration (0 = unlimited)
	MaxDuration time.Duration
	// ChunkSize is the size of chunks to write (0 = write as received)
	ChunkSize int
}

// DefaultTimeoutWriterConfig returns the settings used for archive downloads
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
		MaxDuration:  0,
		ChunkSize:    256 * 1024,
	}
}

// TimeoutWriter writes a response body in chunks, giving each chunk its own
// write deadline. A slow client can take as long as it needs overall, but a
// stalled one is cut off after WriteTimeout. It replaces the server's fixed
// WriteTimeout for the duration of the response.
type TimeoutWriter struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	ctx          context.Context
	config       TimeoutWriterConfig
	startTime    time.Time
	bytesWritten int64
	deadlines    bool
	closed       bool
}

// NewTimeoutWriter creates a new timeout-protected writer
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config TimeoutWriterConfig) *TimeoutWriter {
	return &TimeoutWriter{
		w:         w,
		rc:        http.NewResponseController(w),
		ctx:       ctx,
		config:    config,
		startTime: time.Now(),
		deadlines: config.WriteTimeout > 0,
	}
}

// Write implements io.Writer. It is not safe for concurrent use.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	if tw.closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if err := tw.ctx.Err(); err != nil {
			return total, tw.contextError()
		}
		if tw.config.MaxDuration > 0 && time.Since(tw.startTime) > tw.config.MaxDuration {
			return total, ErrWriteTimeout
		}

		chunk := p
		if tw.config.ChunkSize > 0 && len(chunk) > tw.config.ChunkSize {
			chunk = chunk[:tw.config.ChunkSize]
		}

		tw.extendDeadline()
		n, err := tw.w.Write(chunk)
		total += n
		tw.bytesWritten += int64(n)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				return total, fmt.Errorf("%w: %v", ErrWriteTimeout, err)
			}
			return total, err
		}
		p = p[len(chunk):]

		if err := tw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return total, err
		}
	}
	return total, nil
}

func (tw *TimeoutWriter) extendDeadline() {
	if !tw.deadlines {
		return
	}
	err := tw.rc.SetWriteDeadline(time.Now().Add(tw.config.WriteTimeout))
	if errors.Is(err, http.ErrNotSupported) {
		// Recorders and some wrappers cannot set deadlines; write without.
		tw.deadlines = false
	}
}

// contextError returns an appropriate error based on context state
func (tw *TimeoutWriter) contextError() error {
	if errors.Is(tw.ctx.Err(), context.Canceled) {
		return ErrClientGone
	}
	return ErrStreamCanceled
}

// Close clears the write deadline and rejects further writes
func (tw *TimeoutWriter) Close() error {
	if tw.closed {
		return nil
	}
	tw.closed = true
	if tw.deadlines {
		if err := tw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	return nil
}

// Stats returns streaming statistics
func (tw *TimeoutWriter) Stats() (bytesWritten int64, duration time.Duration) {
	return tw.bytesWritten, time.Since(tw.startTime)
}

// StreamWithTimeout copies r to the response through a TimeoutWriter.
// Headers must already be set; the status is written by the first chunk.
func StreamWithTimeout(ctx context.Context, w http.ResponseWriter, r io.Reader, config TimeoutWriterConfig) error {
	tw := NewTimeoutWriter(ctx, w, config)
	defer func() {
		if err := tw.Close(); err != nil {
			logging.Warn("Failed to close timeout writer: %v", err)
		}
	}()

	_, err := io.Copy(tw, r)

	bytesWritten, duration := tw.Stats()
	if err != nil {
		metrics.StreamWritesAborted.WithLabelValues(abortReason(err)).Inc()
		logging.Debug("Stream aborted after %d bytes in %v: %v", bytesWritten, duration, err)
		return err
	}
	logging.Debug("Stream completed: %d bytes in %v", bytesWritten, duration)
	return nil
}

func abortReason(err error) string {
	switch {
	case errors.Is(err, ErrWriteTimeout):
		return "timeout"
	case errors.Is(err, ErrClientGone):
		return "client_gone"
	default:
		return "error"
	}
}
