// Package filesystem reads photos from disk, retrying the transient failures
// network shares produce.
package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/metrics"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the defaults used for photo shares
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// sleep is replaced in tests.
var sleep = time.Sleep

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.ESTALE
}

// withRetry runs fn until it succeeds, fails with anything but ESTALE, or the
// retries are used up.
func withRetry[T any](op, path string, config RetryConfig, fn func() (T, error)) (T, error) {
	backoff := config.InitialBackoff

	for attempt := 0; ; attempt++ {
		v, err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", op, attempt, path)
				metrics.FilesystemRetries.WithLabelValues(op, "success").Inc()
			}
			return v, nil
		}
		if !isNFSStaleError(err) {
			return v, err
		}
		if attempt >= config.MaxRetries {
			logging.Warn("NFS %s failed after %d retries for %s: %v", op, config.MaxRetries, path, err)
			metrics.FilesystemRetries.WithLabelValues(op, "failure").Inc()
			return v, err
		}

		metrics.FilesystemRetries.WithLabelValues(op, "retry").Inc()
		logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
			op, path, backoff, attempt+1, config.MaxRetries)
		sleep(backoff)

		backoff *= 2
		if backoff > config.MaxBackoff {
			backoff = config.MaxBackoff
		}
	}
}

// StatWithRetry performs os.Stat with retry logic for NFS stale file handle errors
func StatWithRetry(path string, config RetryConfig) (os.FileInfo, error) {
	return withRetry("stat", path, config, func() (os.FileInfo, error) {
		return os.Stat(path)
	})
}

// OpenWithRetry performs os.Open with retry logic for NFS stale file handle errors
func OpenWithRetry(path string, config RetryConfig) (*os.File, error) {
	return withRetry("open", path, config, func() (*os.File, error) {
		return os.Open(path)
	})
}
