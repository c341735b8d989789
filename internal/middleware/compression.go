package middleware

import (
	"io"
	"mime"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// CompressionConfig holds configuration for the compression middleware
type CompressionConfig struct {
	// MinSize is the minimum response size in bytes before compression is applied
	MinSize int
	// Level is the gzip compression level (gzip.BestSpeed to gzip.BestCompression)
	Level int
	// CompressibleTypes is a list of content types that should be compressed
	CompressibleTypes []string
}

// DefaultCompressionConfig returns the settings used by the server
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize: 1024,
		Level:   gzip.DefaultCompression,
		// Archives and previews are already compressed.
		CompressibleTypes: []string{
			"text/plain",
			"application/json",
			"image/svg+xml",
		},
	}
}

// gzipResponseWriter defers the compression decision until the content type
// is known. Incompressible bodies are passed through unbuffered so large
// downloads stream as they are written.
type gzipResponseWriter struct {
	http.ResponseWriter
	pool       *sync.Pool
	config     CompressionConfig
	gz         *gzip.Writer
	buffer     []byte
	statusCode int
	// started is set once headers have gone out.
	started bool
	// buffering is set while a compressible body is below MinSize.
	buffering bool
}

func newGzipResponseWriter(w http.ResponseWriter, pool *sync.Pool, config CompressionConfig) *gzipResponseWriter {
	return &gzipResponseWriter{
		ResponseWriter: w,
		pool:           pool,
		config:         config,
		statusCode:     http.StatusOK,
	}
}

// WriteHeader records the status. Headers are sent with the first body
// bytes, or on Close for empty bodies.
func (g *gzipResponseWriter) WriteHeader(statusCode int) {
	if g.started || g.buffering {
		return
	}
	g.statusCode = statusCode
	if !g.compressible() {
		g.start(false)
	}
}

func (g *gzipResponseWriter) Write(data []byte) (int, error) {
	if !g.started && !g.buffering {
		if !g.compressible() {
			g.start(false)
		} else {
			g.buffering = true
		}
	}

	if g.started {
		if g.gz != nil {
			return g.gz.Write(data)
		}
		return g.ResponseWriter.Write(data)
	}

	g.buffer = append(g.buffer, data...)
	if len(g.buffer) < g.config.MinSize {
		return len(data), nil
	}
	if err := g.start(true); err != nil {
		return 0, err
	}
	return len(data), nil
}

// compressible reports whether the response may be compressed, judging by
// its status and headers as they stand.
func (g *gzipResponseWriter) compressible() bool {
	if g.statusCode == http.StatusNoContent || g.statusCode == http.StatusNotModified {
		return false
	}
	h := g.Header()
	if h.Get("Content-Encoding") != "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(h.Get("Content-Type"))
	if err != nil {
		return false
	}
	return slices.Contains(g.config.CompressibleTypes, strings.ToLower(mediaType))
}

// start sends the headers and any buffered bytes.
func (g *gzipResponseWriter) start(compress bool) error {
	g.started = true
	g.buffering = false

	if compress {
		h := g.Header()
		h.Del("Content-Length")
		h.Set("Content-Encoding", "gzip")
		h.Add("Vary", "Accept-Encoding")

		g.gz = g.pool.Get().(*gzip.Writer)
		g.gz.Reset(g.ResponseWriter)
	}
	g.ResponseWriter.WriteHeader(g.statusCode)

	buffered := g.buffer
	g.buffer = nil
	if len(buffered) == 0 {
		return nil
	}
	var err error
	if g.gz != nil {
		_, err = g.gz.Write(buffered)
	} else {
		_, err = g.ResponseWriter.Write(buffered)
	}
	return err
}

// Close flushes what is still buffered and returns the gzip writer to the pool
func (g *gzipResponseWriter) Close() error {
	if !g.started {
		// Bodies below MinSize are not worth compressing.
		if err := g.start(false); err != nil {
			return err
		}
	}
	if g.gz == nil {
		return nil
	}
	err := g.gz.Close()
	g.pool.Put(g.gz)
	g.gz = nil
	return err
}

// Unwrap implements the interface http.ResponseController looks for
func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

// Flush implements http.Flusher
func (g *gzipResponseWriter) Flush() {
	if !g.started {
		_ = g.start(g.buffering)
	}
	if g.gz != nil {
		_ = g.gz.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Compression returns a middleware that gzips compressible responses for
// clients that accept it
func Compression(config CompressionConfig) func(http.Handler) http.Handler {
	level := config.Level
	if level < gzip.HuffmanOnly || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	pool := &sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(io.Discard, level)
			return w
		},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			gzw := newGzipResponseWriter(w, pool, config)
			defer func() { _ = gzw.Close() }()

			next.ServeHTTP(gzw, r)
		})
	}
}
