package thumbnail

import (
	"fmt"
	"sync"

	"sku-renamer/internal/logging"

	"github.com/davidbyttow/govips/v2/vips"
)

var (
	vipsInitialized bool
	vipsInitMutex   sync.Mutex
	vipsAvailable   bool
)

// vipsLevelFor maps the application log level onto the most verbose libvips
// level worth forwarding.
func vipsLevelFor(level logging.LogLevel) vips.LogLevel {
	switch level {
	case logging.LevelDebug:
		return vips.LogLevelInfo
	case logging.LevelInfo:
		return vips.LogLevelWarning
	case logging.LevelWarn:
		return vips.LogLevelError
	default:
		return vips.LogLevelCritical
	}
}

func forwardVipsLog(domain string, level vips.LogLevel, msg string) {
	switch level {
	case vips.LogLevelError, vips.LogLevelCritical:
		logging.Error("[%s] %s", domain, msg)
	case vips.LogLevelWarning:
		logging.Warn("[%s] %s", domain, msg)
	default:
		logging.Debug("[%s] %s", domain, msg)
	}
}

// InitVips starts libvips. It is idempotent and should be called once at
// startup when VIPS_ENABLED is set.
func InitVips() error {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		return nil
	}

	// Logging must be configured before Startup to take effect.
	vips.LoggingSettings(forwardVipsLog, vipsLevelFor(logging.GetLevel()))

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("libvips initialized successfully (version: %s)", vips.Version)
	return nil
}

// ShutdownVips releases libvips resources.
func ShutdownVips() {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
		logging.Info("libvips shutdown complete")
	}
}

// IsVipsAvailable returns whether libvips is initialized and available
func IsVipsAvailable() bool {
	vipsInitMutex.Lock()
	defer vipsInitMutex.Unlock()
	return vipsAvailable
}

// renderWithVips produces a preview with decode-time shrinking, which is far
// cheaper than a full decode for large camera JPEGs.
func (e *Extractor) renderWithVips(data []byte) (Preview, error) {
	ref, err := vips.NewImageFromBuffer(data)
	if err != nil {
		return Preview{}, fmt.Errorf("vips failed to load image: %w", err)
	}
	defer ref.Close()

	if err := ref.AutoRotate(); err != nil {
		return Preview{}, fmt.Errorf("vips auto-rotate failed: %w", err)
	}
	if err := ref.Thumbnail(e.width, MaxPreviewHeight, vips.InterestingNone); err != nil {
		return Preview{}, fmt.Errorf("vips resize failed: %w", err)
	}

	params := vips.NewJpegExportParams()
	params.Quality = e.quality
	params.StripMetadata = true
	out, _, err := ref.ExportJpeg(params)
	if err != nil {
		return Preview{}, fmt.Errorf("vips export failed: %w", err)
	}

	return Preview{
		Data:        out,
		ContentType: "image/jpeg",
		Width:       ref.Width(),
		Height:      ref.Height(),
		Source:      SourceImage,
	}, nil
}
