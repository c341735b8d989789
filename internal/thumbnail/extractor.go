package thumbnail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/mediatypes"
	"sku-renamer/internal/metrics"

	// Image format decoders
	_ "image/png"

	"github.com/disintegration/imaging"
)

const (
	// DefaultWidth is the preview width in pixels; height follows the aspect ratio.
	DefaultWidth = 200

	// DefaultQuality is the JPEG quality previews are encoded at.
	DefaultQuality = 80
)

// Source describes where a preview came from.
type Source string

const (
	SourceImage       Source = "image"
	SourceRaw         Source = "raw"
	SourcePlaceholder Source = "placeholder"
)

var (
	// ErrNoSegments is logged when a RAW container holds no embedded JPEG.
	ErrNoSegments = errors.New("no embedded JPEG segments")

	// ErrUndecodable is returned when image data cannot be decoded.
	ErrUndecodable = errors.New("image could not be decoded")

	// ErrTooLarge is returned when image dimensions exceed the decode budget.
	// It wraps ErrUndecodable so callers treat both as a failed preview.
	ErrTooLarge = fmt.Errorf("%w: dimensions too large", ErrUndecodable)
)

// Preview is an encoded thumbnail ready for display.
type Preview struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	Placeholder bool
	Source      Source
}

// Options configures an Extractor.
type Options struct {
	Width   int
	Quality int
	// UseVips routes standard images through libvips when it has been
	// initialised with InitVips.
	UseVips bool
}

// Extractor produces previews for uploaded files, including RAW containers
// that standard decoders cannot read.
type Extractor struct {
	width   int
	quality int
	useVips bool
}

// NewExtractor creates an extractor, filling zero options with defaults.
func NewExtractor(opts Options) *Extractor {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Quality <= 0 || opts.Quality > 100 {
		opts.Quality = DefaultQuality
	}
	logging.Debug("Extractor: width=%d quality=%d vips=%v", opts.Width, opts.Quality, opts.UseVips)
	return &Extractor{
		width:   opts.Width,
		quality: opts.Quality,
		useVips: opts.UseVips,
	}
}

// Preview builds the preview for a file. RAW containers are recognised by
// name alone and always yield a preview: the largest decodable embedded JPEG,
// or the placeholder. Standard images return an error when they cannot be
// decoded.
func (e *Extractor) Preview(ctx context.Context, name string, data []byte) (Preview, error) {
	start := time.Now()
	source := SourceImage
	if mediatypes.IsRaw(name) {
		source = SourceRaw
	}

	var (
		p   Preview
		err error
	)
	if source == SourceRaw {
		p, err = e.fromRaw(ctx, name, data)
	} else {
		p, err = e.fromImage(data)
	}

	status := "success"
	if err != nil {
		status = "error"
	} else if p.Placeholder {
		status = "placeholder"
	}
	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(source), status).Inc()
	metrics.ThumbnailGenerationDuration.WithLabelValues(string(source)).Observe(time.Since(start).Seconds())

	if err != nil {
		return Preview{}, fmt.Errorf("preview for %s: %w", name, err)
	}
	return p, nil
}

func (e *Extractor) fromImage(data []byte) (Preview, error) {
	if err := e.checkDimensions(data); err != nil {
		return Preview{}, err
	}

	if e.useVips && IsVipsAvailable() {
		p, err := e.renderWithVips(data)
		if err == nil {
			return p, nil
		}
		logging.Debug("vips preview failed, falling back to imaging: %v", err)
	}

	img, err := decode(data)
	if err != nil {
		return Preview{}, err
	}
	return e.render(img, SourceImage)
}

func (e *Extractor) fromRaw(ctx context.Context, name string, data []byte) (Preview, error) {
	segments := ScanSegments(data)
	metrics.ThumbnailRawSegments.Observe(float64(len(segments)))

	if len(segments) == 0 {
		logging.Warn("%s: %v, using placeholder", name, ErrNoSegments)
		return Placeholder(), nil
	}

	ranked := rankSegments(segments)
	logging.Debug("%s: %d embedded JPEG candidates, largest %d bytes", name, len(ranked), ranked[0].Len())

	for i, seg := range ranked {
		if err := ctx.Err(); err != nil {
			return Preview{}, err
		}

		candidate := data[seg.Start:seg.End]
		if err := e.checkDimensions(candidate); err != nil {
			metrics.ThumbnailRawCandidateFailures.Inc()
			logging.Debug("%s: candidate %d/%d at [%d,%d) skipped: %v", name, i+1, len(ranked), seg.Start, seg.End, err)
			continue
		}

		img, err := decode(candidate)
		if err != nil {
			metrics.ThumbnailRawCandidateFailures.Inc()
			logging.Debug("%s: candidate %d/%d at [%d,%d) failed: %v", name, i+1, len(ranked), seg.Start, seg.End, err)
			continue
		}

		p, err := e.render(img, SourceRaw)
		if err != nil {
			logging.Debug("%s: candidate %d/%d could not be re-encoded: %v", name, i+1, len(ranked), err)
			continue
		}
		return p, nil
	}

	logging.Warn("%s: none of %d embedded JPEG candidates decoded, using placeholder", name, len(ranked))
	return Placeholder(), nil
}

// render scales img to the configured width and encodes it as JPEG.
func (e *Extractor) render(img image.Image, source Source) (Preview, error) {
	// Orientation may have swapped the header's width and height.
	b := img.Bounds()
	if err := e.checkPreviewHeight(b.Dx(), b.Dy()); err != nil {
		return Preview{}, err
	}

	thumb := imaging.Resize(img, e.width, 0, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: e.quality}); err != nil {
		return Preview{}, fmt.Errorf("failed to encode preview: %w", err)
	}

	bounds := thumb.Bounds()
	return Preview{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
		Source:      source,
	}, nil
}

// decode decodes JPEG or PNG data, applying EXIF orientation. Decoder panics
// on hostile input are turned into errors.
func decode(data []byte) (img image.Image, err error) {
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: decoder panic: %v", ErrUndecodable, r)
		}
	}()

	img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if b := img.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUndecodable)
	}
	return img, nil
}
