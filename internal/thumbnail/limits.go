package thumbnail

import (
	"bytes"
	"fmt"
	"image"
)

const (
	// MaxImagePixels is the largest width * height decoded for a preview.
	// A 61MP full-frame JPEG fits; anything beyond it is refused before the
	// decoder allocates.
	MaxImagePixels = 64_000_000

	// MaxPreviewHeight bounds the preview produced for extreme aspect ratios.
	// Scaling a 1x40000 strip to the preview width would otherwise allocate
	// gigabytes.
	MaxPreviewHeight = 4000
)

// ImageDimensions holds the size an image declares in its header
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads only the image header.
func GetImageDimensions(data []byte) (ImageDimensions, error) {
	config, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageDimensions{}, err
	}
	return ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// checkDimensions refuses data whose declared size would exhaust memory at
// decode or resize time.
func (e *Extractor) checkDimensions(data []byte) error {
	dims, err := GetImageDimensions(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if dims.Width <= 0 || dims.Height <= 0 {
		return fmt.Errorf("%w: empty image", ErrUndecodable)
	}
	if int64(dims.Width)*int64(dims.Height) > MaxImagePixels {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrTooLarge, dims.Width, dims.Height, MaxImagePixels)
	}
	return e.checkPreviewHeight(dims.Width, dims.Height)
}

// checkPreviewHeight refuses sizes that scale to an oversized preview.
func (e *Extractor) checkPreviewHeight(width, height int) error {
	if h := int64(e.width) * int64(height) / int64(width); h > MaxPreviewHeight {
		return fmt.Errorf("%w: %dx%d would preview at %dpx tall", ErrTooLarge, width, height, h)
	}
	return nil
}
