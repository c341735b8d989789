package batch

import (
	"time"

	"sku-renamer/internal/descriptor"
)

// MaxImages is the largest number of records a batch may hold.
const MaxImages = 11

// Preview is the displayable thumbnail derived from a record's content.
type Preview struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
	// Placeholder is set when no decodable image could be recovered.
	Placeholder bool
}

// Facts are informational details read from embedded EXIF data.
type Facts struct {
	CameraModel string    `json:"cameraModel,omitempty"`
	TakenAt     time.Time `json:"takenAt,omitzero"`
}

// ImageRecord is one uploaded photograph awaiting export.
type ImageRecord struct {
	ID           string
	OriginalName string
	// Extension is lower-case and never empty.
	Extension string
	// Data is the original, unmodified file content. It is never written to
	// after intake.
	Data       []byte
	SizeBytes  int64
	Preview    Preview
	Facts      Facts
	Descriptor *descriptor.Descriptor
}

// HasDescriptor reports whether a descriptor has been assigned.
func (r *ImageRecord) HasDescriptor() bool {
	return r.Descriptor != nil
}

// clone returns a copy whose descriptor pointer is not shared. Data and
// preview bytes are immutable after intake and stay shared.
func (r ImageRecord) clone() ImageRecord {
	if r.Descriptor != nil {
		d := *r.Descriptor
		r.Descriptor = &d
	}
	return r
}
