// Package intake turns uploaded files into batch records. It enforces the
// batch size limit, checks each file's type and size, and builds its preview.
// A failure in one file never affects its siblings.
package intake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/mediatypes"
	"sku-renamer/internal/metrics"
	"sku-renamer/internal/thumbnail"
	"sku-renamer/internal/workers"

	"github.com/google/uuid"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/sync/errgroup"
)

// MaxFileSize is the largest accepted file, 50 MiB.
const MaxFileSize int64 = 50 * 1024 * 1024

// ErrTooManyFiles is returned when an upload would push the batch past its
// image limit. Nothing from such an upload is admitted.
var ErrTooManyFiles = errors.New("too many images")

// Rejection reasons shown to the user.
const (
	ReasonInvalidType   = "Invalid file type. Use JPG, PNG, or ARW"
	ReasonTooLarge      = "File too large (max 50MB)"
	ReasonPreviewFailed = "Could not generate a preview"
	ReasonUnreadable    = "File could not be read"
)

// Previewer builds display previews. *thumbnail.Extractor implements it.
type Previewer interface {
	Preview(ctx context.Context, name string, data []byte) (thumbnail.Preview, error)
}

// Rejection explains why a file was left out of the batch.
type Rejection struct {
	Name    string   `json:"name"`
	Reasons []string `json:"reasons"`
}

func (r Rejection) String() string {
	return r.Name + ": " + strings.Join(r.Reasons, ", ")
}

// Result holds the records admitted from one upload, in upload order, and the
// files that were skipped.
type Result struct {
	Records    []batch.ImageRecord
	Rejections []Rejection
}

// Gate holds intake back while reading another file would be unsafe.
type Gate interface {
	Wait(ctx context.Context) error
}

// Options configures a Pipeline. Zero values select the defaults.
type Options struct {
	MaxFiles    int
	MaxFileSize int64
	Workers     int
	// Gate is optional.
	Gate Gate
}

// Pipeline validates uploads and assembles image records.
type Pipeline struct {
	previewer   Previewer
	maxFiles    int
	maxFileSize int64
	workers     int
	gate        Gate
	newID       func() string
}

// New creates a pipeline around the given previewer.
func New(previewer Previewer, opts Options) *Pipeline {
	if opts.MaxFiles <= 0 {
		opts.MaxFiles = batch.MaxImages
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = MaxFileSize
	}
	if opts.Workers <= 0 {
		opts.Workers = workers.ForCPU(opts.MaxFiles)
	}
	metrics.IntakeWorkers.Set(float64(opts.Workers))

	return &Pipeline{
		previewer:   previewer,
		maxFiles:    opts.MaxFiles,
		maxFileSize: opts.MaxFileSize,
		workers:     opts.Workers,
		gate:        opts.Gate,
		newID:       uuid.NewString,
	}
}

// outcome is the result slot for a single file.
type outcome struct {
	record    *batch.ImageRecord
	rejection *Rejection
}

// Process validates and converts uploads. existing is the number of records
// already in the batch. If the combined count exceeds the limit the whole
// upload is refused with ErrTooManyFiles; otherwise every file is handled
// independently and per-file problems are reported as rejections.
func (p *Pipeline) Process(ctx context.Context, uploads []Upload, existing int) (Result, error) {
	if existing+len(uploads) > p.maxFiles {
		metrics.IntakeBatchesRejected.Inc()
		return Result{}, fmt.Errorf("%w: maximum %d images allowed", ErrTooManyFiles, p.maxFiles)
	}

	start := time.Now()
	defer func() {
		metrics.IntakeDuration.Observe(time.Since(start).Seconds())
	}()

	slots := make([]outcome, len(uploads))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i := range uploads {
		g.Go(func() error {
			slots[i] = p.processOne(ctx, uploads[i])
			return nil
		})
	}
	// Units never return errors; failures live in their slots.
	_ = g.Wait()

	var res Result
	for _, o := range slots {
		switch {
		case o.record != nil:
			res.Records = append(res.Records, *o.record)
		case o.rejection != nil:
			res.Rejections = append(res.Rejections, *o.rejection)
		}
	}

	logging.Info("Intake: %d accepted, %d rejected", len(res.Records), len(res.Rejections))
	return res, nil
}

// Validate checks the type and size of a single upload without reading it.
func (p *Pipeline) Validate(u Upload) []string {
	var reasons []string
	if mediatypes.Detect(u.Name, u.DeclaredType) == mediatypes.KindUnsupported {
		reasons = append(reasons, ReasonInvalidType)
	}
	if u.Size > p.maxFileSize {
		reasons = append(reasons, ReasonTooLarge)
	}
	return reasons
}

func (p *Pipeline) processOne(ctx context.Context, u Upload) (o outcome) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("Intake: panic while processing %s: %v", u.Name, r)
			metrics.IntakeFilesTotal.WithLabelValues("preview_failed").Inc()
			o = reject(u.Name, ReasonPreviewFailed)
		}
	}()

	if reasons := p.Validate(u); len(reasons) > 0 {
		label := "invalid_type"
		if reasons[0] == ReasonTooLarge {
			label = "too_large"
		}
		metrics.IntakeFilesTotal.WithLabelValues(label).Inc()
		logging.Warn("Intake: skipping %s: %s", u.Name, strings.Join(reasons, ", "))
		return outcome{rejection: &Rejection{Name: u.Name, Reasons: reasons}}
	}

	if p.gate != nil {
		if err := p.gate.Wait(ctx); err != nil {
			metrics.IntakeFilesTotal.WithLabelValues("preview_failed").Inc()
			logging.Warn("Intake: gave up on %s: %v", u.Name, err)
			return reject(u.Name, ReasonUnreadable)
		}
	}

	data, err := p.read(u)
	if err != nil {
		label := "preview_failed"
		reason := ReasonUnreadable
		if errors.Is(err, errTooLarge) {
			label, reason = "too_large", ReasonTooLarge
		}
		metrics.IntakeFilesTotal.WithLabelValues(label).Inc()
		logging.Warn("Intake: skipping %s: %v", u.Name, err)
		return reject(u.Name, reason)
	}

	preview, err := p.previewer.Preview(ctx, u.Name, data)
	if err != nil {
		metrics.IntakeFilesTotal.WithLabelValues("preview_failed").Inc()
		logging.Warn("Intake: skipping %s: %v", u.Name, err)
		return reject(u.Name, ReasonPreviewFailed)
	}

	rec := batch.ImageRecord{
		ID:           p.newID(),
		OriginalName: u.Name,
		Extension:    mediatypes.Extension(u.Name),
		Data:         data,
		SizeBytes:    int64(len(data)),
		Preview: batch.Preview{
			Data:        preview.Data,
			ContentType: preview.ContentType,
			Width:       preview.Width,
			Height:      preview.Height,
			Placeholder: preview.Placeholder,
		},
		Facts: readFacts(u.Name, data),
	}
	metrics.IntakeFilesTotal.WithLabelValues("accepted").Inc()
	logging.Debug("Intake: accepted %s as %s (%d bytes, preview %s %dx%d)",
		u.Name, rec.ID, rec.SizeBytes, preview.Source, preview.Width, preview.Height)
	return outcome{record: &rec}
}

var errTooLarge = errors.New("content exceeds size limit")

// read loads the full content, refusing anything longer than the limit even
// if the declared size was smaller.
func (p *Pipeline) read(u Upload) ([]byte, error) {
	if u.Open == nil {
		return nil, fmt.Errorf("no content for %s", u.Name)
	}
	rc, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rc.Close(); err != nil {
			logging.Debug("Intake: failed to close %s: %v", u.Name, err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(rc, p.maxFileSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > p.maxFileSize {
		return nil, errTooLarge
	}
	return data, nil
}

func reject(name, reason string) outcome {
	return outcome{rejection: &Rejection{Name: name, Reasons: []string{reason}}}
}

// readFacts extracts camera details from EXIF data, which JPEGs and
// TIFF-based RAW containers carry. Missing or malformed EXIF yields no facts.
func readFacts(name string, data []byte) (facts batch.Facts) {
	defer func() {
		if r := recover(); r != nil {
			logging.Debug("Intake: EXIF parser panic for %s: %v", name, r)
			facts = batch.Facts{}
		}
	}()

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return batch.Facts{}
	}

	if tag, err := x.Get(exif.Model); err == nil {
		if model, err := tag.StringVal(); err == nil {
			facts.CameraModel = strings.TrimSpace(strings.TrimRight(model, "\x00"))
		}
	}
	if taken, err := x.DateTime(); err == nil {
		facts.TakenAt = taken
	}
	return facts
}
