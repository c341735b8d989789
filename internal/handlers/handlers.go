package handlers

import (
	"context"
	"time"

	"sku-renamer/internal/archive"
	"sku-renamer/internal/batch"
	"sku-renamer/internal/intake"
	"sku-renamer/internal/publish"
	"sku-renamer/internal/startup"
)

// Intake turns uploaded files into batch records
type Intake interface {
	Process(ctx context.Context, uploads []intake.Upload, existing int) (intake.Result, error)
}

// Publisher uploads finished archives
type Publisher interface {
	Publish(ctx context.Context, name string, data []byte) (publish.Location, error)
}

type Handlers struct {
	store          *batch.Store
	intake         Intake
	builder        *archive.Builder
	publisher      Publisher
	maxUploadBytes int64
	startTime      time.Time
}

// New wires the handlers to the batch and its processing pipeline. publisher
// may be nil when archive publishing is not configured.
func New(store *batch.Store, in Intake, builder *archive.Builder, publisher Publisher, config *startup.Config) *Handlers {
	h := &Handlers{
		store:     store,
		intake:    in,
		builder:   builder,
		publisher: publisher,
		startTime: time.Now(),
	}
	if config != nil {
		h.maxUploadBytes = config.MaxUploadBytes
	}
	return h
}
