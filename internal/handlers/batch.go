package handlers

import (
	"encoding/json"
	"net/http"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/descriptor"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/rename"

	"github.com/dustin/go-humanize"
)

// ImageView is the API representation of an image record
type ImageView struct {
	ID              string                 `json:"id"`
	OriginalName    string                 `json:"originalName"`
	Extension       string                 `json:"extension"`
	Size            int64                  `json:"size"`
	SizeHuman       string                 `json:"sizeHuman"`
	Descriptor      *descriptor.Descriptor `json:"descriptor"`
	DescriptorLabel string                 `json:"descriptorLabel,omitempty"`
	Filename        string                 `json:"filename,omitempty"`
	PreviewURL      string                 `json:"previewUrl"`
	Placeholder     bool                   `json:"placeholder"`
	Facts           batch.Facts            `json:"facts"`
}

// StateResponse is the full batch state
type StateResponse struct {
	SKU        string      `json:"sku"`
	Images     []ImageView `json:"images"`
	MaxImages  int         `json:"maxImages"`
	Errors     []string    `json:"errors"`
	Processing bool        `json:"processing"`
}

// DescriptorOption is one entry of the descriptor picker
type DescriptorOption struct {
	Value descriptor.Descriptor `json:"value"`
	Label string                `json:"label"`
	Used  bool                  `json:"used"`
}

func newImageView(rec batch.ImageRecord, sku string) ImageView {
	view := ImageView{
		ID:           rec.ID,
		OriginalName: rec.OriginalName,
		Extension:    rec.Extension,
		Size:         rec.SizeBytes,
		SizeHuman:    humanize.IBytes(uint64(rec.SizeBytes)),
		Descriptor:   rec.Descriptor,
		PreviewURL:   "/api/images/" + rec.ID + "/preview",
		Placeholder:  rec.Preview.Placeholder,
		Facts:        rec.Facts,
	}
	if rec.Descriptor != nil {
		view.DescriptorLabel = rec.Descriptor.Label()
		if sku != "" {
			view.Filename = rename.Filename(sku, *rec.Descriptor, rec.Extension)
		}
	}
	return view
}

func imageViews(records []batch.ImageRecord, sku string) []ImageView {
	views := make([]ImageView, 0, len(records))
	for _, rec := range records {
		views = append(views, newImageView(rec, sku))
	}
	return views
}

// GetState returns the SKU, every image record and the last validation errors
func (h *Handlers) GetState(w http.ResponseWriter, _ *http.Request) {
	sku, images := h.store.Snapshot()

	errs := h.store.Errors()
	if errs == nil {
		errs = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, StateResponse{
		SKU:        sku,
		Images:     imageViews(images, sku),
		MaxImages:  batch.MaxImages,
		Errors:     errs,
		Processing: h.store.Processing(),
	})
}

type skuRequest struct {
	SKU string `json:"sku"`
}

type skuResponse struct {
	SKU        string        `json:"sku"`
	Validation rename.Result `json:"validation"`
}

// SetSKU stores the SKU and reports whether it is acceptable
func (h *Handlers) SetSKU(w http.ResponseWriter, r *http.Request) {
	var req skuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	h.store.SetSKU(req.SKU)
	sku := h.store.SKU()
	logging.Debug("SKU set to %q", sku)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, skuResponse{SKU: sku, Validation: rename.ValidateSKU(sku)})
}

// ListDescriptors returns the descriptor registry in canonical order. When the
// image query parameter names a record, descriptors held by other records are
// flagged as used.
func (h *Handlers) ListDescriptors(w http.ResponseWriter, r *http.Request) {
	imageID := r.URL.Query().Get("image")
	images := h.store.Images()

	all := descriptor.All()
	options := make([]DescriptorOption, 0, len(all))
	for _, d := range all {
		options = append(options, DescriptorOption{
			Value: d,
			Label: d.Label(),
			Used:  rename.IsDescriptorUsed(d, images, imageID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, options)
}

// Validate runs batch validation and stores the result
func (h *Handlers) Validate(w http.ResponseWriter, _ *http.Request) {
	sku, images := h.store.Snapshot()
	result := rename.ValidateBatch(images, sku)
	h.store.SetErrors(result.Errors)

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, result)
}

// ClearBatch removes the SKU, every image and the recorded errors
func (h *Handlers) ClearBatch(w http.ResponseWriter, _ *http.Request) {
	h.store.Clear()
	logging.Info("Batch cleared")
	writeJSONStatus(w, "cleared")
}
