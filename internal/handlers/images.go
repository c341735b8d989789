package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/descriptor"
	"sku-renamer/internal/intake"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/rename"

	"github.com/gorilla/mux"
)

// multipartMemory is how much of a multipart form is held in memory before
// parts spill to temporary files.
const multipartMemory = 32 << 20

// UploadResponse lists the records admitted from an upload and the files that
// were skipped
type UploadResponse struct {
	Images   []ImageView        `json:"images"`
	Rejected []intake.Rejection `json:"rejected"`
}

// UploadImages accepts a multipart form whose "files" parts are added to the
// batch. An upload that would exceed the image limit is refused whole.
func (h *Handlers) UploadImages(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, fmt.Sprintf("Upload exceeds %d bytes", maxErr.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeJSONError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			logging.Warn("failed to remove multipart temp files: %v", err)
		}
	}()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeJSONError(w, "No files uploaded", http.StatusBadRequest)
		return
	}

	uploads := make([]intake.Upload, 0, len(files))
	for _, fh := range files {
		uploads = append(uploads, intake.FromMultipart(fh))
	}

	result, err := h.intake.Process(r.Context(), uploads, h.store.Len())
	if errors.Is(err, intake.ErrTooManyFiles) {
		writeJSONError(w, fmt.Sprintf("Maximum %d images allowed", batch.MaxImages), http.StatusBadRequest)
		return
	}
	if err != nil {
		logging.Error("Upload processing failed: %v", err)
		writeJSONError(w, "Failed to process upload", http.StatusInternalServerError)
		return
	}

	if err := h.store.Add(result.Records...); err != nil {
		// Another upload filled the batch while this one was processing.
		if errors.Is(err, batch.ErrBatchFull) {
			writeJSONError(w, fmt.Sprintf("Maximum %d images allowed", batch.MaxImages), http.StatusBadRequest)
			return
		}
		logging.Error("Failed to add records: %v", err)
		writeJSONError(w, "Failed to add images", http.StatusInternalServerError)
		return
	}

	rejected := result.Rejections
	if rejected == nil {
		rejected = []intake.Rejection{}
	}

	status := http.StatusOK
	if len(result.Records) > 0 {
		status = http.StatusCreated
	}
	writeJSONCode(w, UploadResponse{
		Images:   imageViews(result.Records, h.store.SKU()),
		Rejected: rejected,
	}, status)
}

// GetPreview serves the preview image of a record
func (h *Handlers) GetPreview(w http.ResponseWriter, r *http.Request) {
	rec, err := h.store.Get(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", rec.Preview.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(rec.Preview.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := w.Write(rec.Preview.Data); err != nil {
		logging.Debug("failed to write preview %s: %v", rec.ID, err)
	}
}

type descriptorRequest struct {
	Descriptor *string `json:"descriptor"`
}

type descriptorResponse struct {
	Image ImageView `json:"image"`
	// Conflict is set when another record already holds the descriptor.
	Conflict bool `json:"conflict"`
}

// SetDescriptor assigns a descriptor to a record, or clears it when the
// descriptor is null
func (h *Handlers) SetDescriptor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req descriptorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Descriptor == nil || *req.Descriptor == "" {
		err := h.store.ClearDescriptor(id)
		if errors.Is(err, batch.ErrNotFound) {
			writeJSONError(w, "Image not found", http.StatusNotFound)
			return
		}
	} else {
		d, err := descriptor.Parse(*req.Descriptor)
		if err != nil {
			writeJSONError(w, fmt.Sprintf("Unknown descriptor %q", *req.Descriptor), http.StatusBadRequest)
			return
		}
		if err := h.store.UpdateDescriptor(id, d); err != nil {
			if errors.Is(err, batch.ErrNotFound) {
				writeJSONError(w, "Image not found", http.StatusNotFound)
				return
			}
			writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	sku, images := h.store.Snapshot()
	var rec *batch.ImageRecord
	for i := range images {
		if images[i].ID == id {
			rec = &images[i]
			break
		}
	}
	if rec == nil {
		// Removed concurrently.
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}

	resp := descriptorResponse{Image: newImageView(*rec, sku)}
	if rec.Descriptor != nil {
		resp.Conflict = rename.IsDescriptorUsed(*rec.Descriptor, images, id)
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, resp)
}

// DeleteImage removes a record from the batch
func (h *Handlers) DeleteImage(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Remove(id); err != nil {
		writeJSONError(w, "Image not found", http.StatusNotFound)
		return
	}
	logging.Debug("Removed image %s", id)
	writeJSONStatus(w, "deleted")
}
