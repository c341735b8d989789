// Package batch holds the in-memory state of one renaming session: the SKU,
// the uploaded image records and the last validation errors.
package batch

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"sku-renamer/internal/descriptor"
	"sku-renamer/internal/metrics"
)

var (
	// ErrBatchFull is returned when an add would push the batch past MaxImages.
	ErrBatchFull = errors.New("batch is full")

	// ErrNotFound is returned when no record has the requested id.
	ErrNotFound = errors.New("image not found")

	// ErrDuplicateID is returned when an added record reuses an existing id.
	ErrDuplicateID = errors.New("duplicate image id")
)

// Store is the state container for a batch. All transitions go through its
// methods, and readers get copies, so callers never observe a half-applied
// change.
type Store struct {
	mu         sync.RWMutex
	sku        string
	images     []ImageRecord
	errors     []string
	processing bool
	// exportGen identifies the export holding the processing flag.
	exportGen uint64
}

// NewStore returns an empty batch.
func NewStore() *Store {
	return &Store{}
}

// SKU returns the current SKU.
func (s *Store) SKU() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sku
}

// SetSKU stores the SKU with surrounding whitespace removed.
func (s *Store) SetSKU(sku string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sku = strings.TrimSpace(sku)
}

// Add appends records to the batch. Either all records are admitted or none
// are.
func (s *Store) Add(records ...ImageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.images)+len(records) > MaxImages {
		return fmt.Errorf("%w: %d present, %d incoming, maximum %d", ErrBatchFull, len(s.images), len(records), MaxImages)
	}

	seen := make(map[string]bool, len(s.images)+len(records))
	for _, img := range s.images {
		seen[img.ID] = true
	}
	for _, rec := range records {
		if rec.ID == "" || seen[rec.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, rec.ID)
		}
		seen[rec.ID] = true
	}

	for _, rec := range records {
		s.images = append(s.images, rec.clone())
	}
	return nil
}

// Remove deletes the record with the given id. Other records keep their ids,
// descriptors and order.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.images = append(s.images[:i:i], s.images[i+1:]...)
	return nil
}

// UpdateDescriptor assigns d to the record with the given id. Uniqueness is
// not enforced here; duplicates are reported by batch validation.
func (s *Store) UpdateDescriptor(id string, d descriptor.Descriptor) error {
	if !d.Valid() {
		return fmt.Errorf("%w: %q", descriptor.ErrUnknown, string(d))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.images[i].Descriptor = &d
	return nil
}

// ClearDescriptor unassigns the descriptor of the record with the given id.
func (s *Store) ClearDescriptor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.images[i].Descriptor = nil
	return nil
}

// Clear resets the batch to its initial empty state.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sku = ""
	s.images = nil
	s.errors = nil
	s.processing = false
}

// Images returns a snapshot of the records in upload order.
func (s *Store) Images() []ImageRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImageRecord, len(s.images))
	for i, img := range s.images {
		out[i] = img.clone()
	}
	return out
}

// Snapshot returns the SKU and a copy of the records taken under one lock, so
// the pair is consistent.
func (s *Store) Snapshot() (string, []ImageRecord) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ImageRecord, len(s.images))
	for i, img := range s.images {
		out[i] = img.clone()
	}
	return s.sku, out
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id string) (ImageRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return ImageRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.images[i].clone(), nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}

// SetErrors records the outcome of the most recent validation.
func (s *Store) SetErrors(errs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = append([]string(nil), errs...)
}

// Errors returns the most recently recorded validation errors.
func (s *Store) Errors() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.errors...)
}

// SetProcessing sets the in-flight export flag.
func (s *Store) SetProcessing(processing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing = processing
}

// TryStartProcessing sets the in-flight flag if it is clear and reports
// whether it did. The returned release clears the flag only while this call
// still owns it: after a Clear and a newer export, it does nothing.
func (s *Store) TryStartProcessing() (release func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processing {
		return nil, false
	}
	s.processing = true
	s.exportGen++
	gen := s.exportGen

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.exportGen == gen {
			s.processing = false
		}
	}, true
}

// Processing reports whether an export is in flight.
func (s *Store) Processing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.processing
}

// GetStats summarises the batch for the metrics collector.
func (s *Store) GetStats() metrics.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := metrics.Stats{Images: len(s.images), Processing: s.processing}
	for i := range s.images {
		if s.images[i].HasDescriptor() {
			stats.Assigned++
		} else {
			stats.Unassigned++
		}
		stats.TotalBytes += s.images[i].SizeBytes
	}
	return stats
}

func (s *Store) indexOf(id string) int {
	for i := range s.images {
		if s.images[i].ID == id {
			return i
		}
	}
	return -1
}
