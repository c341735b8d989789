// Package rename implements the naming rules for exported product photos:
// SKU validation, filename generation and the batch-level gate that must pass
// before any archive is built.
package rename

import (
	"fmt"
	"regexp"
	"strings"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/descriptor"
)

const (
	// MinSKULength is the shortest accepted SKU.
	MinSKULength = 4
	// MaxSKULength is the longest accepted SKU.
	MaxSKULength = 10
)

// Reasons reported by the validators.
const (
	ReasonSKURequired     = "SKU is required"
	ReasonSKUAlphanumeric = "SKU must be alphanumeric only"
	ReasonSKULength       = "SKU should be 4-10 characters"
	ReasonNoImages        = "At least one image is required"
)

var alphanumeric = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// Result is the outcome of a validation. Errors is empty iff Valid is true.
type Result struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

func newResult(errs []string) Result {
	if errs == nil {
		errs = []string{}
	}
	return Result{Valid: len(errs) == 0, Errors: errs}
}

// ValidateSKU checks a SKU after trimming. Every applicable reason is
// reported, not just the first.
func ValidateSKU(sku string) Result {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return newResult([]string{ReasonSKURequired})
	}

	var errs []string
	if !alphanumeric.MatchString(sku) {
		errs = append(errs, ReasonSKUAlphanumeric)
	}
	if n := len([]rune(sku)); n < MinSKULength || n > MaxSKULength {
		errs = append(errs, ReasonSKULength)
	}
	return newResult(errs)
}

// Filename returns the export name for an image: the SKU immediately
// followed by the descriptor, then the extension.
func Filename(sku string, d descriptor.Descriptor, ext string) string {
	return sku + string(d) + "." + ext
}

// IsDescriptorUsed reports whether d is assigned to any record other than the
// one identified by exceptID. Pass an empty exceptID to consider every record.
func IsDescriptorUsed(d descriptor.Descriptor, records []batch.ImageRecord, exceptID string) bool {
	for i := range records {
		if records[i].ID == exceptID {
			continue
		}
		if records[i].Descriptor != nil && *records[i].Descriptor == d {
			return true
		}
	}
	return false
}

// ValidateBatch is the single gate in front of export. Each rule is evaluated
// independently so every problem can be shown at once. The result must not
// be reused after the batch changes.
func ValidateBatch(records []batch.ImageRecord, sku string) Result {
	var errs []string

	if res := ValidateSKU(sku); !res.Valid {
		errs = append(errs, res.Errors...)
	}

	if len(records) == 0 {
		errs = append(errs, ReasonNoImages)
	}

	if n := countUnassigned(records); n > 0 {
		errs = append(errs, fmt.Sprintf("%d image(s) need descriptor assigned", n))
	}

	if dups := DuplicateDescriptors(records); len(dups) > 0 {
		names := make([]string, len(dups))
		for i, d := range dups {
			names[i] = string(d)
		}
		errs = append(errs, "Duplicate descriptors found: "+strings.Join(names, ", "))
	}

	return newResult(errs)
}

// DuplicateDescriptors returns each descriptor assigned to two or more
// records exactly once, in canonical order.
func DuplicateDescriptors(records []batch.ImageRecord) []descriptor.Descriptor {
	counts := make(map[descriptor.Descriptor]int)
	for i := range records {
		if records[i].Descriptor != nil {
			counts[*records[i].Descriptor]++
		}
	}

	var dups []descriptor.Descriptor
	for _, d := range descriptor.All() {
		if counts[d] > 1 {
			dups = append(dups, d)
		}
	}
	return dups
}

func countUnassigned(records []batch.ImageRecord) int {
	n := 0
	for i := range records {
		if records[i].Descriptor == nil {
			n++
		}
	}
	return n
}
