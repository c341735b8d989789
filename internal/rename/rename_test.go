package rename

import (
	"math/rand"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/descriptor"
)

func desc(d descriptor.Descriptor) *descriptor.Descriptor {
	return &d
}

func record(id string, d *descriptor.Descriptor) batch.ImageRecord {
	return batch.ImageRecord{ID: id, OriginalName: id + ".jpg", Extension: "jpg", Descriptor: d}
}

func TestValidateSKU(t *testing.T) {
	tests := []struct {
		name     string
		sku      string
		expected []string
	}{
		{"Valid numeric", "63755", nil},
		{"Valid mixed case", "AbC123", nil},
		{"Valid at minimum length", "abcd", nil},
		{"Valid at maximum length", "ABCDEFGHIJ", nil},
		{"Trimmed before checking", "  63755 ", nil},
		{"Empty", "", []string{ReasonSKURequired}},
		{"Whitespace only", "   ", []string{ReasonSKURequired}},
		{"Too short", "abc", []string{ReasonSKULength}},
		{"Too long", "ABCDEFGHIJK", []string{ReasonSKULength}},
		{"Non-alphanumeric", "ab-12", []string{ReasonSKUAlphanumeric}},
		{"Inner space", "ab 12", []string{ReasonSKUAlphanumeric}},
		{"Non-alphanumeric and too short", "a_b", []string{ReasonSKUAlphanumeric, ReasonSKULength}},
		{"Non-alphanumeric and too long", "abc-defghijk", []string{ReasonSKUAlphanumeric, ReasonSKULength}},
		{"Non-ASCII letters", "ÅBCD", []string{ReasonSKUAlphanumeric}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateSKU(tt.sku)
			if res.Valid != (len(tt.expected) == 0) {
				t.Errorf("Valid = %v, want %v", res.Valid, len(tt.expected) == 0)
			}
			want := tt.expected
			if want == nil {
				want = []string{}
			}
			if !reflect.DeepEqual(res.Errors, want) {
				t.Errorf("Errors = %q, want %q", res.Errors, want)
			}
		})
	}
}

// TestValidateSKUMatchesPattern checks the validator against the reference
// pattern on random inputs drawn from a small alphabet that hits every rule.
func TestValidateSKUMatchesPattern(t *testing.T) {
	reference := regexp.MustCompile(`^[A-Za-z0-9]{4,10}$`)
	alphabet := []rune("aZ09 -_\té")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 5000; i++ {
		n := rng.Intn(14)
		var b strings.Builder
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		s := b.String()

		want := reference.MatchString(strings.TrimSpace(s))
		if got := ValidateSKU(s).Valid; got != want {
			t.Fatalf("ValidateSKU(%q).Valid = %v, reference says %v", s, got, want)
		}
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		sku      string
		d        descriptor.Descriptor
		ext      string
		expected string
	}{
		{"63755", descriptor.Front, "jpg", "63755front.jpg"},
		{"AB12", descriptor.TopDown, "png", "AB12topdown.png"},
		{"rug001", descriptor.Thickness, "arw", "rug001thickness.arw"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := Filename(tt.sku, tt.d, tt.ext); got != tt.expected {
				t.Errorf("Filename() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFilenameInjective(t *testing.T) {
	for _, sku := range []string{"63755", "ABCD", "a1b2c3d4e5"} {
		seen := make(map[string]descriptor.Descriptor)
		for _, d := range descriptor.All() {
			name := Filename(sku, d, "jpg")
			if prev, ok := seen[name]; ok {
				t.Errorf("SKU %s: %q and %q both produce %q", sku, prev, d, name)
			}
			seen[name] = d
			if name != Filename(sku, d, "jpg") {
				t.Errorf("Filename not deterministic for %s/%s", sku, d)
			}
		}
	}
}

func TestIsDescriptorUsed(t *testing.T) {
	records := []batch.ImageRecord{
		record("a", desc(descriptor.Front)),
		record("b", nil),
		record("c", desc(descriptor.Rear)),
	}

	tests := []struct {
		name     string
		d        descriptor.Descriptor
		except   string
		expected bool
	}{
		{"Used by another record", descriptor.Front, "b", true},
		{"Used only by the current record", descriptor.Front, "a", false},
		{"Unused", descriptor.Tag, "", false},
		{"Used with no exclusion", descriptor.Rear, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsDescriptorUsed(tt.d, records, tt.except); got != tt.expected {
				t.Errorf("IsDescriptorUsed(%s, except=%q) = %v, want %v", tt.d, tt.except, got, tt.expected)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	tests := []struct {
		name     string
		records  []batch.ImageRecord
		sku      string
		expected []string
	}{
		{
			name:     "Valid batch",
			records:  []batch.ImageRecord{record("a", desc(descriptor.Front)), record("b", desc(descriptor.Rear))},
			sku:      "63755",
			expected: []string{},
		},
		{
			name:     "Empty batch and missing SKU",
			records:  nil,
			sku:      "",
			expected: []string{ReasonSKURequired, ReasonNoImages},
		},
		{
			name:     "Unassigned descriptors counted",
			records:  []batch.ImageRecord{record("a", nil), record("b", desc(descriptor.Front)), record("c", nil)},
			sku:      "63755",
			expected: []string{"2 image(s) need descriptor assigned"},
		},
		{
			name: "Duplicates reported once each in canonical order",
			records: []batch.ImageRecord{
				record("a", desc(descriptor.Tag)),
				record("b", desc(descriptor.Front)),
				record("c", desc(descriptor.Tag)),
				record("d", desc(descriptor.Front)),
				record("e", desc(descriptor.Front)),
				record("f", desc(descriptor.Rear)),
			},
			sku:      "63755",
			expected: []string{"Duplicate descriptors found: front, tag"},
		},
		{
			name: "All rules at once",
			records: []batch.ImageRecord{
				record("a", desc(descriptor.Zoom1)),
				record("b", desc(descriptor.Zoom1)),
				record("c", nil),
			},
			sku: "a-b",
			expected: []string{
				ReasonSKUAlphanumeric,
				ReasonSKULength,
				"1 image(s) need descriptor assigned",
				"Duplicate descriptors found: zoom1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBatch(tt.records, tt.sku)
			if !reflect.DeepEqual(res.Errors, tt.expected) {
				t.Errorf("Errors = %q, want %q", res.Errors, tt.expected)
			}
			if res.Valid != (len(tt.expected) == 0) {
				t.Errorf("Valid = %v with errors %q", res.Valid, res.Errors)
			}
		})
	}
}

func TestDuplicateDescriptorsProperty(t *testing.T) {
	all := descriptor.All()
	rng := rand.New(rand.NewSource(7))

	for iter := 0; iter < 500; iter++ {
		n := rng.Intn(batch.MaxImages + 1)
		records := make([]batch.ImageRecord, n)
		counts := make(map[descriptor.Descriptor]int)
		for i := range records {
			var d *descriptor.Descriptor
			if rng.Intn(4) > 0 {
				d = desc(all[rng.Intn(4)])
				counts[*d]++
			}
			records[i] = record(string(rune('a'+i)), d)
		}

		dups := DuplicateDescriptors(records)
		seen := make(map[descriptor.Descriptor]bool)
		for _, d := range dups {
			if seen[d] {
				t.Fatalf("descriptor %s reported twice", d)
			}
			seen[d] = true
			if counts[d] < 2 {
				t.Fatalf("descriptor %s reported with count %d", d, counts[d])
			}
		}
		for d, c := range counts {
			if c >= 2 && !seen[d] {
				t.Fatalf("descriptor %s used %d times but not reported", d, c)
			}
		}

		hasDupMsg := false
		for _, e := range ValidateBatch(records, "63755").Errors {
			if strings.HasPrefix(e, "Duplicate descriptors found") {
				hasDupMsg = true
			}
		}
		if hasDupMsg != (len(dups) > 0) {
			t.Fatalf("duplicate message present = %v, duplicates = %v", hasDupMsg, dups)
		}
	}
}
