// Package descriptor holds the fixed shot list used to name product photos.
//
// A Descriptor names the role of an image within the shot list (front view,
// measuring tape, ...). The set is closed: values outside it are rejected by
// Parse at the boundary so the rest of the code can trust any Descriptor it
// is handed.
package descriptor

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknown is returned when a string does not name a registered descriptor.
var ErrUnknown = errors.New("unknown descriptor")

// Descriptor is a positional tag appended to the SKU in exported filenames.
type Descriptor string

const (
	Front     Descriptor = "front"
	Diag1     Descriptor = "diag1"
	Rear      Descriptor = "rear"
	Diag2     Descriptor = "diag2"
	Zoom1     Descriptor = "zoom1"
	Zoom2     Descriptor = "zoom2"
	Folded    Descriptor = "folded"
	Tape      Descriptor = "tape"
	Tag       Descriptor = "tag"
	Thickness Descriptor = "thickness"
	TopDown   Descriptor = "topdown"
)

// canonical is the shot-list order used for display and reporting.
var canonical = [...]Descriptor{
	Front, Diag1, Rear, Diag2, Zoom1, Zoom2, Folded, Tape, Tag, Thickness, TopDown,
}

var labels = map[Descriptor]string{
	Front:     "Front View",
	Diag1:     "Diagonal 1",
	Rear:      "Rear View",
	Diag2:     "Diagonal 2",
	Zoom1:     "Detail Zoom 1",
	Zoom2:     "Detail Zoom 2",
	Folded:    "Folded View",
	Tape:      "Measuring Tape",
	Tag:       "Tag/Label",
	Thickness: "Pile Thickness",
	TopDown:   "Top-Down View",
}

// Count is the number of registered descriptors.
const Count = len(canonical)

// All returns every descriptor in canonical order. The slice is a copy.
func All() []Descriptor {
	out := make([]Descriptor, len(canonical))
	copy(out, canonical[:])
	return out
}

// Valid reports whether d is a registered descriptor.
func (d Descriptor) Valid() bool {
	_, ok := labels[d]
	return ok
}

// Label returns the human-readable name, or the raw value if unregistered.
func (d Descriptor) Label() string {
	if l, ok := labels[d]; ok {
		return l
	}
	return string(d)
}

func (d Descriptor) String() string {
	return string(d)
}

// Parse converts user input to a Descriptor. Surrounding whitespace and case
// are ignored.
func Parse(s string) (Descriptor, error) {
	d := Descriptor(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknown, s)
	}
	return d, nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, string(d))
	}
	return []byte(d), nil
}

// UnmarshalText implements encoding.TextUnmarshaler; it is used by both the
// JSON API and the YAML manifest reader.
func (d *Descriptor) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
