// Package archive packs renamed images into a single zip file.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"sku-renamer/internal/batch"
	"sku-renamer/internal/logging"
	"sku-renamer/internal/rename"

	"github.com/klauspost/compress/flate"
)

// DefaultLevel is the deflate level used for archive entries.
const DefaultLevel = 6

var (
	// ErrEmpty is returned when no record has a descriptor assigned.
	ErrEmpty = errors.New("no images with descriptors to archive")

	// ErrDuplicateEntry is returned when two records map to the same filename.
	ErrDuplicateEntry = errors.New("duplicate archive entry")
)

// Entry describes one file written into an archive.
type Entry struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// Manifest summarises a built archive.
type Manifest struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
	// Bytes is the compressed size written to the destination.
	Bytes int64 `json:"bytes"`
}

// Builder writes zip archives.
type Builder struct {
	level int
	now   func() time.Time
}

// NewBuilder returns a builder compressing at the given deflate level. Levels
// outside 1..9 fall back to DefaultLevel.
func NewBuilder(level int) *Builder {
	if !ValidLevel(level) {
		level = DefaultLevel
	}
	return &Builder{level: level, now: time.Now}
}

// ValidLevel reports whether level is a deflate level the builder honours.
func ValidLevel(level int) bool {
	return level >= flate.BestSpeed && level <= flate.BestCompression
}

// ArchiveName returns the download name for a SKU's archive.
func ArchiveName(sku string) string {
	return strings.TrimSpace(sku) + "_images.zip"
}

// Build writes an archive of every record that has a descriptor. Each entry
// holds the record's original bytes under its generated name. Records without
// a descriptor are skipped. Output is only complete once Build returns nil;
// callers that must not emit partial archives should buffer w.
func (b *Builder) Build(w io.Writer, records []batch.ImageRecord, sku string) (Manifest, error) {
	sku = strings.TrimSpace(sku)
	manifest := Manifest{Name: ArchiveName(sku)}

	seen := make(map[string]bool, len(records))
	var pending []batch.ImageRecord
	for _, rec := range records {
		if !rec.HasDescriptor() {
			logging.Debug("Archive: skipping %s, no descriptor", rec.OriginalName)
			continue
		}
		name := rename.Filename(sku, *rec.Descriptor, rec.Extension)
		if seen[name] {
			return Manifest{}, fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
		}
		seen[name] = true
		pending = append(pending, rec)
	}
	if len(pending) == 0 {
		return Manifest{}, ErrEmpty
	}

	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, b.level)
	})

	modified := b.now()
	for _, rec := range pending {
		name := rename.Filename(sku, *rec.Descriptor, rec.Extension)

		header := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		header.SetModTime(modified)

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return Manifest{}, fmt.Errorf("create entry %s: %w", name, err)
		}
		n, err := entry.Write(rec.Data)
		if err != nil {
			return Manifest{}, fmt.Errorf("write entry %s: %w", name, err)
		}
		manifest.Entries = append(manifest.Entries, Entry{Name: name, Size: int64(n)})
	}

	if err := zw.Close(); err != nil {
		return Manifest{}, fmt.Errorf("finalize archive: %w", err)
	}
	manifest.Bytes = cw.n

	logging.Info("Archive: built %s with %d entries (%d bytes)", manifest.Name, len(manifest.Entries), manifest.Bytes)
	return manifest, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
