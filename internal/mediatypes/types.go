package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind is the category a file is processed as.
type Kind string

const (
	// KindJPEG represents a JPEG image.
	KindJPEG Kind = "jpeg"
	// KindPNG represents a PNG image.
	KindPNG Kind = "png"
	// KindRAW represents a camera RAW container with embedded JPEG previews.
	KindRAW Kind = "raw"
	// KindUnsupported represents anything intake will not accept.
	KindUnsupported Kind = "unsupported"
)

// RawExtension is the filename suffix that marks a RAW container.
const RawExtension = ".arw"

// Extensions maps lower-case file extensions to the kind they are processed as.
var Extensions = map[string]Kind{
	".jpg":       KindJPEG,
	".jpeg":      KindJPEG,
	".png":       KindPNG,
	RawExtension: KindRAW,
}

// DeclaredTypes maps the MIME types a client may declare to a kind. The RAW
// entries are advisory only, see Detect.
var DeclaredTypes = map[string]Kind{
	"image/jpeg":       KindJPEG,
	"image/jpg":        KindJPEG,
	"image/png":        KindPNG,
	"image/x-sony-arw": KindRAW,
	"image/arw":        KindRAW,
}

// MimeTypes maps file extensions to the MIME type declared for files read
// from disk, mirroring what a browser sends with a multipart upload.
var MimeTypes = map[string]string{
	".jpg":       "image/jpeg",
	".jpeg":      "image/jpeg",
	".png":       "image/png",
	RawExtension: "image/x-sony-arw",
}

// IsRaw reports whether the filename carries the RAW container suffix.
func IsRaw(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), RawExtension)
}

// Detect determines the kind of an uploaded file from its name and the MIME
// type declared by the client. The extension wins when it is recognised. A
// declared JPEG or PNG type rescues files with unknown or missing extensions;
// a declared RAW type never does, since RAW routing must be backed by the suffix.
func Detect(name, declared string) Kind {
	if IsRaw(name) {
		return KindRAW
	}
	if kind, ok := Extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return kind
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if i := strings.IndexByte(declared, ';'); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if kind, ok := DeclaredTypes[declared]; ok && kind != KindRAW {
		return kind
	}
	return KindUnsupported
}

// Extension returns the lower-cased text after the last dot of name, or "jpg"
// when the name has none.
func Extension(name string) string {
	base := filepath.Base(name)
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return "jpg"
	}
	return strings.ToLower(base[i+1:])
}

// GetMimeType returns the MIME type for an extension with or without the
// leading dot. Returns "application/octet-stream" if it is not recognised.
func GetMimeType(ext string) string {
	ext = strings.ToLower(ext)
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mime, ok := MimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}
