package intake

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"

	"sku-renamer/internal/filesystem"
	"sku-renamer/internal/mediatypes"
)

// Upload is one incoming file. Size is checked before Open is called, so an
// oversized file is never read.
type Upload struct {
	Name         string
	DeclaredType string
	Size         int64
	Open         func() (io.ReadCloser, error)
}

// FromBytes wraps in-memory content as an Upload.
func FromBytes(name, declaredType string, data []byte) Upload {
	return Upload{
		Name:         name,
		DeclaredType: declaredType,
		Size:         int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// FromFile describes a file on disk as an Upload. The declared type comes
// from the extension. The file is opened lazily; stale NFS handles are retried.
func FromFile(path string) (Upload, error) {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		return Upload{}, err
	}
	if info.IsDir() {
		return Upload{}, fmt.Errorf("%s is a directory", path)
	}
	return Upload{
		Name:         filepath.Base(path),
		DeclaredType: mediatypes.GetMimeType(filepath.Ext(path)),
		Size:         info.Size(),
		Open: func() (io.ReadCloser, error) {
			return filesystem.OpenWithRetry(path, filesystem.DefaultRetryConfig())
		},
	}, nil
}

// FromMultipart adapts a file part of a multipart form.
func FromMultipart(fh *multipart.FileHeader) Upload {
	return Upload{
		Name:         fh.Filename,
		DeclaredType: fh.Header.Get("Content-Type"),
		Size:         fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
