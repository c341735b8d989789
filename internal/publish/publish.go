// Package publish uploads built archives to S3-compatible object storage.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"sku-renamer/internal/logging"
	"sku-renamer/internal/metrics"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrDisabled is returned when no object storage is configured.
var ErrDisabled = errors.New("archive publishing is not configured")

// Config describes the target bucket.
type Config struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	Region    string
	Prefix    string
	UseSSL    bool
}

// Enabled reports whether enough is configured to publish.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.Bucket != ""
}

// objectPutter is the part of the minio client the publisher needs.
type objectPutter interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64,
		opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

var _ objectPutter = (*minio.Client)(nil)

// Location identifies an uploaded archive.
type Location struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag,omitempty"`
	Size   int64  `json:"size"`
}

// Publisher stores archives in a bucket. A nil *Publisher is valid and
// reports ErrDisabled.
type Publisher struct {
	api    objectPutter
	bucket string
	prefix string
}

// New connects a publisher to the configured endpoint. It returns
// ErrDisabled when the configuration has no endpoint or bucket.
func New(cfg Config) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create object storage client: %w", err)
	}

	return newPublisher(client, cfg), nil
}

func newPublisher(api objectPutter, cfg Config) *Publisher {
	return &Publisher{
		api:    api,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}
}

// Key returns the object key an archive named name is stored under.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads an archive, replacing any object with the same key.
func (p *Publisher) Publish(ctx context.Context, name string, data []byte) (Location, error) {
	if p == nil || p.api == nil {
		return Location{}, ErrDisabled
	}

	key := p.Key(name)
	info, err := p.api.PutObject(ctx, p.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/zip"})
	if err != nil {
		metrics.PublishTotal.WithLabelValues("error").Inc()
		return Location{}, fmt.Errorf("upload %s to %s: %w", key, p.bucket, err)
	}

	metrics.PublishTotal.WithLabelValues("success").Inc()
	logging.Info("Published %s to bucket %s (%d bytes)", key, p.bucket, len(data))

	return Location{Bucket: p.bucket, Key: key, ETag: info.ETag, Size: int64(len(data))}, nil
}
