// Package minio stores uploaded contract documents in S3-compatible object
// storage.  Documents are written once at upload and read back by the worker
// for segmentation.
package minio

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ravi-ivar-7/hilabs/internal/config"
	"github.com/ravi-ivar-7/hilabs/internal/infrastructure/monitoring/logging"
	"github.com/ravi-ivar-7/hilabs/pkg/errors"
)

// Client wraps the MinIO SDK for a single bucket.
type Client struct {
	mc            *minio.Client
	bucket        string
	presignExpiry time.Duration
	log           logging.Logger
}

// NewClient connects to the object store.  The bucket must be ensured
// separately; startup calls EnsureBucket once.
func NewClient(cfg config.MinIOConfig, log logging.Logger) (*Client, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to initialise object storage client").
			WithDetail(cfg.Endpoint)
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &Client{
		mc:            mc,
		bucket:        cfg.Bucket,
		presignExpiry: expiry,
		log:           log.Named("minio"),
	}, nil
}

// EnsureBucket creates the bucket if absent.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.mc.BucketExists(ctx, c.bucket)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket").
			WithDetail(c.bucket)
	}
	if exists {
		return nil
	}
	if err := c.mc.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to create bucket").
			WithDetail(c.bucket)
	}
	c.log.Info("bucket created", logging.String("bucket", c.bucket))
	return nil
}

// Upload stores a document under the given object key.
func (c *Client) Upload(ctx context.Context, objectKey string, r io.Reader, size int64, contentType string) error {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := c.mc.PutObject(ctx, c.bucket, objectKey, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to store document").
			WithDetail(objectKey)
	}
	c.log.Debug("document stored",
		logging.String("object_key", objectKey),
		logging.Int64("size", size),
	)
	return nil
}

// Download opens the stored document for reading.  The caller closes the
// returned reader.
func (c *Client) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	obj, err := c.mc.GetObject(ctx, c.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentUnavailable, "failed to open document").
			WithDetail(objectKey)
	}
	// GetObject is lazy; surface a missing object now rather than on first read.
	if _, err := obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDocumentUnavailable, "document not found").
			WithDetail(objectKey)
	}
	return obj, nil
}

// PresignDownload returns a time-limited URL for direct document download.
func (c *Client) PresignDownload(ctx context.Context, objectKey string) (string, error) {
	u, err := c.mc.PresignedGetObject(ctx, c.bucket, objectKey, c.presignExpiry, url.Values{})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeExternalService, "failed to presign download").
			WithDetail(objectKey)
	}
	return u.String(), nil
}

// Delete removes a stored document.
func (c *Client) Delete(ctx context.Context, objectKey string) error {
	if err := c.mc.RemoveObject(ctx, c.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "failed to delete document").
			WithDetail(objectKey)
	}
	return nil
}
