package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"picsema/internal/logger"
)

// Archive stores the original bytes of every ingested image in object
// storage, keyed by image id. The vector collections only hold metadata and
// embeddings; the archive is where the pixels live.
type Archive struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewClient connects to the object store and makes sure the archive bucket
// exists.
func NewClient(cfg Config, log *logger.Logger) (*Archive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("archive: failed to initialize client: %w", err)
	}

	a := &Archive{client: client, bucket: cfg.Bucket, logger: log}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	log.Info("connected to object store", nil, map[string]interface{}{
		"endpoint": cfg.Endpoint,
		"bucket":   cfg.Bucket,
	})
	return a, nil
}

func (a *Archive) ensureBucket(ctx context.Context, region string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("archive: failed to check bucket %s: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("archive: failed to create bucket %s: %w", a.bucket, err)
	}
	return nil
}

// ObjectKey derives the archive object key for an image id and its original
// file extension, e.g. "images/0b90...c1.jpg".
func ObjectKey(imageID, ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join("images", imageID+ext)
}

// Store uploads the original image bytes under the image id.
func (a *Archive) Store(ctx context.Context, imageID, ext string, data []byte, contentType string) error {
	key := ObjectKey(imageID, ext)
	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("archive: failed to store %s: %w", key, err)
	}
	a.logger.Debug("archived image", nil, map[string]interface{}{
		"key":  key,
		"size": len(data),
	})
	return nil
}

// Fetch downloads the archived original for an image id.
func (a *Archive) Fetch(ctx context.Context, imageID, ext string) ([]byte, error) {
	key := ObjectKey(imageID, ext)
	obj, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("archive: failed to fetch %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("archive: failed to read %s: %w", key, err)
	}
	return data, nil
}

// Remove deletes the archived original. Missing objects are not an error.
func (a *Archive) Remove(ctx context.Context, imageID, ext string) error {
	key := ObjectKey(imageID, ext)
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("archive: failed to remove %s: %w", key, err)
	}
	return nil
}
