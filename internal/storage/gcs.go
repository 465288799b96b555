package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSUploader stores resource files in a single GCS bucket, raw objects
// under resources/raw/ and images under resources/images/.
type GCSUploader struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
}

func NewGCSUploader(ctx context.Context, bucket, cdnDomain string, opts ...option.ClientOption) (*GCSUploader, error) {
	opts = append(opts, option.WithScopes(gcs.ScopeReadWrite))
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSUploader{
		client:    client,
		bucket:    bucket,
		cdnDomain: cdnDomain,
	}, nil
}

func objectPath(kind ObjectKind, key string) string {
	if kind == KindImage {
		return "resources/images/" + key
	}
	return "resources/raw/" + key
}

func (u *GCSUploader) Upload(ctx context.Context, kind ObjectKind, key string, file io.Reader, contentType string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	path := objectPath(kind, key)
	w := u.client.Bucket(u.bucket).Object(path).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}

	written, err := io.Copy(w, file)
	if err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return &UploadResult{
		Key:  path,
		URL:  u.publicURL(path),
		Size: written,
	}, nil
}

// Delete removes an object by its full key (as returned in UploadResult.Key)
func (u *GCSUploader) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return u.client.Bucket(u.bucket).Object(key).Delete(ctx)
}

func (u *GCSUploader) publicURL(path string) string {
	if u.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.cdnDomain, path)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucket, path)
}
