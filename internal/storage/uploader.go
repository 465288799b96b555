package storage

import (
	"context"
	"io"
)

// ObjectKind selects how the provider treats the upload: pdfs go up as
// raw objects, images get the image pipeline.
type ObjectKind string

const (
	KindRaw   ObjectKind = "raw"
	KindImage ObjectKind = "image"
)

// UploadResult is what a completed upload hands back to the caller.
type UploadResult struct {
	Key  string
	URL  string
	Size int64
}

// Uploader is the storage provider consumed by resource creation. Image
// and Pdf resources must have a completed upload before a record is
// persisted; upload failure aborts the whole create.
type Uploader interface {
	Upload(ctx context.Context, kind ObjectKind, key string, file io.Reader, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}
