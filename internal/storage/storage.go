package storage

import (
	"context"
	"io"
	"time"
)

// UploadOptions conveys the destination of one exported track.
type UploadOptions struct {
	Bucket           string
	Key              string
	ContentType      string
	ProgressCallback func(done, total int64)
}

// Service archives prepared tracks to remote object storage.
type Service interface {
	UploadStream(ctx context.Context, body io.Reader, size int64, opts UploadOptions) (string, error)
	GetObjectURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
}
